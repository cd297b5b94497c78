package conveyor

// factory implements the factory pattern for conveyor's core types,
// mirroring the teacher library's global Factory singleton.
type factory struct{}

// Factory is the global factory instance for creating conveyor core types.
var Factory factory

// NewWorld creates a new, empty World.
func (f factory) NewWorld() *World {
	return NewWorld()
}

// NewSystemRegistry creates a new, empty SystemRegistry.
func (f factory) NewSystemRegistry() *SystemRegistry {
	return NewSystemRegistry()
}

// NewQueryDescriptor creates a new, empty QueryDescriptor ready for
// chaining via Read/Write/Optional/Filter.
func (f factory) NewQueryDescriptor() QueryDescriptor {
	return NewQueryDescriptor()
}
