package conveyor

// RegisteredSystem is the minimal shape the scheduler needs: a name for
// diagnostics and the query that determines conflicts with other systems.
type RegisteredSystem struct {
	Name  string
	Query QueryDescriptor
}

// Stage is a set of systems the coordinator can run in parallel during a
// single tick because none of them conflict with each other.
type Stage struct {
	SystemIndices []int
}

// ComputeStages greedily colors systems into conflict-free stages: each
// system in input order is placed into the first existing stage none of
// whose members conflict with it, or a new stage if none qualifies. This
// is deterministic given the input order but does not attempt to find the
// minimum number of stages.
func ComputeStages(systems []RegisteredSystem) []Stage {
	var stages []Stage
	for i, sys := range systems {
		placed := false
		for s := range stages {
			if !conflictsWithStage(sys, systems, stages[s]) {
				stages[s].SystemIndices = append(stages[s].SystemIndices, i)
				placed = true
				break
			}
		}
		if !placed {
			stages = append(stages, Stage{SystemIndices: []int{i}})
		}
	}
	return stages
}

// conflictsWithStage reports whether candidate conflicts with any system
// already placed in stage.
func conflictsWithStage(candidate RegisteredSystem, all []RegisteredSystem, stage Stage) bool {
	for _, idx := range stage.SystemIndices {
		if candidate.Query.ConflictsWith(all[idx].Query) {
			return true
		}
	}
	return false
}
