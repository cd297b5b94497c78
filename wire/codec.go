package wire

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode serializes v into MessagePack's named-map form: every exported
// field travels on the wire keyed by name, never by position, so that
// independently-built worker processes in other languages can decode it
// without sharing this package's struct layout.
func Encode(v any) ([]byte, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: encode failed: %w", err)
	}
	return b, nil
}

// Decode deserializes b into v, which must be a pointer. Decode errors
// are expected to be logged and the message dropped by callers, per the
// error handling policy for malformed payloads.
func Decode(b []byte, v any) error {
	if err := msgpack.Unmarshal(b, v); err != nil {
		return fmt.Errorf("wire: decode failed: %w", err)
	}
	return nil
}
