package wire_test

import (
	"testing"

	"github.com/TheBitDrifter/conveyor"
	"github.com/TheBitDrifter/conveyor/wire"
)

func TestCodec_RoundTrip_TickStart(t *testing.T) {
	original := wire.TickStart{TickID: 42, DT: 0.016}
	b, err := wire.Encode(original)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	var decoded wire.TickStart
	if err := wire.Decode(b, &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded != original {
		t.Fatalf("expected round-trip to preserve value, got %+v from %+v", decoded, original)
	}
}

func TestCodec_RoundTrip_SystemDescriptor(t *testing.T) {
	original := wire.SystemDescriptor{
		Name: "physics",
		Query: conveyor.NewQueryDescriptor().
			Read(conveyor.ComponentTypeIDFromName("Position")).
			Write(conveyor.ComponentTypeIDFromName("Velocity")),
		InstanceID: "instance-a",
	}
	b, err := wire.Encode(original)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	var decoded wire.SystemDescriptor
	if err := wire.Decode(b, &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Name != original.Name || decoded.InstanceID != original.InstanceID {
		t.Fatalf("expected name/instance to round-trip, got %+v", decoded)
	}
	if len(decoded.Query.Reads) != 1 || len(decoded.Query.Writes) != 1 {
		t.Fatalf("expected query access sets to round-trip, got %+v", decoded.Query)
	}
}

func TestCodec_RoundTrip_EntitySpawnRequest(t *testing.T) {
	original := wire.EntitySpawnRequest{
		ComponentTypes: []conveyor.ComponentTypeId{conveyor.ComponentTypeIDFromName("Position")},
		ComponentData:  [][]byte{[]byte("x=0")},
		ComponentSizes: []int{3},
	}
	b, err := wire.Encode(original)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	var decoded wire.EntitySpawnRequest
	if err := wire.Decode(b, &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded.ComponentTypes) != 1 || string(decoded.ComponentData[0]) != "x=0" {
		t.Fatalf("expected spawn request to round-trip, got %+v", decoded)
	}
}

func TestCodec_Decode_InvalidBytes(t *testing.T) {
	var decoded wire.TickStart
	if err := wire.Decode([]byte{0xff, 0xff, 0xff}, &decoded); err == nil {
		t.Fatalf("expected decode of invalid bytes to error")
	}
}

func TestCodec_RoundTrip_ChangesDoneAndDataDone(t *testing.T) {
	changes := wire.ChangesDone{TickID: 7, InstanceID: "instance-b"}
	b, _ := wire.Encode(changes)
	var decodedChanges wire.ChangesDone
	if err := wire.Decode(b, &decodedChanges); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decodedChanges != changes {
		t.Fatalf("expected ChangesDone to round-trip, got %+v", decodedChanges)
	}

	done := wire.DataDone{TickID: 7}
	b, _ = wire.Encode(done)
	var decodedDone wire.DataDone
	if err := wire.Decode(b, &decodedDone); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decodedDone != done {
		t.Fatalf("expected DataDone to round-trip, got %+v", decodedDone)
	}
}
