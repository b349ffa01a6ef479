package statsjson

import (
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := Snapshot{
		Path:         "grid-in => grid-out",
		Timestamp:    time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC),
		QueueDepth:   1024,
		QueueUsed:    37,
		PoolCapacity: 64,
		PoolFree:     60,
		PoolInFlight: 4,
		Skipped:      2,
		Overrun:      1,
	}

	data, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.Path != want.Path || got.QueueDepth != want.QueueDepth || got.QueueUsed != want.QueueUsed {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
	if got.PoolCapacity != want.PoolCapacity || got.PoolFree != want.PoolFree || got.PoolInFlight != want.PoolInFlight {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
	if got.Skipped != want.Skipped || got.Overrun != want.Overrun {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
	if !got.Timestamp.Equal(want.Timestamp) {
		t.Fatalf("Timestamp = %v, want %v", got.Timestamp, want.Timestamp)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not json")); err == nil {
		t.Fatal("expected error decoding malformed input")
	}
}
