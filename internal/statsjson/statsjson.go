// Package statsjson renders a path's PERIODIC-phase stats snapshot as
// JSON for an external monitoring sidecar. It is the one place the core
// touches serialization outside the C37.118 wire codec, and it is
// best-effort: an encoding failure is logged by the caller and never
// treated as fatal, per spec §7's "no crash dialog" rule.
//
// Marshaling goes through sugawarayuuta/sonnet, a drop-in
// encoding/json-compatible encoder, rather than the standard library's
// encoding/json, matching how the reference project already depends on
// sonnet for its own JSON traffic.
package statsjson

import (
	"time"

	"github.com/sugawarayuuta/sonnet"
)

// Snapshot is one path's stats at a point in time, sourced from the
// counters path.Path exposes (Skipped, Overrun) plus its pool/queue
// occupancy.
type Snapshot struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`

	QueueDepth int `json:"queue_depth"`
	QueueUsed  int `json:"queue_used"`

	PoolCapacity int   `json:"pool_capacity"`
	PoolFree     int   `json:"pool_free"`
	PoolInFlight int64 `json:"pool_in_flight"`

	Skipped uint64 `json:"skipped"`
	Overrun uint64 `json:"overrun"`
}

// Encode renders s as a JSON document.
func Encode(s Snapshot) ([]byte, error) {
	return sonnet.Marshal(s)
}

// Decode parses a JSON document previously produced by Encode, mainly
// useful for the sidecar side of the wire and for tests.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	err := sonnet.Unmarshal(data, &s)
	return s, err
}
