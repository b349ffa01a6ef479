package frame

import "fmt"

// Status is the codec error taxonomy from spec §4.C.
type Status int

const (
	StatusOk Status = iota
	StatusMissingBytes
	StatusMissingConfig
	StatusInvalidValue
	StatusInvalidChecksum
	StatusInvalidSlice
	StatusUnimplemented
	StatusOther
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusMissingBytes:
		return "missing bytes"
	case StatusMissingConfig:
		return "missing config"
	case StatusInvalidValue:
		return "invalid value"
	case StatusInvalidChecksum:
		return "invalid checksum"
	case StatusInvalidSlice:
		return "invalid slice"
	case StatusUnimplemented:
		return "unimplemented"
	default:
		return "other"
	}
}

// Error reports a codec failure classified by Status, per spec §4.C/§7.
type Error struct {
	Status Status
	Op     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("c37118: %s: %s", e.Op, e.Status)
}

func errf(status Status, op string) error {
	return &Error{Status: status, Op: op}
}

// StatusOf extracts the Status from err, defaulting to StatusOther for
// errors this package did not produce.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOk
	}
	if e, ok := err.(*Error); ok {
		return e.Status
	}
	return StatusOther
}
