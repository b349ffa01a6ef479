package errs

import (
	"errors"
	"testing"
)

func TestIsFatalOnlyForInvariant(t *testing.T) {
	cases := []struct {
		kind  Kind
		fatal bool
	}{
		{Config, false},
		{Resource, false},
		{Codec, false},
		{Transport, false},
		{Invariant, true},
	}
	for _, c := range cases {
		err := New(c.kind, "op", errors.New("boom"))
		if got := IsFatal(err); got != c.fatal {
			t.Fatalf("IsFatal(%s) = %v, want %v", c.kind, got, c.fatal)
		}
	}
}

func TestIsFatalFalseForUnclassifiedError(t *testing.T) {
	if IsFatal(errors.New("plain")) {
		t.Fatalf("IsFatal(plain error) = true, want false")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := New(Transport, "path.emit", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is did not see through *Error to its wrapped cause")
	}
}

func TestKindString(t *testing.T) {
	if Resource.String() != "resource" || Invariant.String() != "invariant" {
		t.Fatalf("unexpected Kind.String() output: %s / %s", Resource, Invariant)
	}
}
