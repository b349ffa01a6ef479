package sample

import "testing"

func TestSetFormatWidensLengthMonotonically(t *testing.T) {
	pool := NewPool(1, 8)
	s := pool.AllocMany(1)[0]

	s.SetFormat(3, FormatInt)
	if s.Length() != 4 {
		t.Fatalf("Length() = %d, want 4 after SetFormat(3, ...)", s.Length())
	}

	s.SetFormat(1, FormatFloat)
	if s.Length() != 4 {
		t.Fatalf("Length() = %d, want unchanged 4 after widening a lower slot", s.Length())
	}
}

func TestCopyDeepCopiesValuesAndFormats(t *testing.T) {
	pool := NewPool(2, 4)
	src := pool.AllocMany(1)[0]
	src.SetFormat(0, FormatInt)
	src.SetValue(0, Value{I: 7})
	src.SetFormat(1, FormatFloat)
	src.SetValue(1, Value{F: 2.5})
	src.Sequence = 99

	dst := pool.AllocMany(1)[0]
	Copy(dst, src)

	if dst.Sequence != 99 {
		t.Fatalf("Sequence not copied: %d", dst.Sequence)
	}
	if dst.Length() != src.Length() {
		t.Fatalf("Length mismatch: %d != %d", dst.Length(), src.Length())
	}
	if dst.Value(0).I != 7 || dst.Format(0) != FormatInt {
		t.Fatalf("slot 0 not copied correctly: %+v fmt=%v", dst.Value(0), dst.Format(0))
	}
	if dst.Value(1).F != 2.5 || dst.Format(1) != FormatFloat {
		t.Fatalf("slot 1 not copied correctly: %+v fmt=%v", dst.Value(1), dst.Format(1))
	}
}

func TestCopyPanicsWhenDestinationTooSmall(t *testing.T) {
	pool := NewPool(2, 4)
	src := pool.AllocMany(1)[0]
	src.SetFormat(3, FormatInt)

	smallPool := NewPool(1, 1)
	dst := smallPool.AllocMany(1)[0]

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic copying into an undersized destination")
		}
	}()
	Copy(dst, src)
}
