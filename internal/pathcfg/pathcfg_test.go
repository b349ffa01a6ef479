package pathcfg

import "testing"

func TestNormalizeFillsDefaults(t *testing.T) {
	c := Config{}
	c.Normalize()
	if c.QueueLen != DefaultQueueLen {
		t.Fatalf("QueueLen = %d, want %d", c.QueueLen, DefaultQueueLen)
	}
	if c.SampleLen != 1 {
		t.Fatalf("SampleLen = %d, want 1", c.SampleLen)
	}
}

func TestNormalizePreservesExplicitValues(t *testing.T) {
	c := Config{QueueLen: 4096, SampleLen: 12}
	c.Normalize()
	if c.QueueLen != 4096 || c.SampleLen != 12 {
		t.Fatalf("Normalize overwrote explicit values: %+v", c)
	}
}
