package idcodec

import "testing"

func TestFingerprintIsDeterministic(t *testing.T) {
	a := Fingerprint("node-a")
	b := Fingerprint("node-a")
	if a != b {
		t.Fatalf("Fingerprint not deterministic: %d != %d", a, b)
	}
}

func TestFingerprintDistinguishesInputs(t *testing.T) {
	if Fingerprint("a") == Fingerprint("b") {
		t.Fatal("distinct inputs collided")
	}
}

func TestNodeKeyAndMappingKeyAreNamespaced(t *testing.T) {
	if NodeKey("x") == MappingKey("x") {
		t.Fatal("NodeKey and MappingKey must not collide for the same literal string")
	}
}
