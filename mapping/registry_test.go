package mapping

import "testing"

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	tok, err := Parse("hdr.sequence", nil, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r.Register("hdr.sequence", tok)

	got, ok := r.Lookup("hdr.sequence")
	if !ok || got != tok {
		t.Fatalf("Lookup(hdr.sequence) = %v, %v", got, ok)
	}

	if _, ok := r.Lookup("hdr.length"); ok {
		t.Fatal("Lookup(hdr.length) should not be found")
	}
}
