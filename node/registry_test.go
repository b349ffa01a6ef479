package node

import (
	"context"
	"testing"

	"github.com/villas-go/villasnode/sample"
)

type fakeNode struct {
	Base
}

func newFakeNode(name string) *fakeNode { return &fakeNode{Base: NewBase(name)} }

func (n *fakeNode) Start(ctx context.Context) error { return n.TransitionStart() }
func (n *fakeNode) Stop(ctx context.Context) error  { return nil }
func (n *fakeNode) Read(ctx context.Context, vec []*sample.Sample) (int, error)  { return 0, nil }
func (n *fakeNode) Write(ctx context.Context, vec []*sample.Sample) (int, error) { return 0, nil }
func (n *fakeNode) Reverse() error                                              { return nil }

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	a := newFakeNode("alpha")
	b := newFakeNode("beta")
	r.Register(a)
	r.Register(b)

	got, ok := r.Lookup("alpha")
	if !ok || got != Node(a) {
		t.Fatalf("Lookup(alpha) = %v, %v", got, ok)
	}

	if _, ok := r.Lookup("gamma"); ok {
		t.Fatal("Lookup(gamma) should not be found")
	}
}

func TestRegistryNamesReflectsRegisteredNodes(t *testing.T) {
	r := NewRegistry()
	r.Register(newFakeNode("alpha"))
	r.Register(newFakeNode("beta"))

	names := r.Names()
	if !names["alpha"] || !names["beta"] || len(names) != 2 {
		t.Fatalf("Names() = %v, want {alpha, beta}", names)
	}
}
