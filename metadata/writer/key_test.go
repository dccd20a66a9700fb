package writer

import (
	"bytes"
	"testing"
)

func TestKeyRefSlotsFixedWidth(t *testing.T) {
	g := newGraph(Options{})
	parent := &TypeDefinition{Name: "Parent"}
	sig := &MethodSignature{}
	g.ids[g.intern("x")] = 1
	g.ids[parent] = 256
	g.ids[sig] = 7

	// Without fixed-width slots {nil, 1, sig} and {256, nil, sig} encode to
	// the same bytes.
	a := &MemberReference{Name: "x", Signature: sig}
	b := &MemberReference{Parent: parent, Signature: sig}

	ca, err := g.resolve(a)
	if err != nil {
		t.Fatal(err)
	}
	cb, err := g.resolve(b)
	if err != nil {
		t.Fatal(err)
	}
	if ca == cb {
		t.Fatal("distinct member references merged")
	}
	if bytes.Equal(g.keys[a], g.keys[b]) {
		t.Errorf("keys collide: %x", g.keys[a])
	}
	if len(g.keys[a]) != len(g.keys[b]) {
		t.Errorf("key lengths %d and %d differ", len(g.keys[a]), len(g.keys[b]))
	}

	same := &MemberReference{Name: "x", Signature: sig}
	if c, err := g.resolve(same); err != nil || c != ca {
		t.Errorf("equal member reference resolved to %v, %v", c, err)
	}
}
