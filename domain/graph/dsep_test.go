package graph

import (
	"testing"
)

func zset(names ...string) map[string]bool {
	z := make(map[string]bool, len(names))
	for _, n := range names {
		z[n] = true
	}
	return z
}

// TestDSeparationChain tests x -> m -> y: blocked by m, open otherwise
func TestDSeparationChain(t *testing.T) {
	g := New([]string{"x", "m", "y"})
	g.AddEdge("x", "m")
	g.AddEdge("m", "y")

	if g.DSeparated("x", "y", zset()) {
		t.Error("Chain should be open with empty conditioning set")
	}
	if !g.DSeparated("x", "y", zset("m")) {
		t.Error("Conditioning on the mediator should block the chain")
	}
}

// TestDSeparationFork tests x <- z -> y: blocked by z
func TestDSeparationFork(t *testing.T) {
	g := New([]string{"x", "y", "z"})
	g.AddEdge("z", "x")
	g.AddEdge("z", "y")

	if g.DSeparated("x", "y", zset()) {
		t.Error("Fork should be open with empty conditioning set")
	}
	if !g.DSeparated("x", "y", zset("z")) {
		t.Error("Conditioning on the common cause should block the fork")
	}
}

// TestDSeparationCollider tests x -> c <- y: blocked unless conditioning
// on the collider or one of its descendants
func TestDSeparationCollider(t *testing.T) {
	g := New([]string{"x", "y", "c", "d"})
	g.AddEdge("x", "c")
	g.AddEdge("y", "c")
	g.AddEdge("c", "d")

	if !g.DSeparated("x", "y", zset()) {
		t.Error("Collider should block with empty conditioning set")
	}
	if g.DSeparated("x", "y", zset("c")) {
		t.Error("Conditioning on the collider should open the path")
	}
	if g.DSeparated("x", "y", zset("d")) {
		t.Error("Conditioning on a collider descendant should open the path")
	}
}

// TestDSeparationDisconnected tests that unconnected nodes are separated
func TestDSeparationDisconnected(t *testing.T) {
	g := New([]string{"x", "y"})
	if !g.DSeparated("x", "y", zset()) {
		t.Error("Nodes with no connecting path are d-separated")
	}
}
