package graph

// d-separation via the reachable-set construction: a node Y is d-connected
// to X given Z iff Y is reachable from X along an active trail. Colliders
// are active only when the collider or one of its descendants is in Z.

type trailState struct {
	node string
	up   bool // trail arrived at node moving child -> parent
}

// DSeparated reports whether x and y are d-separated given the conditioning
// set z. x and y must be distinct nodes not contained in z.
func (g *CausalGraph) DSeparated(x, y string, z map[string]bool) bool {
	return !g.reachableGiven(x, z)[y]
}

// reachableGiven returns the set of nodes d-connected to x given z.
func (g *CausalGraph) reachableGiven(x string, z map[string]bool) map[string]bool {
	// Ancestors of the conditioning set, including the set itself. A
	// collider is unblocked exactly when it lies in this set.
	ancZ := make(map[string]bool, len(z))
	for n := range z {
		ancZ[n] = true
		for a := range g.Ancestors(n) {
			ancZ[a] = true
		}
	}

	visited := make(map[trailState]bool)
	reached := make(map[string]bool)
	frontier := []trailState{{node: x, up: true}}

	for len(frontier) > 0 {
		s := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		if visited[s] {
			continue
		}
		visited[s] = true

		if s.node != x && !z[s.node] {
			reached[s.node] = true
		}

		if s.up {
			if !z[s.node] {
				for p := range g.parents[s.node] {
					frontier = append(frontier, trailState{node: p, up: true})
				}
				for c := range g.children[s.node] {
					frontier = append(frontier, trailState{node: c, up: false})
				}
			}
		} else {
			if !z[s.node] {
				for c := range g.children[s.node] {
					frontier = append(frontier, trailState{node: c, up: false})
				}
			}
			if ancZ[s.node] {
				for p := range g.parents[s.node] {
					frontier = append(frontier, trailState{node: p, up: true})
				}
			}
		}
	}
	return reached
}
