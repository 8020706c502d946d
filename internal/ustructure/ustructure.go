package ustructure

import (
	"github.com/dragomit/desctl/internal/graph"
)

// UStructure wraps the graph.Automaton produced by synchronized
// composition together with the state-vector each of its states
// encodes (spec §3 StateVector). Vectors has length NControllers()+1:
// index 0 is the system component, index i (1..n) is controller i's
// estimate.
type UStructure struct {
	*graph.Automaton
	Vectors map[int64][]int64
}

// Vector returns the state vector for U-state id, or nil if id is not a
// state of this U-Structure.
func (u *UStructure) Vector(id int64) []int64 {
	return u.Vectors[id]
}
