// Package ustructure implements synchronized composition (spec §4.3):
// building the U-Structure of an automaton, whose states are state
// vectors with one component for the system and one per controller.
package ustructure

import (
	"strconv"
	"strings"
)

// vectorLabel renders a state vector as a deterministic state label,
// e.g. "(3,3,5)" for a two-controller system.
func vectorLabel(vec []int64) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, id := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	b.WriteByte(')')
	return b.String()
}

func vectorKey(vec []int64) string { return vectorLabel(vec) }

func cloneVec(vec []int64) []int64 {
	out := make([]int64, len(vec))
	copy(out, vec)
	return out
}
