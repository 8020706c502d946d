// Package graph implements the automaton graph model (spec §3) and the
// structural algorithms over it (spec §4.2): accessible, co-accessible,
// invert, complement, trim, intersection, union, and twin plant.
package graph

import "github.com/dragomit/desctl/internal/ids"

// MaxControllers is the hard cap on the number of controllers (spec §6).
const MaxControllers = 10

// Event is identified by a 1-based id assigned at insertion order; id 0
// is reserved for "none" (spec §3). Label may be a plain string or the
// canonical form of a label vector.
type Event struct {
	ID           int32
	Label        string
	Vector       ids.LabelVector
	Observable   []bool // len == automaton's nControllers
	Controllable []bool
}

// IsObservableTo reports whether controller i (0-based) observes e.
func (e *Event) IsObservableTo(i int) bool {
	return e.Observable[i]
}

// IsControllableBy reports whether controller i (0-based) controls e.
func (e *Event) IsControllableBy(i int) bool {
	return e.Controllable[i]
}

// ControllerCount returns how many controllers control e.
func (e *Event) ControllerCount() int {
	n := 0
	for _, c := range e.Controllable {
		if c {
			n++
		}
	}
	return n
}

// Controllers returns the (0-based) indices of controllers that control e.
func (e *Event) Controllers() []int {
	var out []int
	for i, c := range e.Controllable {
		if c {
			out = append(out, i)
		}
	}
	return out
}

// compatibleWith reports whether e and other have the same observable
// and controllable bitmasks - the pairwise-compatibility check required
// of shared events by intersection/union (spec §4.2).
func (e *Event) compatibleWith(other *Event) bool {
	if len(e.Observable) != len(other.Observable) {
		return false
	}
	for i := range e.Observable {
		if e.Observable[i] != other.Observable[i] || e.Controllable[i] != other.Controllable[i] {
			return false
		}
	}
	return true
}
