// Package subset implements per-controller subset construction and
// configuration relabeling over a U-Structure (spec §4.4).
package subset

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dragomit/desctl/internal/graph"
)

// Determinization is one controller's indistinguishability-set DFA
// D_k: states are StateSets of U-states k cannot tell apart. Each set is
// closed under moves k cannot observe, and sets are linked by the labels
// k does observe.
type Determinization struct {
	Controller int // k; 0 means the system's own unobservable reach
	Sets       []*graph.StateSet
	// transitions[i] holds the outgoing (label -> target set index)
	// edges of Sets[i], grouped by observable event label.
	transitions []map[string]int
}

// SetIndex returns the index of the first set in d.Sets containing
// stateID, or -1 if none does.
func (d *Determinization) SetIndex(stateID int64) int {
	for i, s := range d.Sets {
		if s.Contains(stateID) {
			return i
		}
	}
	return -1
}

// unobservableReach computes the closure of seeds under transitions
// whose event is unobservable to controller k (an epsilon move at
// vector index 0 or index k, spec §4.4).
func unobservableReach(u *graph.Automaton, k int, seeds []int64) *graph.StateSet {
	visited := make(map[int64]bool, len(seeds))
	var stack []int64
	result := graph.NewStateSet()
	for _, id := range seeds {
		if !visited[id] {
			visited[id] = true
			stack = append(stack, id)
			if s, ok := u.State(id); ok {
				result.Add(s)
			}
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s, ok := u.State(id)
		if !ok {
			continue
		}
		for _, t := range s.Transitions {
			e, ok := u.Event(t.EventID)
			if !ok || !e.Vector.IsUnobservableToController(k) {
				continue
			}
			if !visited[t.TargetID] {
				visited[t.TargetID] = true
				if ts, ok := u.State(t.TargetID); ok {
					result.Add(ts)
				}
				stack = append(stack, t.TargetID)
			}
		}
	}
	return result
}

// Construct builds D_k for vector index k (0 = the system, 1..n =
// controller k) over U-Structure u
// with initial state initID, via a BFS worklist of indistinguishability
// sets (grounded on the classic subset-construction worklist pattern).
func Construct(u *graph.Automaton, k int, initID int64) *Determinization {
	d := &Determinization{Controller: k}
	initial := unobservableReach(u, k, []int64{initID})
	d.Sets = append(d.Sets, initial)
	d.transitions = append(d.transitions, nil)

	for i := 0; i < len(d.Sets); i++ {
		current := d.Sets[i]
		byLabel := make(map[string][]int64)
		for _, s := range current.States() {
			for _, t := range s.Transitions {
				e, ok := u.Event(t.EventID)
				if !ok || e.Vector.IsUnobservableToController(k) {
					continue
				}
				byLabel[e.Label] = append(byLabel[e.Label], t.TargetID)
			}
		}

		edges := make(map[string]int, len(byLabel))
		for label, targets := range byLabel {
			closure := unobservableReach(u, k, targets)
			if closure.Len() == 0 {
				continue
			}
			twin := -1
			for j, existing := range d.Sets {
				if existing.Equals(closure) {
					twin = j
					break
				}
			}
			if twin == -1 {
				d.Sets = append(d.Sets, closure)
				d.transitions = append(d.transitions, nil)
				twin = len(d.Sets) - 1
			}
			edges[label] = twin
		}
		d.transitions[i] = edges
	}
	return d
}

// ConstructAll runs Construct for every controller, including the
// system's own unobservable reach (k=0), concurrently - one goroutine
// per controller writing into its own slot of a pre-sized slice (spec
// §5's fork-join model).
func ConstructAll(ctx context.Context, u *graph.Automaton, initID int64) ([]*Determinization, error) {
	n := u.NControllers()
	out := make([]*Determinization, n+1)
	g, _ := errgroup.WithContext(ctx)
	for k := 0; k <= n; k++ {
		k := k
		g.Go(func() error {
			out[k] = Construct(u, k, initID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
