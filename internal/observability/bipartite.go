// Package observability implements the inference-observability decider
// and ambiguity-level fixpoint over a relabeled U-Structure (spec §4.5).
package observability

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dragomit/desctl/internal/graph"
	"github.com/dragomit/desctl/internal/subset"
)

// Bipartite is B_{e,i}: edges between disablement states (D) and
// enablement states (E) for event e and controller i, present when the
// two states lie in a common indistinguishability set of D_i.
type Bipartite struct {
	Event      int32
	Controller int
	// neighbors maps a U-state id to the opposite-side ids it shares an
	// indistinguishability set with.
	neighbors map[int64]map[int64]bool
}

func newBipartite(event int32, controller int) *Bipartite {
	return &Bipartite{Event: event, Controller: controller, neighbors: make(map[int64]map[int64]bool)}
}

func (b *Bipartite) addEdge(u, v int64) {
	if b.neighbors[u] == nil {
		b.neighbors[u] = make(map[int64]bool)
	}
	if b.neighbors[v] == nil {
		b.neighbors[v] = make(map[int64]bool)
	}
	b.neighbors[u][v] = true
	b.neighbors[v][u] = true
}

func (b *Bipartite) degree(v int64) int { return len(b.neighbors[v]) }

func (b *Bipartite) removeVertex(v int64) []int64 {
	var affected []int64
	for other := range b.neighbors[v] {
		delete(b.neighbors[other], v)
		affected = append(affected, other)
	}
	delete(b.neighbors, v)
	return affected
}

// buildBipartite constructs B_{e,i}: D x E restricted to pairs sharing a
// common set of d (controller i's relabeled determinization).
func buildBipartite(u *graph.Automaton, d *subset.Determinization, eventID int32, controller int, disabled, enabled []int64) *Bipartite {
	b := newBipartite(eventID, controller)
	for _, set := range d.Sets {
		var ds, es []int64
		for _, id := range disabled {
			if set.Contains(id) {
				ds = append(ds, id)
			}
		}
		for _, id := range enabled {
			if set.Contains(id) {
				es = append(es, id)
			}
		}
		for _, dID := range ds {
			for _, eID := range es {
				b.addEdge(dID, eID)
			}
		}
	}
	return b
}

// buildAll constructs B_{e,i} for every controller that controls e,
// concurrently (spec §5 fork-join: one goroutine per controller writing
// into its own slot of a pre-sized slice).
func buildAll(ctx context.Context, u *graph.Automaton, dets []*subset.Determinization, eventID int32, controllers []int, disabled, enabled []int64) ([]*Bipartite, error) {
	out := make([]*Bipartite, len(controllers))
	g, _ := errgroup.WithContext(ctx)
	for idx, ctrl := range controllers {
		idx, ctrl := idx, ctrl
		g.Go(func() error {
			out[idx] = buildBipartite(u, dets[ctrl], eventID, ctrl, disabled, enabled)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
