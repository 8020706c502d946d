package graph

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// shardCount picks a worker count bounded by both a fixed cap of 8
// workers and the amount of work, so tiny automata don't pay goroutine
// overhead for nothing.
func shardCount(n int) int {
	const maxWorkers = 8
	if n < maxWorkers {
		if n < 1 {
			return 1
		}
		return n
	}
	return maxWorkers
}

// NumberOfTransitions counts transitions across all states. Per spec §5
// this runs as a data-parallel fork-join over disjoint shards of the
// state table, each shard reading an immutable snapshot (States()) and
// writing into its own slot of a pre-sized result array.
func (a *Automaton) NumberOfTransitions(ctx context.Context) (int, error) {
	states := a.States()
	shards := shardCount(len(states))
	counts := make([]int, shards)

	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(states) + shards - 1) / shards
	if chunk == 0 {
		chunk = 1
	}
	for i := 0; i < shards; i++ {
		i := i
		lo := i * chunk
		hi := lo + chunk
		if lo >= len(states) {
			continue
		}
		if hi > len(states) {
			hi = len(states)
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n := 0
			for _, s := range states[lo:hi] {
				n += len(s.Transitions)
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	return total, nil
}

// Transitions materializes the full transition list as TransitionData,
// using the same disjoint-shard fork-join model as NumberOfTransitions.
func (a *Automaton) Transitions(ctx context.Context) ([]TransitionData, error) {
	states := a.States()
	shards := shardCount(len(states))
	results := make([][]TransitionData, shards)

	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(states) + shards - 1) / shards
	if chunk == 0 {
		chunk = 1
	}
	for i := 0; i < shards; i++ {
		i := i
		lo := i * chunk
		hi := lo + chunk
		if lo >= len(states) {
			continue
		}
		if hi > len(states) {
			hi = len(states)
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var out []TransitionData
			for _, s := range states[lo:hi] {
				for _, t := range s.Transitions {
					out = append(out, TransitionData{InitialStateID: s.ID, EventID: t.EventID, TargetStateID: t.TargetID})
				}
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var all []TransitionData
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// FilterStatesByLabel returns the states whose label contains pattern as
// a substring, computed as a parallel scan over disjoint shards (spec
// §5 "filtering states by label").
func (a *Automaton) FilterStatesByLabel(ctx context.Context, pattern string) (*StateSet, error) {
	states := a.States()
	shards := shardCount(len(states))
	results := make([][]*State, shards)

	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(states) + shards - 1) / shards
	if chunk == 0 {
		chunk = 1
	}
	for i := 0; i < shards; i++ {
		i := i
		lo := i * chunk
		hi := lo + chunk
		if lo >= len(states) {
			continue
		}
		if hi > len(states) {
			hi = len(states)
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var matched []*State
			for _, s := range states[lo:hi] {
				if strings.Contains(s.Label, pattern) {
					matched = append(matched, s)
				}
			}
			results[i] = matched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := NewStateSet()
	for _, r := range results {
		for _, s := range r {
			out.Add(s)
		}
	}
	return out, nil
}
