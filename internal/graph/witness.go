package graph

import "github.com/dragomit/desctl/internal/ids"

// Witness finds a shortest trail from from to to, by breadth-first
// search over outgoing transitions, returning it as an ids.Sequence
// (spec §4.1's path/word primitive). Every violation and
// conditional/unconditional-violation transition this engine reports is
// otherwise just a (state, event, state) triple with no record of how
// the system got there; Witness recovers a concrete trail a caller can
// render as a counter-example word via Sequence.Word.
func Witness(a *Automaton, from, to int64) (ids.Sequence, bool) {
	if from == to {
		return ids.NewSequence(from), true
	}
	visited := map[int64]bool{from: true}
	prev := make(map[int64]struct {
		state int64
		event int32
	})
	queue := []int64{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		s, ok := a.State(id)
		if !ok {
			continue
		}
		for _, t := range s.Transitions {
			if visited[t.TargetID] {
				continue
			}
			visited[t.TargetID] = true
			prev[t.TargetID] = struct {
				state int64
				event int32
			}{id, t.EventID}
			if t.TargetID == to {
				return buildSequence(prev, from, to), true
			}
			queue = append(queue, t.TargetID)
		}
	}
	return ids.Sequence{}, false
}

func buildSequence(prev map[int64]struct {
	state int64
	event int32
}, from, to int64) ids.Sequence {
	var states []int64
	var events []int32
	for cur := to; ; {
		states = append(states, cur)
		if cur == from {
			break
		}
		p := prev[cur]
		events = append(events, p.event)
		cur = p.state
	}
	// states/events were collected backwards from to to from.
	for i, j := 0, len(states)-1; i < j; i, j = i+1, j-1 {
		states[i], states[j] = states[j], states[i]
	}
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return ids.Sequence{States: states, Events: events}
}
