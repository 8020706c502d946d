package graph

import "github.com/dragomit/desctl/errs"

// Accessible returns the sub-automaton reachable from the initial state
// by forward depth-first search (spec §4.2). It copies events, the
// reachable states (preserving ids), their outgoing transitions, then
// every tagged transition that remains internal, and finally renumbers.
// Returns a NoInitialState error if a has no initial state set.
func Accessible(a *Automaton) (*Automaton, error) {
	if !a.HasInitialState() {
		return nil, errs.Wrap(errs.NoInitialState, nil, "accessible: automaton has no initial state")
	}

	visited := make(map[int64]bool)
	var stack []int64
	stack = append(stack, a.InitialState())
	visited[a.InitialState()] = true
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s, _ := a.State(id)
		for _, t := range s.Transitions {
			if !visited[t.TargetID] {
				visited[t.TargetID] = true
				stack = append(stack, t.TargetID)
			}
		}
	}

	result := NewLike(a)
	for _, e := range a.Events() {
		result.addEventWithID(clonedEvent(e))
	}
	for _, s := range a.States() {
		if !visited[s.ID] {
			continue
		}
		cp, err := result.AddStateWithID(s.ID, s.Label, s.Marked)
		if err != nil {
			return nil, err
		}
		cp.EnablementEvents = s.EnablementEvents.clone()
		cp.DisablementEvents = s.DisablementEvents.clone()
		cp.IllegalConfigEvents = s.IllegalConfigEvents.clone()
	}
	for _, s := range a.States() {
		if !visited[s.ID] {
			continue
		}
		for _, t := range s.Transitions {
			if visited[t.TargetID] {
				_ = result.AddTransition(s.ID, t.EventID, t.TargetID)
			}
		}
	}
	copyInternalTags(a, result, func(td TransitionData) bool {
		return visited[td.InitialStateID] && visited[td.TargetStateID]
	})
	if err := result.SetInitialState(a.InitialState()); err != nil {
		return nil, err
	}
	result.Renumber()
	return result, nil
}

func clonedEvent(e *Event) *Event {
	cp := *e
	cp.Observable = append([]bool(nil), e.Observable...)
	cp.Controllable = append([]bool(nil), e.Controllable...)
	return &cp
}

// copyInternalTags copies every tagged-transition record from src to dst
// for which keep(td) holds - used by accessible/coaccessible to drop
// tags that no longer have both endpoints present (spec §4.2 "Tagged
// transitions survive only if both endpoints survive renumbering").
func copyInternalTags(src, dst *Automaton, keep func(TransitionData) bool) {
	for td := range src.badTransitions {
		if keep(td) {
			dst.badTransitions[td] = struct{}{}
		}
	}
	for td := range src.unconditionalViolations {
		if keep(td) {
			dst.unconditionalViolations[td] = struct{}{}
		}
	}
	for td := range src.conditionalViolations {
		if keep(td) {
			dst.conditionalViolations[td] = struct{}{}
		}
	}
	for td, v := range src.invalidCommunications {
		if keep(td) {
			dst.invalidCommunications[td] = v
		}
	}
	for td, v := range src.potentialCommunications {
		if keep(td) {
			dst.potentialCommunications[td] = v
		}
	}
	for td, v := range src.nashCommunications {
		if keep(td) {
			dst.nashCommunications[td] = v
		}
	}
	for td, v := range src.disablementDecisions {
		if keep(td) {
			dst.disablementDecisions[td] = v
		}
	}
}
