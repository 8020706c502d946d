package graph

// Coaccessible builds invert(a), pushes every marked state, and explores
// backward from them; a state of a is in the result iff some marked
// state can reach it in the inverse (i.e. it can reach a marked state in
// a). Transitions are reconstructed from the original automaton between
// surviving states, which naturally avoids duplicating self-loops (spec
// §4.2).
func Coaccessible(a *Automaton) *Automaton {
	inv := Invert(a)

	visited := make(map[int64]bool)
	var stack []int64
	for _, s := range a.States() {
		if s.Marked {
			if !visited[s.ID] {
				visited[s.ID] = true
				stack = append(stack, s.ID)
			}
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s, _ := inv.State(id)
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
		cp, _ := result.AddStateWithID(s.ID, s.Label, s.Marked)
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
	if a.HasInitialState() && visited[a.InitialState()] {
		_ = result.SetInitialState(a.InitialState())
	}
	result.Renumber()
	return result
}

// Trim returns coaccessible(accessible(a)) - accessible first is
// cheaper since it typically prunes the state space before the
// coaccessible backward pass (spec §4.2).
func Trim(a *Automaton) (*Automaton, error) {
	acc, err := Accessible(a)
	if err != nil {
		return nil, err
	}
	return Coaccessible(acc), nil
}
