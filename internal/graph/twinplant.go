package graph

// TwinPlant builds G_{Sigma*}: for every (state, controllable active
// event) with no defined transition, a transition to a single dump
// state is added and marked bad (spec §4.2). Per spec §9's resolution
// of the legacy-vs-newer source ambiguity, "active" here means
// controllable by at least one controller AND actually used by some
// transition in a (the primary-API interpretation, not merely declared
// in a's event table); this is an explicit Open Question decision, see
// DESIGN.md.
func TwinPlant(a *Automaton) *Automaton {
	result := a.Clone()
	dump := result.AddState(DumpStateLabel, false)

	used := make(map[int32]bool)
	for _, s := range a.States() {
		for _, t := range s.Transitions {
			used[t.EventID] = true
		}
	}

	var controllable []*Event
	for _, e := range a.Events() {
		if e.ControllerCount() > 0 && used[e.ID] {
			controllable = append(controllable, e)
		}
	}

	for _, s := range a.States() {
		for _, e := range controllable {
			if len(s.TransitionOn(e.ID)) == 0 {
				_ = result.AddTransition(s.ID, e.ID, dump.ID)
				result.MarkBad(TransitionData{InitialStateID: s.ID, EventID: e.ID, TargetStateID: dump.ID})
			}
		}
	}
	for _, e := range controllable {
		_ = result.AddTransition(dump.ID, e.ID, dump.ID)
	}
	return result
}
