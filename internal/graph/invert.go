package graph

// Invert returns a shallow graph with every transition direction
// reversed, preserving state ids, and carrying no tagged-transition
// data (spec §4.2).
func Invert(a *Automaton) *Automaton {
	result := NewLike(a)
	for _, e := range a.Events() {
		result.addEventWithID(clonedEvent(e))
	}
	for _, s := range a.States() {
		cp, _ := result.AddStateWithID(s.ID, s.Label, s.Marked)
		cp.EnablementEvents = s.EnablementEvents.clone()
		cp.DisablementEvents = s.DisablementEvents.clone()
		cp.IllegalConfigEvents = s.IllegalConfigEvents.clone()
	}
	for _, s := range a.States() {
		for _, t := range s.Transitions {
			_ = result.AddTransition(t.TargetID, t.EventID, s.ID)
		}
	}
	if a.HasInitialState() {
		_ = result.SetInitialState(a.InitialState())
	}
	return result
}
