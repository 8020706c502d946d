package graph

import "github.com/dragomit/desctl/errs"

// Complement toggles marked on every state, adds a fresh dump state, and
// for every (state, event) pair with no outgoing transition on that
// event adds a transition to the dump state (spec §4.2). Refuses to run
// if a already contains a state labeled DumpStateLabel.
func Complement(a *Automaton) (*Automaton, error) {
	for _, s := range a.States() {
		if s.Label == DumpStateLabel {
			return nil, errs.New(errs.OperationFailed, "complement: automaton already contains a %q state", DumpStateLabel)
		}
	}

	result := NewLike(a)
	for _, e := range a.Events() {
		result.addEventWithID(clonedEvent(e))
	}
	for _, s := range a.States() {
		cp, _ := result.AddStateWithID(s.ID, s.Label, !s.Marked)
		cp.EnablementEvents = s.EnablementEvents.clone()
		cp.DisablementEvents = s.DisablementEvents.clone()
		cp.IllegalConfigEvents = s.IllegalConfigEvents.clone()
		for _, t := range s.Transitions {
			_ = result.AddTransition(s.ID, t.EventID, t.TargetID)
		}
	}
	dump := result.AddState(DumpStateLabel, false)

	events := a.Events()
	for _, s := range a.States() {
		for _, e := range events {
			if len(s.TransitionOn(e.ID)) == 0 {
				_ = result.AddTransition(s.ID, e.ID, dump.ID)
			}
		}
	}
	// the dump state is complete: every event loops back to itself.
	for _, e := range events {
		_ = result.AddTransition(dump.ID, e.ID, dump.ID)
	}

	copyInternalTags(a, result, func(TransitionData) bool { return true })
	if a.HasInitialState() {
		_ = result.SetInitialState(a.InitialState())
	}
	return result, nil
}
