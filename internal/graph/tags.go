package graph

import "github.com/dragomit/desctl/internal/logging"

// The methods in this file manage the tagged-transition tables (spec §3,
// §4.3). Plain automata use the bad-transition table; the violation,
// communication and disablement tables are populated on U-Structures
// (and pruned U-Structures).
// Invariant (spec §3): for every tagged-transition record (u, e, v),
// the raw transition (u, e, v) must exist on the automaton at the
// moment the tag is present - every Mark* method below checks this and
// logs + skips instead of panicking, per spec §7's propagation policy
// for structural warnings.

func (a *Automaton) transitionExists(td TransitionData) bool {
	s, ok := a.State(td.InitialStateID)
	if !ok {
		return false
	}
	return s.hasTransition(td.EventID, td.TargetStateID)
}

func (a *Automaton) warnMissingTransition(op string, td TransitionData) {
	logging.Get().Warnw("tagged transition has no backing raw transition, skipping",
		"operation", op, "state_id", td.InitialStateID, "event_id", td.EventID, "target_id", td.TargetStateID)
}

func (a *Automaton) MarkBad(td TransitionData) {
	if !a.transitionExists(td) {
		a.warnMissingTransition("MarkBad", td)
		return
	}
	a.badTransitions[td] = struct{}{}
}

func (a *Automaton) IsBad(td TransitionData) bool {
	_, ok := a.badTransitions[td]
	return ok
}

func (a *Automaton) BadTransitions() map[TransitionData]struct{} { return a.badTransitions }

func (a *Automaton) MarkUnconditionalViolation(td TransitionData) {
	if !a.transitionExists(td) {
		a.warnMissingTransition("MarkUnconditionalViolation", td)
		return
	}
	a.unconditionalViolations[td] = struct{}{}
}

func (a *Automaton) ClearUnconditionalViolation(td TransitionData) {
	delete(a.unconditionalViolations, td)
}

func (a *Automaton) IsUnconditionalViolation(td TransitionData) bool {
	_, ok := a.unconditionalViolations[td]
	return ok
}

func (a *Automaton) UnconditionalViolations() map[TransitionData]struct{} {
	return a.unconditionalViolations
}

func (a *Automaton) MarkConditionalViolation(td TransitionData) {
	if !a.transitionExists(td) {
		a.warnMissingTransition("MarkConditionalViolation", td)
		return
	}
	a.conditionalViolations[td] = struct{}{}
}

func (a *Automaton) ClearConditionalViolation(td TransitionData) {
	delete(a.conditionalViolations, td)
}

func (a *Automaton) IsConditionalViolation(td TransitionData) bool {
	_, ok := a.conditionalViolations[td]
	return ok
}

func (a *Automaton) ConditionalViolations() map[TransitionData]struct{} {
	return a.conditionalViolations
}

func (a *Automaton) MarkInvalidCommunication(td TransitionData, cd CommunicationData) {
	if !a.transitionExists(td) {
		a.warnMissingTransition("MarkInvalidCommunication", td)
		return
	}
	if cd.IndexOfSender == -1 {
		logging.Get().Warnw("communication record has zero or multiple senders, keeping with indexOfSender=-1",
			"state_id", td.InitialStateID, "event_id", td.EventID)
	}
	a.invalidCommunications[td] = cd
}

func (a *Automaton) InvalidCommunications() map[TransitionData]CommunicationData {
	return a.invalidCommunications
}

func (a *Automaton) MarkPotentialCommunication(td TransitionData, cd CommunicationData) {
	if !a.transitionExists(td) {
		a.warnMissingTransition("MarkPotentialCommunication", td)
		return
	}
	if cd.IndexOfSender == -1 {
		logging.Get().Warnw("communication record has zero or multiple senders, keeping with indexOfSender=-1",
			"state_id", td.InitialStateID, "event_id", td.EventID)
	}
	a.potentialCommunications[td] = cd
}

func (a *Automaton) PotentialCommunications() map[TransitionData]CommunicationData {
	return a.potentialCommunications
}

func (a *Automaton) RemovePotentialCommunication(td TransitionData) {
	delete(a.potentialCommunications, td)
}

func (a *Automaton) MarkNashCommunication(td TransitionData, nd NashCommunicationData) {
	if !a.transitionExists(td) {
		a.warnMissingTransition("MarkNashCommunication", td)
		return
	}
	a.nashCommunications[td] = nd
}

func (a *Automaton) NashCommunications() map[TransitionData]NashCommunicationData {
	return a.nashCommunications
}

func (a *Automaton) MarkDisablementDecision(td TransitionData, dd DisablementData) {
	if !a.transitionExists(td) {
		a.warnMissingTransition("MarkDisablementDecision", td)
		return
	}
	a.disablementDecisions[td] = dd
}

func (a *Automaton) DisablementDecisions() map[TransitionData]DisablementData {
	return a.disablementDecisions
}
