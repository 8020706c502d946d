package graph

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// eventSet is an insertion-ordered set of event labels - the
// "set-based contract" spec §9 settles on for a state's configuration
// flags, as opposed to the boolean-only variant the source evolved away
// from.
type eventSet struct {
	m *orderedmap.OrderedMap[string, struct{}]
}

func newEventSet() eventSet {
	return eventSet{m: orderedmap.New[string, struct{}]()}
}

func (s eventSet) Add(label string)      { s.m.Set(label, struct{}{}) }
func (s eventSet) Contains(label string) bool {
	_, ok := s.m.Get(label)
	return ok
}
func (s eventSet) Len() int { return s.m.Len() }

// Labels returns the set's members in insertion order.
func (s eventSet) Labels() []string {
	out := make([]string, 0, s.m.Len())
	for p := s.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

func (s eventSet) clone() eventSet {
	out := newEventSet()
	for p := s.m.Oldest(); p != nil; p = p.Next() {
		out.Add(p.Key)
	}
	return out
}

// State is a node of the automaton graph (spec §3). Transitions are
// ordered by insertion. The three configuration sets record, per
// controllable event label, whether this state witnesses an enablement,
// disablement, or illegal-configuration decision - they are populated
// by synchronized composition (spec §4.3), not by plain automata.
type State struct {
	ID          int64
	Label       string
	Marked      bool
	Transitions []Transition

	EnablementEvents    eventSet
	DisablementEvents   eventSet
	IllegalConfigEvents eventSet
}

func newState(id int64, label string, marked bool) *State {
	return &State{
		ID:                  id,
		Label:               label,
		Marked:              marked,
		EnablementEvents:    newEventSet(),
		DisablementEvents:   newEventSet(),
		IllegalConfigEvents: newEventSet(),
	}
}

// hasTransition reports whether s already has a transition for
// (eventID, targetID) - duplicates are disallowed (spec §3).
func (s *State) hasTransition(eventID int32, targetID int64) bool {
	for _, t := range s.Transitions {
		if t.EventID == eventID && t.TargetID == targetID {
			return true
		}
	}
	return false
}

// TransitionOn returns the target state ids reachable from s via eventID.
func (s *State) TransitionOn(eventID int32) []int64 {
	var out []int64
	for _, t := range s.Transitions {
		if t.EventID == eventID {
			out = append(out, t.TargetID)
		}
	}
	return out
}

func (s *State) clone() *State {
	cp := &State{
		ID:                  s.ID,
		Label:               s.Label,
		Marked:              s.Marked,
		Transitions:         append([]Transition(nil), s.Transitions...),
		EnablementEvents:    s.EnablementEvents.clone(),
		DisablementEvents:   s.DisablementEvents.clone(),
		IllegalConfigEvents: s.IllegalConfigEvents.clone(),
	}
	return cp
}
