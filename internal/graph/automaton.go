package graph

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/dragomit/desctl/errs"
	"github.com/dragomit/desctl/internal/ids"
)

// Kind distinguishes the three automaton shapes spec §3 names: a plain
// automaton, a U-Structure, and a pruned U-Structure. U-Structures carry
// the tagged-transition lists; pruned U-structures additionally allow
// removing inactive events (handled by internal/protocol).
type Kind int

const (
	KindAutomaton Kind = iota
	KindUStructure
	KindPrunedUStructure
)

func (k Kind) String() string {
	switch k {
	case KindAutomaton:
		return "Automaton"
	case KindUStructure:
		return "UStructure"
	case KindPrunedUStructure:
		return "PrunedUStructure"
	default:
		return "Unknown"
	}
}

// DumpStateLabel is the reserved label complement() gives its fresh dump
// state. complement() refuses to run if this label is already in use
// (spec §4.2).
const DumpStateLabel = "Dump State"

// Automaton is the core graph model of spec §3: states, events with
// per-controller observability/controllability, typed transitions, and
// (for U-Structure variants) the tagged-transition tables of spec §4.3.
// An Automaton exclusively owns its events, states, transitions, and
// tagged-transition lists (spec §3 "Ownership").
type Automaton struct {
	kind         Kind
	nControllers int

	events       *orderedmap.OrderedMap[int32, *Event]
	eventByLabel map[string]int32
	nextEventID  int32

	states      *orderedmap.OrderedMap[int64, *State]
	nextStateID int64

	initialState int64 // 0 iff unset (spec §3 invariant)

	badTransitions          map[TransitionData]struct{}
	unconditionalViolations map[TransitionData]struct{}
	conditionalViolations   map[TransitionData]struct{}
	invalidCommunications   map[TransitionData]CommunicationData
	potentialCommunications map[TransitionData]CommunicationData
	nashCommunications      map[TransitionData]NashCommunicationData
	disablementDecisions    map[TransitionData]DisablementData
}

// New creates an empty automaton of the given kind with a fixed
// controller count (spec §3 "Lifecycles").
func New(kind Kind, nControllers int) (*Automaton, error) {
	if nControllers < 1 || nControllers > MaxControllers {
		return nil, errs.New(errs.InvalidArgument, "controller count must be in [1, %d], got %d", MaxControllers, nControllers)
	}
	return &Automaton{
		kind:                    kind,
		nControllers:            nControllers,
		events:                  orderedmap.New[int32, *Event](),
		eventByLabel:            make(map[string]int32),
		states:                  orderedmap.New[int64, *State](),
		badTransitions:          make(map[TransitionData]struct{}),
		unconditionalViolations: make(map[TransitionData]struct{}),
		conditionalViolations:   make(map[TransitionData]struct{}),
		invalidCommunications:   make(map[TransitionData]CommunicationData),
		potentialCommunications: make(map[TransitionData]CommunicationData),
		nashCommunications:      make(map[TransitionData]NashCommunicationData),
		disablementDecisions:    make(map[TransitionData]DisablementData),
	}, nil
}

// NewLike creates an empty automaton of the same kind and controller
// count as a - the "builder" spec §9's design notes describe, used by
// every graph algorithm to produce its result automaton.
func NewLike(a *Automaton) *Automaton {
	result, err := New(a.kind, a.nControllers)
	if err != nil {
		// a was already validated at construction time, so this can't happen.
		panic(err)
	}
	return result
}

func (a *Automaton) Kind() Kind         { return a.kind }
func (a *Automaton) NControllers() int  { return a.nControllers }
func (a *Automaton) InitialState() int64 { return a.initialState }
func (a *Automaton) HasInitialState() bool { return a.initialState != 0 }

// SetInitialState sets s as the initial state. s must already exist.
func (a *Automaton) SetInitialState(id int64) error {
	if _, ok := a.states.Get(id); !ok {
		return errs.New(errs.InvalidArgument, "set initial state: state %d does not exist", id)
	}
	a.initialState = id
	return nil
}

// AddEvent appends a new event with the given label and per-controller
// masks, assigning it the next 1-based id (spec §3). Re-adding the same
// label returns the existing event instead of creating a duplicate.
func (a *Automaton) AddEvent(label string, observable, controllable []bool) (*Event, error) {
	if len(observable) != a.nControllers || len(controllable) != a.nControllers {
		return nil, errs.New(errs.InvalidArgument, "event %q: observable/controllable must have length %d", label, a.nControllers)
	}
	if id, ok := a.eventByLabel[label]; ok {
		e, _ := a.events.Get(id)
		return e, nil
	}
	a.nextEventID++
	e := &Event{
		ID:           a.nextEventID,
		Label:        label,
		Vector:       ids.ParseLabelVector(label),
		Observable:   append([]bool(nil), observable...),
		Controllable: append([]bool(nil), controllable...),
	}
	a.events.Set(e.ID, e)
	a.eventByLabel[label] = e.ID
	return e, nil
}

// addEventWithID is used by Clone/graph-algorithm copies that must
// preserve event ids exactly.
func (a *Automaton) addEventWithID(e *Event) {
	a.events.Set(e.ID, e)
	a.eventByLabel[e.Label] = e.ID
	if e.ID > a.nextEventID {
		a.nextEventID = e.ID
	}
}

func (a *Automaton) Event(id int32) (*Event, bool) {
	return a.events.Get(id)
}

func (a *Automaton) EventByLabel(label string) (*Event, bool) {
	id, ok := a.eventByLabel[label]
	if !ok {
		return nil, false
	}
	return a.events.Get(id)
}

// Events returns all events in insertion order (spec §5 "iteration over
// events is stable").
func (a *Automaton) Events() []*Event {
	out := make([]*Event, 0, a.events.Len())
	for p := a.events.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Value)
	}
	return out
}

// AddState appends a new state with an automatically assigned id.
func (a *Automaton) AddState(label string, marked bool) *State {
	a.nextStateID++
	s := newState(a.nextStateID, label, marked)
	a.states.Set(s.ID, s)
	return s
}

// AddStateWithID inserts a state at a specific id, failing with
// OperationFailed if the id is already taken (spec §7).
func (a *Automaton) AddStateWithID(id int64, label string, marked bool) (*State, error) {
	if _, exists := a.states.Get(id); exists {
		return nil, errs.New(errs.OperationFailed, "add state: id %d already exists", id)
	}
	s := newState(id, label, marked)
	a.states.Set(id, s)
	if id > a.nextStateID {
		a.nextStateID = id
	}
	return s, nil
}

func (a *Automaton) State(id int64) (*State, bool) {
	return a.states.Get(id)
}

// States returns all states in insertion (current id assignment) order.
func (a *Automaton) States() []*State {
	out := make([]*State, 0, a.states.Len())
	for p := a.states.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Value)
	}
	return out
}

func (a *Automaton) NumStates() int { return a.states.Len() }

// RemoveState deletes a state and every transition (incoming, outgoing,
// or tagged) that references it - used by synchronized composition to
// drop U-states that routed through a dump state (spec §4.3 "After the
// queue empties, drop any U-state whose label contains the dump-state
// label").
func (a *Automaton) RemoveState(id int64) {
	a.states.Delete(id)
	if a.initialState == id {
		a.initialState = 0
	}
	for _, s := range a.States() {
		kept := s.Transitions[:0]
		for _, t := range s.Transitions {
			if t.TargetID != id {
				kept = append(kept, t)
			}
		}
		s.Transitions = kept
	}
	keep := func(td TransitionData) bool {
		return td.InitialStateID != id && td.TargetStateID != id
	}
	a.badTransitions = filterSet(a.badTransitions, keep)
	a.unconditionalViolations = filterSet(a.unconditionalViolations, keep)
	a.conditionalViolations = filterSet(a.conditionalViolations, keep)
	a.invalidCommunications = filterComm(a.invalidCommunications, keep)
	a.potentialCommunications = filterComm(a.potentialCommunications, keep)
	for td := range a.nashCommunications {
		if !keep(td) {
			delete(a.nashCommunications, td)
		}
	}
	for td := range a.disablementDecisions {
		if !keep(td) {
			delete(a.disablementDecisions, td)
		}
	}
}

// HasTransition reports whether srcID has a transition to targetID on
// eventID.
func (a *Automaton) HasTransition(td TransitionData) bool {
	s, ok := a.states.Get(td.InitialStateID)
	if !ok {
		return false
	}
	return s.hasTransition(td.EventID, td.TargetStateID)
}

// RemoveTransition deletes a single (src, event, target) edge and any
// tagged-transition record keyed on it exactly - used by protocol
// pruning (spec §4.6), which removes individual edges rather than whole
// states.
func (a *Automaton) RemoveTransition(td TransitionData) {
	s, ok := a.states.Get(td.InitialStateID)
	if !ok {
		return
	}
	kept := s.Transitions[:0]
	for _, t := range s.Transitions {
		if !(t.EventID == td.EventID && t.TargetID == td.TargetStateID) {
			kept = append(kept, t)
		}
	}
	s.Transitions = kept
	delete(a.badTransitions, td)
	delete(a.unconditionalViolations, td)
	delete(a.conditionalViolations, td)
	delete(a.invalidCommunications, td)
	delete(a.potentialCommunications, td)
	delete(a.nashCommunications, td)
	delete(a.disablementDecisions, td)
}

func filterSet(m map[TransitionData]struct{}, keep func(TransitionData) bool) map[TransitionData]struct{} {
	out := make(map[TransitionData]struct{}, len(m))
	for td := range m {
		if keep(td) {
			out[td] = struct{}{}
		}
	}
	return out
}

func filterComm(m map[TransitionData]CommunicationData, keep func(TransitionData) bool) map[TransitionData]CommunicationData {
	out := make(map[TransitionData]CommunicationData, len(m))
	for td, v := range m {
		if keep(td) {
			out[td] = v
		}
	}
	return out
}

// AddTransition adds a transition from src on eventID to target,
// rejecting references to missing events/states (spec §3 invariants).
// Re-adding an existing (event, target) pair is a no-op, so no duplicate
// is ever stored.
func (a *Automaton) AddTransition(srcID int64, eventID int32, targetID int64) error {
	src, ok := a.states.Get(srcID)
	if !ok {
		return errs.New(errs.InvalidArgument, "add transition: source state %d does not exist", srcID)
	}
	if _, ok := a.events.Get(eventID); !ok {
		return errs.New(errs.InvalidArgument, "add transition: event %d does not exist", eventID)
	}
	if _, ok := a.states.Get(targetID); !ok {
		return errs.New(errs.InvalidArgument, "add transition: target state %d does not exist", targetID)
	}
	if src.hasTransition(eventID, targetID) {
		return nil // idempotent: spec §3 disallows duplicates, not re-adding the same edge
	}
	src.Transitions = append(src.Transitions, Transition{EventID: eventID, TargetID: targetID})
	return nil
}

// Renumber compacts state ids to a contiguous 1..n range, preserving
// current iteration order, and rewrites every transition and tagged-
// transition record accordingly (spec §3 "a final renumber makes ids
// contiguous"). It is called internally by accessible, coaccessible,
// intersection, union and synchronized composition. Subset relabeling
// does not call it, so clone ids keep their origId + |U|*occurrence form.
func (a *Automaton) Renumber() map[int64]int64 {
	remap := make(map[int64]int64, a.states.Len())
	newStates := orderedmap.New[int64, *State]()
	var next int64
	for p := a.states.Oldest(); p != nil; p = p.Next() {
		next++
		remap[p.Key] = next
		s := p.Value
		s.ID = next
		newStates.Set(next, s)
	}
	for p := newStates.Oldest(); p != nil; p = p.Next() {
		for i := range p.Value.Transitions {
			p.Value.Transitions[i].TargetID = remap[p.Value.Transitions[i].TargetID]
		}
	}
	a.states = newStates
	a.nextStateID = next
	if a.initialState != 0 {
		a.initialState = remap[a.initialState]
	}
	a.remapTaggedTransitions(remap)
	return remap
}

func (a *Automaton) remapTaggedTransitions(remap map[int64]int64) {
	remapSet := func(m map[TransitionData]struct{}) map[TransitionData]struct{} {
		out := make(map[TransitionData]struct{}, len(m))
		for td := range m {
			ni, iok := remap[td.InitialStateID]
			nt, tok := remap[td.TargetStateID]
			if iok && tok {
				out[TransitionData{InitialStateID: ni, EventID: td.EventID, TargetStateID: nt}] = struct{}{}
			}
		}
		return out
	}
	a.badTransitions = remapSet(a.badTransitions)
	a.unconditionalViolations = remapSet(a.unconditionalViolations)
	a.conditionalViolations = remapSet(a.conditionalViolations)

	remapComm := func(m map[TransitionData]CommunicationData) map[TransitionData]CommunicationData {
		out := make(map[TransitionData]CommunicationData, len(m))
		for td, v := range m {
			ni, iok := remap[td.InitialStateID]
			nt, tok := remap[td.TargetStateID]
			if iok && tok {
				out[TransitionData{InitialStateID: ni, EventID: td.EventID, TargetStateID: nt}] = v
			}
		}
		return out
	}
	a.invalidCommunications = remapComm(a.invalidCommunications)
	a.potentialCommunications = remapComm(a.potentialCommunications)

	newNash := make(map[TransitionData]NashCommunicationData, len(a.nashCommunications))
	for td, v := range a.nashCommunications {
		ni, iok := remap[td.InitialStateID]
		nt, tok := remap[td.TargetStateID]
		if iok && tok {
			newNash[TransitionData{InitialStateID: ni, EventID: td.EventID, TargetStateID: nt}] = v
		}
	}
	a.nashCommunications = newNash

	newDisable := make(map[TransitionData]DisablementData, len(a.disablementDecisions))
	for td, v := range a.disablementDecisions {
		ni, iok := remap[td.InitialStateID]
		nt, tok := remap[td.TargetStateID]
		if iok && tok {
			newDisable[TransitionData{InitialStateID: ni, EventID: td.EventID, TargetStateID: nt}] = v
		}
	}
	a.disablementDecisions = newDisable
}

// Clone returns a deep, independent copy of a (spec §3 "cloning is
// deep"). The derived automaton shares no mutable state with a.
func (a *Automaton) Clone() *Automaton {
	cp := NewLike(a)
	for _, e := range a.Events() {
		ecp := *e
		ecp.Observable = append([]bool(nil), e.Observable...)
		ecp.Controllable = append([]bool(nil), e.Controllable...)
		cp.addEventWithID(&ecp)
	}
	for _, s := range a.States() {
		scp := s.clone()
		cp.states.Set(scp.ID, scp)
		if scp.ID > cp.nextStateID {
			cp.nextStateID = scp.ID
		}
	}
	cp.initialState = a.initialState
	cp.nextEventID = a.nextEventID

	for td := range a.badTransitions {
		cp.badTransitions[td] = struct{}{}
	}
	for td := range a.unconditionalViolations {
		cp.unconditionalViolations[td] = struct{}{}
	}
	for td := range a.conditionalViolations {
		cp.conditionalViolations[td] = struct{}{}
	}
	for td, v := range a.invalidCommunications {
		cp.invalidCommunications[td] = v
	}
	for td, v := range a.potentialCommunications {
		cp.potentialCommunications[td] = v
	}
	for td, v := range a.nashCommunications {
		cp.nashCommunications[td] = v
	}
	for td, v := range a.disablementDecisions {
		d := DisablementData{Disabler: append([]bool(nil), v.Disabler...)}
		cp.disablementDecisions[td] = d
	}
	return cp
}

// CloneAs returns a deep copy of a reinterpreted as kind - used by
// protocol analysis to turn a U-Structure into a pruned U-structure
// (spec §4.6 "pruned-U-structure-only operations").
func (a *Automaton) CloneAs(kind Kind) *Automaton {
	cp := a.Clone()
	cp.kind = kind
	return cp
}

func (a *Automaton) String() string {
	return fmt.Sprintf("%s(n=%d controllers=%d events=%d states=%d)", a.kind, a.NumStates(), a.nControllers, a.events.Len(), a.states.Len())
}
