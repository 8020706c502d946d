// Package persist implements the JSON persistence contract of spec §6:
// a loader and serializer that only see a structured object, never the
// automaton's internal representation. Conversion goes through jsonXxx
// DTOs with toXxx/fromXxx methods, the way the rest of the retrieved
// corpus marshals domain objects that don't map 1:1 onto their wire
// shape.
package persist

import (
	"encoding/json"

	"github.com/dragomit/desctl/errs"
	"github.com/dragomit/desctl/internal/graph"
)

// jsonAutomaton is the wire schema of spec §6's persistence contract.
type jsonAutomaton struct {
	Type         int              `json:"type"`
	NStates      int              `json:"nStates"`
	InitialState int64            `json:"initialState"`
	NControllers int              `json:"nControllers"`
	Events       []jsonEvent      `json:"events"`
	States       []jsonState      `json:"states"`

	BadTransitions          []jsonTransitionRef `json:"badTransitions,omitempty"`
	UnconditionalViolations []jsonTransitionRef `json:"unconditionalViolations,omitempty"`
	ConditionalViolations   []jsonTransitionRef `json:"conditionalViolations,omitempty"`
	PotentialCommunications []jsonCommunication `json:"potentialCommunications,omitempty"`
	InvalidCommunications   []jsonCommunication `json:"invalidCommunications,omitempty"`
	NashCommunications      []jsonNash          `json:"nashCommunications,omitempty"`
	DisablementDecisions    []jsonDisablement   `json:"disablementDecisions,omitempty"`
}

type jsonEvent struct {
	Label        string `json:"label"`
	ID           int32  `json:"id"`
	Observable   []bool `json:"observable"`
	Controllable []bool `json:"controllable"`
}

type jsonTransition struct {
	EventID  int32 `json:"eventId"`
	TargetID int64 `json:"targetStateId"`
}

type jsonState struct {
	ID                  int64            `json:"id"`
	Label               string           `json:"label"`
	Marked              bool             `json:"marked"`
	Transitions         []jsonTransition `json:"transitions"`
	EnablementEvents    []string         `json:"enablementEvents,omitempty"`
	DisablementEvents   []string         `json:"disablementEvents,omitempty"`
	IllegalConfigEvents []string         `json:"illegalConfigEvents,omitempty"`
}

type jsonTransitionRef struct {
	InitialStateID int64 `json:"initialStateId"`
	EventID        int32 `json:"eventId"`
	TargetStateID  int64 `json:"targetStateId"`
}

type jsonCommunication struct {
	jsonTransitionRef
	Roles         []int `json:"roles"`
	IndexOfSender int   `json:"indexOfSender"`
}

type jsonNash struct {
	jsonCommunication
	Cost        float64 `json:"cost"`
	Probability float64 `json:"probability"`
}

type jsonDisablement struct {
	jsonTransitionRef
	Disabler []bool `json:"disabler"`
}

func (jt jsonTransitionRef) toTransitionData() graph.TransitionData {
	return graph.TransitionData{
		InitialStateID: jt.InitialStateID,
		EventID:        jt.EventID,
		TargetStateID:  jt.TargetStateID,
	}
}

func fromTransitionData(td graph.TransitionData) jsonTransitionRef {
	return jsonTransitionRef{InitialStateID: td.InitialStateID, EventID: td.EventID, TargetStateID: td.TargetStateID}
}

// Serialize renders a into the JSON schema of spec §6's persistence
// contract. The binary type byte (spec §6 "the first byte of legacy
// file headers") is carried in the Type field, derived from a.Kind().
func Serialize(a *graph.Automaton) ([]byte, error) {
	out := jsonAutomaton{
		Type:         int(a.Kind()),
		NStates:      a.NumStates(),
		InitialState: a.InitialState(),
		NControllers: a.NControllers(),
	}

	for _, e := range a.Events() {
		out.Events = append(out.Events, jsonEvent{
			Label:        e.Label,
			ID:           e.ID,
			Observable:   e.Observable,
			Controllable: e.Controllable,
		})
	}

	for _, s := range a.States() {
		js := jsonState{
			ID:                  s.ID,
			Label:               s.Label,
			Marked:              s.Marked,
			EnablementEvents:    s.EnablementEvents.Labels(),
			DisablementEvents:   s.DisablementEvents.Labels(),
			IllegalConfigEvents: s.IllegalConfigEvents.Labels(),
		}
		for _, t := range s.Transitions {
			js.Transitions = append(js.Transitions, jsonTransition{EventID: t.EventID, TargetID: t.TargetID})
		}
		out.States = append(out.States, js)
	}

	for td := range a.BadTransitions() {
		out.BadTransitions = append(out.BadTransitions, fromTransitionData(td))
	}
	for td := range a.UnconditionalViolations() {
		out.UnconditionalViolations = append(out.UnconditionalViolations, fromTransitionData(td))
	}
	for td := range a.ConditionalViolations() {
		out.ConditionalViolations = append(out.ConditionalViolations, fromTransitionData(td))
	}
	for td, cd := range a.PotentialCommunications() {
		out.PotentialCommunications = append(out.PotentialCommunications, toJSONCommunication(td, cd))
	}
	for td, cd := range a.InvalidCommunications() {
		out.InvalidCommunications = append(out.InvalidCommunications, toJSONCommunication(td, cd))
	}
	for td, nd := range a.NashCommunications() {
		out.NashCommunications = append(out.NashCommunications, jsonNash{
			jsonCommunication: toJSONCommunication(td, nd.CommunicationData),
			Cost:              nd.Cost,
			Probability:       nd.Probability,
		})
	}
	for td, dd := range a.DisablementDecisions() {
		out.DisablementDecisions = append(out.DisablementDecisions, jsonDisablement{
			jsonTransitionRef: fromTransitionData(td),
			Disabler:          dd.Disabler,
		})
	}

	return json.Marshal(out)
}

func toJSONCommunication(td graph.TransitionData, cd graph.CommunicationData) jsonCommunication {
	roles := make([]int, len(cd.Roles))
	for i, r := range cd.Roles {
		roles[i] = int(r)
	}
	return jsonCommunication{
		jsonTransitionRef: fromTransitionData(td),
		Roles:             roles,
		IndexOfSender:     cd.IndexOfSender,
	}
}

// Deserialize parses data into a fresh automaton, rejecting schema
// violations with an IllegalAutomatonPersisted error (spec §7) instead
// of constructing a partially-valid result.
func Deserialize(data []byte) (*graph.Automaton, error) {
	var in jsonAutomaton
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, errs.Wrap(errs.IllegalAutomatonPersisted, err, "decode automaton JSON")
	}

	kind := graph.Kind(in.Type)
	if kind != graph.KindAutomaton && kind != graph.KindUStructure && kind != graph.KindPrunedUStructure {
		return nil, errs.New(errs.IllegalAutomatonPersisted, "unknown type byte %d", in.Type)
	}
	if in.NControllers < 1 {
		return nil, errs.New(errs.IllegalAutomatonPersisted, "nControllers must be positive, got %d", in.NControllers)
	}

	a, err := graph.New(kind, in.NControllers)
	if err != nil {
		return nil, errs.Wrap(errs.IllegalAutomatonPersisted, err, "create automaton")
	}

	for _, je := range in.Events {
		if len(je.Observable) != in.NControllers || len(je.Controllable) != in.NControllers {
			return nil, errs.New(errs.IllegalAutomatonPersisted, "event %q: observable/controllable length mismatch", je.Label)
		}
		if _, err := a.AddEvent(je.Label, je.Observable, je.Controllable); err != nil {
			return nil, errs.Wrap(errs.IllegalAutomatonPersisted, err, "add event %q", je.Label)
		}
	}

	if len(in.States) != in.NStates {
		return nil, errs.New(errs.IllegalAutomatonPersisted, "nStates=%d but %d states given", in.NStates, len(in.States))
	}
	for _, js := range in.States {
		s, err := a.AddStateWithID(js.ID, js.Label, js.Marked)
		if err != nil {
			return nil, errs.Wrap(errs.IllegalAutomatonPersisted, err, "add state %d", js.ID)
		}
		for _, label := range js.EnablementEvents {
			s.EnablementEvents.Add(label)
		}
		for _, label := range js.DisablementEvents {
			s.DisablementEvents.Add(label)
		}
		for _, label := range js.IllegalConfigEvents {
			s.IllegalConfigEvents.Add(label)
		}
	}

	if in.InitialState != 0 {
		if err := a.SetInitialState(in.InitialState); err != nil {
			return nil, errs.Wrap(errs.IllegalAutomatonPersisted, err, "set initial state %d", in.InitialState)
		}
	}

	for _, js := range in.States {
		for _, jt := range js.Transitions {
			if err := a.AddTransition(js.ID, jt.EventID, jt.TargetID); err != nil {
				return nil, errs.Wrap(errs.IllegalAutomatonPersisted, err, "add transition %d --%d--> %d", js.ID, jt.EventID, jt.TargetID)
			}
		}
	}

	for _, jt := range in.BadTransitions {
		a.MarkBad(jt.toTransitionData())
	}
	for _, jt := range in.UnconditionalViolations {
		a.MarkUnconditionalViolation(jt.toTransitionData())
	}
	for _, jt := range in.ConditionalViolations {
		a.MarkConditionalViolation(jt.toTransitionData())
	}
	for _, jc := range in.PotentialCommunications {
		cd, err := jc.toCommunicationData(in.NControllers)
		if err != nil {
			return nil, err
		}
		a.MarkPotentialCommunication(jc.toTransitionData(), cd)
	}
	for _, jc := range in.InvalidCommunications {
		cd, err := jc.toCommunicationData(in.NControllers)
		if err != nil {
			return nil, err
		}
		a.MarkInvalidCommunication(jc.toTransitionData(), cd)
	}
	for _, jn := range in.NashCommunications {
		cd, err := jn.toCommunicationData(in.NControllers)
		if err != nil {
			return nil, err
		}
		a.MarkNashCommunication(jn.toTransitionData(), graph.NashCommunicationData{
			CommunicationData: cd,
			Cost:              jn.Cost,
			Probability:       jn.Probability,
		})
	}
	for _, jd := range in.DisablementDecisions {
		if len(jd.Disabler) != in.NControllers {
			return nil, errs.New(errs.IllegalAutomatonPersisted, "disablement decision %v: disabler length mismatch", jd.jsonTransitionRef)
		}
		a.MarkDisablementDecision(jd.toTransitionData(), graph.DisablementData{Disabler: jd.Disabler})
	}

	return a, nil
}

func (jc jsonCommunication) toCommunicationData(nControllers int) (graph.CommunicationData, error) {
	if len(jc.Roles) != nControllers {
		return graph.CommunicationData{}, errs.New(errs.IllegalAutomatonPersisted, "communication %v: roles length mismatch", jc.jsonTransitionRef)
	}
	roles := make([]graph.Role, len(jc.Roles))
	for i, r := range jc.Roles {
		roles[i] = graph.Role(r)
	}
	cd := graph.NewCommunicationData(roles)
	if jc.IndexOfSender >= 0 {
		cd.IndexOfSender = jc.IndexOfSender
	}
	return cd, nil
}
