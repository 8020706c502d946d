package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dragomit/desctl/errs"
	"github.com/dragomit/desctl/internal/graph"
)

func buildRoundTripAutomaton(t *testing.T) *graph.Automaton {
	t.Helper()
	a, err := graph.New(graph.KindUStructure, 2)
	require.NoError(t, err)
	ea, err := a.AddEvent("a", []bool{true, true}, []bool{true, false})
	require.NoError(t, err)
	eb, err := a.AddEvent("b", []bool{false, true}, []bool{false, true})
	require.NoError(t, err)

	s1, err := a.AddStateWithID(1, "1", false)
	require.NoError(t, err)
	a.AddStateWithID(2, "2", true)
	require.NoError(t, a.SetInitialState(s1.ID))

	require.NoError(t, a.AddTransition(1, ea.ID, 2))
	require.NoError(t, a.AddTransition(2, eb.ID, 1))

	badTD := graph.TransitionData{InitialStateID: 1, EventID: ea.ID, TargetStateID: 2}
	a.MarkBad(badTD)
	a.MarkUnconditionalViolation(badTD)

	commTD := graph.TransitionData{InitialStateID: 2, EventID: eb.ID, TargetStateID: 1}
	a.MarkPotentialCommunication(commTD, graph.NewCommunicationData([]graph.Role{graph.RoleSender, graph.RoleReceiver}))
	a.MarkDisablementDecision(badTD, graph.DisablementData{Disabler: []bool{true, false}})

	s, _ := a.State(1)
	s.EnablementEvents.Add("a")
	s.IllegalConfigEvents.Add("a")

	return a
}

func TestRoundTrip_PreservesStructureAndTags(t *testing.T) {
	a := buildRoundTripAutomaton(t)
	data, err := Serialize(a)
	require.NoError(t, err)

	back, err := Deserialize(data)
	require.NoError(t, err)

	assert.Equal(t, a.Kind(), back.Kind())
	assert.Equal(t, a.NControllers(), back.NControllers())
	assert.Equal(t, a.NumStates(), back.NumStates())
	assert.Equal(t, a.InitialState(), back.InitialState())

	for _, s := range a.States() {
		bs, ok := back.State(s.ID)
		require.True(t, ok)
		assert.Equal(t, s.Label, bs.Label)
		assert.Equal(t, s.Marked, bs.Marked)
		assert.ElementsMatch(t, s.Transitions, bs.Transitions)
		assert.ElementsMatch(t, s.EnablementEvents.Labels(), bs.EnablementEvents.Labels())
		assert.ElementsMatch(t, s.IllegalConfigEvents.Labels(), bs.IllegalConfigEvents.Labels())
	}

	for _, e := range a.Events() {
		be, ok := back.EventByLabel(e.Label)
		require.True(t, ok)
		assert.Equal(t, e.Observable, be.Observable)
		assert.Equal(t, e.Controllable, be.Controllable)
	}

	badTD := graph.TransitionData{InitialStateID: 1, EventID: 1, TargetStateID: 2}
	assert.True(t, back.IsBad(badTD))
	assert.True(t, back.IsUnconditionalViolation(badTD))
	require.Len(t, back.DisablementDecisions(), 1)
	require.Len(t, back.PotentialCommunications(), 1)
}

func TestDeserialize_RejectsUnknownType(t *testing.T) {
	_, err := Deserialize([]byte(`{"type":99,"nStates":0,"nControllers":1,"events":[],"states":[]}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrIllegalAutomatonPersisted)
}

func TestDeserialize_RejectsStateCountMismatch(t *testing.T) {
	_, err := Deserialize([]byte(`{"type":0,"nStates":2,"nControllers":1,"events":[],"states":[{"id":1,"label":"1","marked":false,"transitions":[]}]}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrIllegalAutomatonPersisted)
}

func TestDeserialize_RejectsObservableLengthMismatch(t *testing.T) {
	_, err := Deserialize([]byte(`{"type":0,"nStates":0,"nControllers":2,"events":[{"label":"a","id":1,"observable":[true],"controllable":[true,false]}],"states":[]}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrIllegalAutomatonPersisted)
}

func TestDeserialize_RejectsMalformedJSON(t *testing.T) {
	_, err := Deserialize([]byte(`{not json`))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrIllegalAutomatonPersisted)
}
