package desctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFluentBuilders_ComposeASimpleChain(t *testing.T) {
	a, err := New(KindAutomaton, 1)
	require.NoError(t, err)

	s1 := NewState(a, "1").Build()
	s2 := NewState(a, "2").Build()
	s3 := NewState(a, "3").Marked().Build()

	ea, err := NewEvent(a, "a").ControllableBy(0, true).Build()
	require.NoError(t, err)
	eb, err := NewEvent(a, "b").ControllableBy(0, true).Build()
	require.NoError(t, err)

	require.NoError(t, NewTransition(a, s1.ID, ea.ID).To(s2.ID))
	require.NoError(t, NewTransition(a, s2.ID, eb.ID).To(s3.ID))
	require.NoError(t, a.SetInitialState(s1.ID))

	acc, err := Accessible(a)
	require.NoError(t, err)
	assert.Equal(t, 3, acc.NumStates())

	trimmed, err := Trim(a)
	require.NoError(t, err)
	assert.Equal(t, 3, trimmed.NumStates())
}

func TestEventBuilder_DefaultsEveryControllerObservableAndUncontrollable(t *testing.T) {
	a, err := New(KindAutomaton, 2)
	require.NoError(t, err)
	e, err := NewEvent(a, "a").Build()
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, e.Observable)
	assert.Equal(t, []bool{false, false}, e.Controllable)
}

func TestEventBuilder_ObservableByOverridesDefault(t *testing.T) {
	a, err := New(KindAutomaton, 2)
	require.NoError(t, err)
	e, err := NewEvent(a, "a").ObservableBy(1, false).ControllableBy(0, true).Build()
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, e.Observable)
	assert.Equal(t, []bool{true, false}, e.Controllable)
}

func TestWitness_FindsATrailToABadTransitionsTarget(t *testing.T) {
	a, err := New(KindAutomaton, 1)
	require.NoError(t, err)
	s1 := NewState(a, "1").Build()
	s2 := NewState(a, "2").Build()
	s3 := NewState(a, "3").Build()
	ea, err := NewEvent(a, "a").ControllableBy(0, true).Build()
	require.NoError(t, err)
	eb, err := NewEvent(a, "b").ControllableBy(0, true).Build()
	require.NoError(t, err)
	require.NoError(t, NewTransition(a, s1.ID, ea.ID).To(s2.ID))
	require.NoError(t, NewTransition(a, s2.ID, eb.ID).To(s3.ID))
	require.NoError(t, a.SetInitialState(s1.ID))
	a.MarkBad(TransitionData{InitialStateID: s2.ID, EventID: eb.ID, TargetStateID: s3.ID})

	seq, ok := Witness(a, a.InitialState(), s3.ID)
	require.True(t, ok)
	assert.Equal(t, []int64{s1.ID, s2.ID, s3.ID}, seq.States)
	assert.Equal(t, []int32{ea.ID, eb.ID}, seq.Events)

	word := seq.Word(func(eventID int32) string {
		e, _ := a.Event(eventID)
		return e.Label
	})
	assert.Equal(t, "a.b", word.String())
}

func TestWitness_ReportsNoTrailWhenTargetUnreachable(t *testing.T) {
	a, err := New(KindAutomaton, 1)
	require.NoError(t, err)
	s1 := NewState(a, "1").Build()
	s2 := NewState(a, "2").Build()
	require.NoError(t, a.SetInitialState(s1.ID))

	_, ok := Witness(a, s1.ID, s2.ID)
	assert.False(t, ok)
}
