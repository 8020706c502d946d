package ustructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dragomit/desctl/internal/graph"
)

// buildTwoControllerPlant builds a single plant automaton for a
// two-controller system where state 1 has two non-deterministic
// transitions on event "a" - to state 2 and to state 3 - and only
// (1,a,3) is marked bad. Composing this plant yields both an
// unconditional violation (where the system takes the bad branch but
// every observing controller's own real move lands on the good one) and a conditional
// violation (where the system takes the good branch but every
// observing controller's own move lands on the bad one).
func buildTwoControllerPlant(t *testing.T) *graph.Automaton {
	t.Helper()
	a, err := graph.New(graph.KindAutomaton, 2)
	require.NoError(t, err)
	_, err = a.AddEvent("a", []bool{true, true}, []bool{true, true})
	require.NoError(t, err)
	s1, err := a.AddStateWithID(1, "1", false)
	require.NoError(t, err)
	a.AddStateWithID(2, "2", false)
	a.AddStateWithID(3, "3", false)
	require.NoError(t, a.SetInitialState(s1.ID))

	ev, _ := a.EventByLabel("a")
	require.NoError(t, a.AddTransition(1, ev.ID, 2))
	require.NoError(t, a.AddTransition(1, ev.ID, 3))
	a.MarkBad(graph.TransitionData{InitialStateID: 1, EventID: ev.ID, TargetStateID: 3})
	return a
}

func TestCompose_ViolationClassification_S4S5(t *testing.T) {
	a := buildTwoControllerPlant(t)
	u, err := Compose(context.Background(), a)
	require.NoError(t, err)

	srcID := u.InitialState()

	findTarget := func(want []int64) (int64, bool) {
		for id, vec := range u.Vectors {
			if vec[0] == want[0] && vec[1] == want[1] && vec[2] == want[2] {
				return id, true
			}
		}
		return 0, false
	}

	unconditionalTarget, ok := findTarget([]int64{3, 2, 2})
	require.True(t, ok, "expected a U-state for vector (3,2,2)")
	conditionalTarget, ok := findTarget([]int64{2, 3, 3})
	require.True(t, ok, "expected a U-state for vector (2,3,3)")

	sA, ok := u.EventByLabel("<a,a,a>")
	require.True(t, ok)

	uncondTD := graph.TransitionData{InitialStateID: srcID, EventID: sA.ID, TargetStateID: unconditionalTarget}
	condTD := graph.TransitionData{InitialStateID: srcID, EventID: sA.ID, TargetStateID: conditionalTarget}

	assert.True(t, u.IsUnconditionalViolation(uncondTD), "system took the bad branch while neither controller locally saw it as bad")
	assert.False(t, u.IsConditionalViolation(uncondTD))

	assert.True(t, u.IsConditionalViolation(condTD), "system took the good branch while both controllers locally saw a bad transition")
	assert.False(t, u.IsUnconditionalViolation(condTD))
}

func TestComposeRequiresInitialState(t *testing.T) {
	a, err := graph.New(graph.KindAutomaton, 1)
	require.NoError(t, err)
	_, err = Compose(context.Background(), a)
	require.Error(t, err)
}

func TestComposeDropsDumpStates(t *testing.T) {
	a, err := graph.New(graph.KindAutomaton, 1)
	require.NoError(t, err)
	_, err = a.AddEvent("a", []bool{true}, []bool{true})
	require.NoError(t, err)
	s1, _ := a.AddStateWithID(1, "1", false)
	a.AddStateWithID(2, graph.DumpStateLabel, false)
	require.NoError(t, a.SetInitialState(s1.ID))
	ev, _ := a.EventByLabel("a")
	require.NoError(t, a.AddTransition(1, ev.ID, 2))

	u, err := Compose(context.Background(), a)
	require.NoError(t, err)
	for _, s := range u.States() {
		assert.NotContains(t, s.Label, graph.DumpStateLabel)
	}
}
