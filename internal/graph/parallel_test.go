package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberOfTransitions_CountsAcrossShards(t *testing.T) {
	a := buildChain(t)
	n, err := a.NumberOfTransitions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTransitions_MaterializesEveryTransitionData(t *testing.T) {
	a := buildChain(t)
	ea, _ := a.EventByLabel("a")
	eb, _ := a.EventByLabel("b")

	ts, err := a.Transitions(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []TransitionData{
		{InitialStateID: 1, EventID: ea.ID, TargetStateID: 2},
		{InitialStateID: 2, EventID: eb.ID, TargetStateID: 3},
	}, ts)
}

func TestFilterStatesByLabel_MatchesSubstring(t *testing.T) {
	a := buildChain(t)
	a.AddStateWithID(12, "12", false)

	matched, err := a.FilterStatesByLabel(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 2, matched.Len())
	assert.True(t, matched.Contains(int64(1)))
	assert.True(t, matched.Contains(int64(12)))
}

func TestNumberOfTransitions_RespectsCancellation(t *testing.T) {
	a := buildChain(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.NumberOfTransitions(ctx)
	assert.Error(t, err)
}
