package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dragomit/desctl/internal/graph"
	"github.com/dragomit/desctl/internal/subset"
)

// buildEvent creates a single controllable event over a fresh automaton
// with the given number of controllers, controllable by every
// controller in ctrl (0-based).
func buildEvent(t *testing.T, nControllers int, ctrl ...int) (*graph.Automaton, *graph.Event) {
	t.Helper()
	u, err := graph.New(graph.KindUStructure, nControllers)
	require.NoError(t, err)
	controllable := make([]bool, nControllers)
	for _, c := range ctrl {
		controllable[c] = true
	}
	observable := make([]bool, nControllers)
	for i := range observable {
		observable[i] = true
	}
	e, err := u.AddEvent("e", observable, controllable)
	require.NoError(t, err)
	return u, e
}

// singletonDets builds a dets slice (indexed 0..nControllers) where
// every controller's determinization places every state alone in its
// own set - nothing is ever indistinguishable from anything else.
func singletonDets(u *graph.Automaton, nControllers int) []*subset.Determinization {
	out := make([]*subset.Determinization, nControllers+1)
	for k := 0; k <= nControllers; k++ {
		d := &subset.Determinization{Controller: k}
		for _, s := range u.States() {
			d.Sets = append(d.Sets, graph.NewStateSet(s))
		}
		out[k] = d
	}
	return out
}

// TestComputeEvent_ImmediatelyObservable covers the case where every
// disablement/enablement state is already alone in controller 1's
// indistinguishability set: the peel's round 0 resolves everything and
// the event is observable at level 0.
func TestComputeEvent_ImmediatelyObservable(t *testing.T) {
	u, e := buildEvent(t, 1, 0)
	d, _ := u.AddStateWithID(1, "d", false)
	en, _ := u.AddStateWithID(2, "e", false)
	d.DisablementEvents.Add(e.Label)
	en.EnablementEvents.Add(e.Label)

	dets := singletonDets(u, 1)
	res, err := ComputeEvent(context.Background(), u, dets, e.ID)
	require.NoError(t, err)
	assert.True(t, res.Observable)
	assert.Equal(t, 0, res.Level)
	for _, r := range res.Records {
		assert.Equal(t, 0, r.Level)
	}
}

// TestComputeEvent_StuckMutualEdgeIsNonObservable covers the fail-fast
// case: one disablement and one enablement state are indistinguishable
// to controller 1 (share a set) and nothing else anchors the peel at
// level 0. The round produces no progress, so the event is
// non-observable even though only two states are involved.
func TestComputeEvent_StuckMutualEdgeIsNonObservable(t *testing.T) {
	u, e := buildEvent(t, 1, 0)
	d, _ := u.AddStateWithID(1, "d", false)
	en, _ := u.AddStateWithID(2, "e", false)
	d.DisablementEvents.Add(e.Label)
	en.EnablementEvents.Add(e.Label)

	det := &subset.Determinization{Controller: 1, Sets: []*graph.StateSet{graph.NewStateSet(d, en)}}
	dets := []*subset.Determinization{{Controller: 0}, det}

	res, err := ComputeEvent(context.Background(), u, dets, e.ID)
	require.NoError(t, err)
	assert.False(t, res.Observable)
	assert.Empty(t, res.Records)
}

// TestComputeSystem_FailsWhenAnyEventIsNonObservable verifies
// ComputeSystem surfaces SystemNotObservable (spec §4.5 step 5) as soon
// as one controllable event's peel gets stuck.
func TestComputeSystem_FailsWhenAnyEventIsNonObservable(t *testing.T) {
	u, e := buildEvent(t, 1, 0)
	d, _ := u.AddStateWithID(1, "d", false)
	en, _ := u.AddStateWithID(2, "e", false)
	d.DisablementEvents.Add(e.Label)
	en.EnablementEvents.Add(e.Label)

	det := &subset.Determinization{Controller: 1, Sets: []*graph.StateSet{graph.NewStateSet(d, en)}}
	dets := []*subset.Determinization{{Controller: 0}, det}

	_, err := ComputeSystem(context.Background(), u, dets)
	require.Error(t, err)
}

// TestComputeEvent_UncontrolledEventIsVacuouslyObservable covers the
// zero-controller shortcut (spec §4.5: an event no controller controls
// trivially satisfies observability).
func TestComputeEvent_UncontrolledEventIsVacuouslyObservable(t *testing.T) {
	u, err := graph.New(graph.KindUStructure, 1)
	require.NoError(t, err)
	e, err := u.AddEvent("e", []bool{true}, []bool{false})
	require.NoError(t, err)

	res, err := ComputeEvent(context.Background(), u, nil, e.ID)
	require.NoError(t, err)
	assert.True(t, res.Observable)
}
