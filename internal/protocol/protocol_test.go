package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dragomit/desctl/internal/graph"
)

// buildCommPlant builds a 2-controller U-structure-shaped automaton:
// 1 --<c,c,*>--> 2, with 2 branching into a conflicting transition
// (--<d,d,d>--> 3, whose vector disagrees with the communication's
// established system slot) and a compatible one (--<c,*,f>--> 4, whose
// system slot agrees and whose controller-2 slot is newly established).
func buildCommPlant(t *testing.T) (*graph.Automaton, *graph.Event) {
	t.Helper()
	u, err := graph.New(graph.KindUStructure, 2)
	require.NoError(t, err)
	c, err := u.AddEvent("<c,c,*>", []bool{true, false}, []bool{false, false})
	require.NoError(t, err)
	d, err := u.AddEvent("<d,d,d>", []bool{true, true}, []bool{false, false})
	require.NoError(t, err)
	f, err := u.AddEvent("<c,*,f>", []bool{false, true}, []bool{false, false})
	require.NoError(t, err)

	s1, _ := u.AddStateWithID(1, "(1,1,1)", false)
	u.AddStateWithID(2, "(2,2,2)", false)
	u.AddStateWithID(3, "(3,3,3)", false)
	u.AddStateWithID(4, "(2,2,4)", false)
	require.NoError(t, u.SetInitialState(s1.ID))

	require.NoError(t, u.AddTransition(1, c.ID, 2))
	require.NoError(t, u.AddTransition(2, d.ID, 3))
	require.NoError(t, u.AddTransition(2, f.ID, 4))
	return u, c
}

func TestApplyProtocol_PrunesConflictingTransitionsFromChosenTarget(t *testing.T) {
	u, c := buildCommPlant(t)
	chosenTD := graph.TransitionData{InitialStateID: 1, EventID: c.ID, TargetStateID: 2}
	u.MarkPotentialCommunication(chosenTD, graph.NewCommunicationData([]graph.Role{graph.RoleSender, graph.RoleReceiver}))

	p := &Protocol{Chosen: []graph.TransitionData{chosenTD}}
	result, err := ApplyProtocol(context.Background(), u, p, false)
	require.NoError(t, err)

	assert.Equal(t, graph.KindPrunedUStructure, result.Kind())
	assert.True(t, result.HasTransition(chosenTD), "the chosen communication transition itself is never pruned")

	dEvt, _ := u.EventByLabel("<d,d,d>")
	fEvt, _ := u.EventByLabel("<c,*,f>")
	assert.False(t, result.HasTransition(graph.TransitionData{InitialStateID: 2, EventID: dEvt.ID, TargetStateID: 3}),
		"the system slot of <d,d,d> disagrees with the communication's established 'c', so it's pruned")
	assert.True(t, result.HasTransition(graph.TransitionData{InitialStateID: 2, EventID: fEvt.ID, TargetStateID: 4}),
		"the system slot of <c,*,f> agrees with 'c' and the controller-2 slot is unestablished, so it survives")
}

func TestApplyProtocol_DiscardUnusedDropsUnchosenCommunications(t *testing.T) {
	u, c := buildCommPlant(t)
	chosenTD := graph.TransitionData{InitialStateID: 1, EventID: c.ID, TargetStateID: 2}
	u.MarkPotentialCommunication(chosenTD, graph.NewCommunicationData([]graph.Role{graph.RoleSender, graph.RoleReceiver}))

	// (2,<c,*,f>,4) survives pruning, so only discardUnused can drop its tag.
	fEvt, _ := u.EventByLabel("<c,*,f>")
	unchosenTD := graph.TransitionData{InitialStateID: 2, EventID: fEvt.ID, TargetStateID: 4}
	u.MarkPotentialCommunication(unchosenTD, graph.NewCommunicationData([]graph.Role{graph.RoleReceiver, graph.RoleSender}))

	p := &Protocol{Chosen: []graph.TransitionData{chosenTD}}

	kept, err := ApplyProtocol(context.Background(), u, p, false)
	require.NoError(t, err)
	_, stillThere := kept.PotentialCommunications()[unchosenTD]
	assert.True(t, stillThere)

	discarded, err := ApplyProtocol(context.Background(), u, p, true)
	require.NoError(t, err)
	_, gone := discarded.PotentialCommunications()[unchosenTD]
	assert.False(t, gone)
	_, chosenKept := discarded.PotentialCommunications()[chosenTD]
	assert.True(t, chosenKept)
}

func TestIsFeasibleProtocol_TrueWhenNoChosenCommunicationHasAnIdentifiedSender(t *testing.T) {
	u, c := buildCommPlant(t)
	chosenTD := graph.TransitionData{InitialStateID: 1, EventID: c.ID, TargetStateID: 2}
	// two senders is logically inconsistent: IndexOfSender comes back -1,
	// so IsFeasibleProtocol has nothing to check for this communication.
	u.MarkPotentialCommunication(chosenTD, graph.NewCommunicationData([]graph.Role{graph.RoleSender, graph.RoleSender}))

	p := &Protocol{Chosen: []graph.TransitionData{chosenTD}}
	ok, err := IsFeasibleProtocol(context.Background(), u, p)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsFeasibleProtocol_EmptyProtocolIsTriviallyFeasible(t *testing.T) {
	u, _ := buildCommPlant(t)
	ok, err := IsFeasibleProtocol(context.Background(), u, &Protocol{})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFindReachableStates_ExpandsBothDirectionsOnUnobservableEdges(t *testing.T) {
	u, err := graph.New(graph.KindUStructure, 1)
	require.NoError(t, err)
	a, err := u.AddEvent("<a,a>", []bool{true}, []bool{false}) // observable to the sender, no expansion
	require.NoError(t, err)
	b, err := u.AddEvent("<b,*>", []bool{true}, []bool{false}) // unobservable to the sender (epsilon at index 1)
	require.NoError(t, err)
	cEvt, err := u.AddEvent("<c,*>", []bool{true}, []bool{false})
	require.NoError(t, err)

	s0, _ := u.AddStateWithID(0, "0", false)
	s1, _ := u.AddStateWithID(1, "1", false)
	u.AddStateWithID(2, "2", false)
	u.AddStateWithID(3, "3", false)
	require.NoError(t, u.SetInitialState(s0.ID))

	require.NoError(t, u.AddTransition(0, cEvt.ID, 1)) // predecessor of seed, unobservable
	require.NoError(t, u.AddTransition(1, a.ID, 2))    // observable successor, should not expand
	require.NoError(t, u.AddTransition(1, b.ID, 3))    // unobservable successor, should expand

	inv := graph.Invert(u)
	reach, err := FindReachableStates(context.Background(), u, inv, s1.ID, 1)
	require.NoError(t, err)

	assert.True(t, reach.Contains(1))
	assert.True(t, reach.Contains(3))
	assert.True(t, reach.Contains(0))
	assert.False(t, reach.Contains(2))
}
