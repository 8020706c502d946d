package dot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dragomit/desctl/internal/graph"
)

func buildRenderable(t *testing.T) (*graph.Automaton, graph.TransitionData) {
	t.Helper()
	a, err := graph.New(graph.KindAutomaton, 1)
	require.NoError(t, err)
	e, err := a.AddEvent("a", []bool{true}, []bool{true})
	require.NoError(t, err)
	s1, _ := a.AddStateWithID(1, "1", false)
	a.AddStateWithID(2, "2", true)
	require.NoError(t, a.SetInitialState(s1.ID))
	require.NoError(t, a.AddTransition(1, e.ID, 2))

	td := graph.TransitionData{InitialStateID: 1, EventID: e.ID, TargetStateID: 2}
	return a, td
}

func TestRender_MarksBadTransitionsDashed(t *testing.T) {
	a, td := buildRenderable(t)
	a.MarkBad(td)

	out := Render(a)
	assert.Contains(t, out, "digraph G {")
	assert.Contains(t, out, "shape=doublecircle")
	assert.Contains(t, out, "start -> 1;")
	assert.Contains(t, out, "style=dashed")
}

func TestRender_UnconditionalViolationColoredRed(t *testing.T) {
	a, td := buildRenderable(t)
	a.MarkUnconditionalViolation(td)

	out := Render(a)
	assert.Contains(t, out, "color=red")
}

func TestBuilder_NameAndCustomEdgeAttr(t *testing.T) {
	a, td := buildRenderable(t)
	out := NewBuilder(a).
		Name("MyGraph").
		EdgeAttr(func(graph.TransitionData) string { return "color=blue" }).
		Build()

	assert.Contains(t, out, "digraph MyGraph {")
	assert.Contains(t, out, "color=blue")
	_ = td
}

func TestVectorLabel_SplitsVectorComponentsAcrossLines(t *testing.T) {
	a, err := graph.New(graph.KindUStructure, 2)
	require.NoError(t, err)
	e, err := a.AddEvent("<a,b,*>", []bool{true, true}, []bool{false, false})
	require.NoError(t, err)
	s1, _ := a.AddStateWithID(1, "(1,1,1)", false)
	a.AddStateWithID(2, "(2,2,2)", false)
	require.NoError(t, a.SetInitialState(s1.ID))
	require.NoError(t, a.AddTransition(1, e.ID, 2))

	out := Render(a)
	assert.Contains(t, out, "a\\nb\\n*")
}
