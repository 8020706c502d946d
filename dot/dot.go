// Package dot renders an automaton as a GraphViz DOT graph - the
// rendering contract external tooling consumes (spec §6). It never
// mutates the automaton it renders.
package dot

import (
	"fmt"
	"strings"

	"github.com/dragomit/desctl/internal/graph"
	"github.com/dragomit/desctl/internal/ids"
)

// Builder allows minor customization of edge styling before building
// the DOT source. Create one with NewBuilder.
type Builder struct {
	a        *graph.Automaton
	name     string
	edgeAttr func(graph.TransitionData) string
}

// NewBuilder creates a builder for a, using the default edge styling
// (bad transitions rendered dashed).
func NewBuilder(a *graph.Automaton) *Builder {
	b := &Builder{a: a, name: "G"}
	b.edgeAttr = b.defaultEdgeAttr
	return b
}

// Name sets the DOT graph's name. Default is "G".
func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

// EdgeAttr overrides the per-edge attribute string emitted for a tagged
// transition. The default marks bad transitions dashed.
func (b *Builder) EdgeAttr(fn func(graph.TransitionData) string) *Builder {
	b.edgeAttr = fn
	return b
}

func (b *Builder) defaultEdgeAttr(td graph.TransitionData) string {
	switch {
	case b.a.IsUnconditionalViolation(td):
		return `style=dashed,color=red`
	case b.a.IsConditionalViolation(td):
		return `style=dashed,color=orange`
	case b.a.IsBad(td):
		return `style=dashed`
	default:
		return ""
	}
}

// Build renders the DOT source for b's automaton in a single pass
// (states are emitted in their current iteration order, then edges).
func (b *Builder) Build() string {
	a := b.a
	var bld strings.Builder

	fmt.Fprintf(&bld, "digraph %s {\n", b.name)
	bld.WriteString("  rankdir=LR;\n")

	for _, s := range a.States() {
		shape := "circle"
		if s.Marked {
			shape = "doublecircle"
		}
		fmt.Fprintf(&bld, "  %d [label=%q, shape=%s];\n", s.ID, vectorLabel(s.Label), shape)
	}

	if a.HasInitialState() {
		fmt.Fprintf(&bld, "  start [shape=point];\n  start -> %d;\n", a.InitialState())
	}

	for _, s := range a.States() {
		for _, t := range s.Transitions {
			e, ok := a.Event(t.EventID)
			label := fmt.Sprintf("event#%d", t.EventID)
			if ok {
				label = e.Label
			}
			td := graph.TransitionData{InitialStateID: s.ID, EventID: t.EventID, TargetStateID: t.TargetID}
			attr := b.edgeAttr(td)
			if attr != "" {
				fmt.Fprintf(&bld, "  %d -> %d [label=%q, %s];\n", s.ID, t.TargetID, vectorLabel(label), attr)
			} else {
				fmt.Fprintf(&bld, "  %d -> %d [label=%q];\n", s.ID, t.TargetID, vectorLabel(label))
			}
		}
	}

	bld.WriteString("}\n")
	return bld.String()
}

// vectorLabel renders a plain label unchanged, and a "<a,b,c>" label
// vector with a newline between components (spec §6 Rendering contract).
func vectorLabel(label string) string {
	v := ids.ParseLabelVector(label)
	if v.Size() <= 0 {
		return label
	}
	parts := make([]string, v.Size())
	for i := 0; i < v.Size(); i++ {
		parts[i] = v.LabelAt(i)
	}
	return strings.Join(parts, "\n")
}

// Render is shorthand for NewBuilder(a).Build().
func Render(a *graph.Automaton) string {
	return NewBuilder(a).Build()
}
