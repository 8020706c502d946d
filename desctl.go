// Package desctl is a decentralized-supervisory-control analysis
// engine: the automaton graph model, its structural algorithms,
// synchronized composition into a U-Structure, per-controller subset
// construction and relabeling, the inference-observability decider,
// and communication-protocol analysis. Persistence and DOT rendering
// are external collaborators, implemented in the sibling persist and
// dot packages.
package desctl

import (
	"context"

	"go.uber.org/zap"

	"github.com/dragomit/desctl/errs"
	"github.com/dragomit/desctl/internal/graph"
	"github.com/dragomit/desctl/internal/ids"
	"github.com/dragomit/desctl/internal/logging"
	"github.com/dragomit/desctl/internal/observability"
	"github.com/dragomit/desctl/internal/protocol"
	"github.com/dragomit/desctl/internal/subset"
	"github.com/dragomit/desctl/internal/ustructure"
)

// Re-exported error kinds and sentinels (spec §7), so callers never
// need to import the internal errs package directly.
type (
	Kind  = errs.Kind
	Error = errs.Error
)

const (
	InvalidArgument           = errs.InvalidArgument
	NoInitialState            = errs.NoInitialState
	IncompatibleAutomata      = errs.IncompatibleAutomata
	OperationFailed           = errs.OperationFailed
	SystemNotObservable       = errs.SystemNotObservable
	Arithmetic                = errs.Arithmetic
	IllegalAutomatonPersisted = errs.IllegalAutomatonPersisted
)

// Kind values for Automaton.Kind (spec §3).
const (
	KindAutomaton        = graph.KindAutomaton
	KindUStructure       = graph.KindUStructure
	KindPrunedUStructure = graph.KindPrunedUStructure
)

// MaxControllers is the hard cap on the number of controllers (spec §6).
const MaxControllers = graph.MaxControllers

// DumpStateLabel is the reserved label Complement gives its fresh dump
// state.
const DumpStateLabel = graph.DumpStateLabel

// Re-exported graph types, so callers build and inspect automata
// without reaching into internal/graph directly.
type (
	Automaton             = graph.Automaton
	Event                 = graph.Event
	State                 = graph.State
	Transition            = graph.Transition
	TransitionData        = graph.TransitionData
	Role                  = graph.Role
	CommunicationData     = graph.CommunicationData
	NashCommunicationData = graph.NashCommunicationData
	DisablementData       = graph.DisablementData
	StateSet              = graph.StateSet
)

const (
	RoleNone     = graph.RoleNone
	RoleSender   = graph.RoleSender
	RoleReceiver = graph.RoleReceiver
)

// New creates an empty automaton of the given kind with a fixed
// controller count.
func New(kind graph.Kind, nControllers int) (*Automaton, error) {
	return graph.New(kind, nControllers)
}

// SetLogger installs logger as the package-level structured logger used
// to report structural warnings (spec §7). Passing nil restores the
// no-op logger.
func SetLogger(logger *zap.Logger) {
	logging.Set(logger)
}

// Structural algorithms (spec §4.2), re-exported unchanged.
var (
	Accessible   = graph.Accessible
	Coaccessible = graph.Coaccessible
	Invert       = graph.Invert
	Complement   = graph.Complement
	Trim         = graph.Trim
	Intersection = graph.Intersection
	Union        = graph.Union
	TwinPlant    = graph.TwinPlant
)

// UStructure wraps the automaton synchronized composition produces
// together with its per-state state vectors (spec §3, §4.3).
type UStructure = ustructure.UStructure

// Compose builds the U-Structure of a via synchronized composition
// (spec §4.3).
func Compose(ctx context.Context, a *Automaton) (*UStructure, error) {
	return ustructure.Compose(ctx, a)
}

// Determinization is one controller's indistinguishability-set DFA
// over a U-Structure (spec §4.4).
type Determinization = subset.Determinization

// Relabeled is the result of configuration relabeling (spec §4.4).
type Relabeled = subset.Relabeled

// ConstructSubset runs per-controller subset construction for
// controller k (0 = system) over U-Structure u, starting from initID.
func ConstructSubset(u *Automaton, k int, initID int64) *Determinization {
	return subset.Construct(u, k, initID)
}

// ConstructAllSubsets runs ConstructSubset for every controller 0..n in
// parallel (spec §4.4).
func ConstructAllSubsets(ctx context.Context, u *Automaton, initID int64) ([]*Determinization, error) {
	return subset.ConstructAll(ctx, u, initID)
}

// Relabel applies configuration relabeling of U-Structure u against its
// own-controller (k=0) determinization d (spec §4.4).
func Relabel(u *Automaton, d *Determinization) (*Relabeled, error) {
	return subset.Relabel(u, d)
}

// AmbiguityRecord and EventResult/SystemResult carry the outcome of
// inference-observability analysis (spec §4.5).
type (
	AmbiguityRecord = observability.AmbiguityRecord
	EventResult     = observability.EventResult
	SystemResult    = observability.SystemResult
)

// ComputeEventAmbiguity runs the bipartite-peel fixpoint for one
// controllable event (spec §4.5).
func ComputeEventAmbiguity(ctx context.Context, u *Automaton, dets []*Determinization, eventID int32) (EventResult, error) {
	return observability.ComputeEvent(ctx, u, dets, eventID)
}

// TestObservability evaluates inference observability for every
// controllable event of u, returning SystemNotObservable if any fails.
func TestObservability(ctx context.Context, u *Automaton, dets []*Determinization) (SystemResult, error) {
	return observability.ComputeSystem(ctx, u, dets)
}

// Protocol is a chosen set of communications (spec §4.6).
type Protocol = protocol.Protocol

// ApplyProtocol prunes U-Structure u per the chosen communications in p
// (spec §4.6).
func ApplyProtocol(ctx context.Context, u *Automaton, p *Protocol, discardUnused bool) (*Automaton, error) {
	return protocol.ApplyProtocol(ctx, u, p, discardUnused)
}

// IsFeasibleProtocol decides whether p is a feasible protocol over u
// (spec §4.6).
func IsFeasibleProtocol(ctx context.Context, u *Automaton, p *Protocol) (bool, error) {
	return protocol.IsFeasibleProtocol(ctx, u, p)
}

// FindReachableStates computes the states unobservable-reachable from
// seed to controller senderIdx (1-based) in both uFwd and its inverse
// uInv (spec §4.6).
func FindReachableStates(ctx context.Context, uFwd, uInv *Automaton, seed int64, senderIdx int) (*StateSet, error) {
	return protocol.FindReachableStates(ctx, uFwd, uInv, seed, senderIdx)
}

// Sequence and Word are the path/counter-example primitives of spec
// §4.1: a Sequence pairs a state trail with the events taken along it,
// and Word renders that trail's events as a label string.
type (
	Sequence = ids.Sequence
	Word     = ids.Word
)

// Witness finds a shortest trail from from to to over a's transitions,
// for rendering a concrete counter-example behind any reported
// violation or communication.
func Witness(a *Automaton, from, to int64) (Sequence, bool) {
	return graph.Witness(a, from, to)
}

// StateBuilder provides a fluent API for adding a state to an
// Automaton, mirroring the teacher's StateBuilder (reference/state.go
// before adaptation).
type StateBuilder struct {
	a      *Automaton
	label  string
	marked bool
}

// NewState starts a fluent builder for adding a state labeled label to a.
func NewState(a *Automaton, label string) *StateBuilder {
	return &StateBuilder{a: a, label: label}
}

// Marked marks the state being built.
func (b *StateBuilder) Marked() *StateBuilder {
	b.marked = true
	return b
}

// Build commits the state to its automaton and returns it.
func (b *StateBuilder) Build() *State {
	return b.a.AddState(b.label, b.marked)
}

// EventBuilder provides a fluent API for adding an event with explicit
// per-controller observability/controllability.
type EventBuilder struct {
	a            *Automaton
	label        string
	observable   []bool
	controllable []bool
}

// NewEvent starts a fluent builder for adding an event labeled label to
// a, defaulting every controller to observable and uncontrollable.
func NewEvent(a *Automaton, label string) *EventBuilder {
	n := a.NControllers()
	return &EventBuilder{
		a:            a,
		label:        label,
		observable:   trueSlice(n),
		controllable: make([]bool, n),
	}
}

// ObservableBy sets whether controller i (0-based) observes the event.
func (b *EventBuilder) ObservableBy(i int, observable bool) *EventBuilder {
	b.observable[i] = observable
	return b
}

// ControllableBy sets whether controller i (0-based) controls the event.
func (b *EventBuilder) ControllableBy(i int, controllable bool) *EventBuilder {
	b.controllable[i] = controllable
	return b
}

// Build commits the event to its automaton and returns it.
func (b *EventBuilder) Build() (*Event, error) {
	return b.a.AddEvent(b.label, b.observable, b.controllable)
}

func trueSlice(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}

// TransitionBuilder provides a fluent API for adding a transition.
type TransitionBuilder struct {
	a      *Automaton
	fromID int64
	event  int32
}

// NewTransition starts a fluent builder for a transition out of fromID
// on event, mirroring the teacher's TransitionBuilder idiom.
func NewTransition(a *Automaton, fromID int64, event int32) *TransitionBuilder {
	return &TransitionBuilder{a: a, fromID: fromID, event: event}
}

// To commits the transition to targetID.
func (b *TransitionBuilder) To(targetID int64) error {
	return b.a.AddTransition(b.fromID, b.event, targetID)
}
