package ustructure

import (
	"context"
	"strings"

	"github.com/dragomit/desctl/errs"
	"github.com/dragomit/desctl/internal/graph"
	"github.com/dragomit/desctl/internal/ids"
	"github.com/dragomit/desctl/internal/logging"
)

// Compose builds the U-Structure of a (spec §4.3): an (n+1)-tuple
// product with epsilon-augmented event vectors and control-configuration
// classification. a must have an initial state.
func Compose(ctx context.Context, a *graph.Automaton) (*UStructure, error) {
	if !a.HasInitialState() {
		return nil, errs.Wrap(errs.NoInitialState, nil, "synchronized composition: automaton has no initial state")
	}
	n := a.NControllers()

	result, err := graph.New(graph.KindUStructure, n)
	if err != nil {
		return nil, err
	}
	for _, e := range a.Events() {
		if _, err := result.AddEvent(e.Label, e.Observable, e.Controllable); err != nil {
			return nil, err
		}
	}

	u := &UStructure{Automaton: result, Vectors: make(map[int64][]int64)}
	radix := maxStateID(a) + 1
	keyToID := make(map[string]int64)

	getOrCreate := func(vec []int64) (*graph.State, error) {
		key := vectorKey(vec)
		if id, ok := keyToID[key]; ok {
			st, _ := result.State(id)
			return st, nil
		}
		sysState, _ := a.State(vec[0])
		marked := sysState != nil && sysState.Marked

		cid, cerr := ids.Combine(radix, vec)
		var st *graph.State
		if cerr == nil {
			if v, ierr := cid.Int64(); ierr == nil && v > 0 {
				st, err = result.AddStateWithID(v, vectorLabel(vec), marked)
			}
		}
		if st == nil {
			st = result.AddState(vectorLabel(vec), marked)
		}
		keyToID[key] = st.ID
		u.Vectors[st.ID] = cloneVec(vec)
		return st, nil
	}

	initVec := make([]int64, n+1)
	for i := range initVec {
		initVec[i] = a.InitialState()
	}
	initState, err := getOrCreate(initVec)
	if err != nil {
		return nil, err
	}
	if err := result.SetInitialState(initState.ID); err != nil {
		return nil, err
	}

	var queue []int64
	queue = append(queue, initState.ID)
	visited := map[int64]bool{initState.ID: true}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		srcID := queue[0]
		queue = queue[1:]
		vec := u.Vectors[srcID]

		sysState, ok := a.State(vec[0])
		if !ok {
			logging.Get().Warnw("Bad state ID", "operation", "synchronizedComposition", "state_id", vec[0])
			continue
		}

		for _, t := range sysState.Transitions {
			e, _ := a.Event(t.EventID)
			if err := expandTransition(ctx, a, u, srcID, vec, e, t.TargetID, &queue, visited, getOrCreate); err != nil {
				return nil, err
			}
		}

		for i := 1; i <= n; i++ {
			ctrlState, ok := a.State(vec[i])
			if !ok {
				continue
			}
			for _, t := range ctrlState.Transitions {
				e, _ := a.Event(t.EventID)
				if e.IsObservableTo(i - 1) {
					continue
				}
				if err := emitMirrorTransition(a, u, srcID, vec, i, e, t.TargetID, &queue, visited, getOrCreate); err != nil {
					return nil, err
				}
			}
		}
	}

	dropDumpStates(a, u)
	remap := result.Renumber()
	newVectors := make(map[int64][]int64, len(u.Vectors))
	for oldID, vec := range u.Vectors {
		if newID, ok := remap[oldID]; ok {
			newVectors[newID] = vec
		}
	}
	u.Vectors = newVectors
	return u, nil
}

func maxStateID(a *graph.Automaton) int64 {
	var max int64
	for _, s := range a.States() {
		if s.ID > max {
			max = s.ID
		}
	}
	return max
}

// expandTransition handles one outgoing system transition (spec §4.3
// main loop body): it computes the joint event vector across all
// controllers (abandoning if some observing controller has no local
// transition on e), classifies the result, and records the U-transition.
func expandTransition(
	ctx context.Context,
	a *graph.Automaton,
	u *UStructure,
	srcID int64,
	vec []int64,
	e *graph.Event,
	targetSys int64,
	queue *[]int64,
	visited map[int64]bool,
	getOrCreate func([]int64) (*graph.State, error),
) error {
	n := a.NControllers()

	// options[i] (0-based controller index) holds the candidate next
	// states for controller i+1; nil/empty means "abandon".
	options := make([][]int64, n)
	for i := 0; i < n; i++ {
		if e.IsObservableTo(i) {
			ctrlState, ok := a.State(vec[i+1])
			if !ok {
				return nil
			}
			targets := ctrlState.TransitionOn(e.ID)
			if len(targets) == 0 {
				return nil // event not jointly possible, abandon this transition
			}
			options[i] = targets
		} else {
			options[i] = []int64{vec[i+1]}
		}
	}

	combos := cartesian(options)
	for _, combo := range combos {
		if err := ctx.Err(); err != nil {
			return err
		}
		newVec := make([]int64, n+1)
		newVec[0] = targetSys
		labels := make([]string, n+1)
		labels[0] = e.Label
		for i := 0; i < n; i++ {
			newVec[i+1] = combo[i]
			if e.IsObservableTo(i) {
				labels[i+1] = e.Label
			} else {
				labels[i+1] = ids.Epsilon
			}
		}

		evt, err := u.AddEvent(joinLabels(labels), e.Observable, e.Controllable)
		if err != nil {
			return err
		}

		dst, err := getOrCreate(newVec)
		if err != nil {
			return err
		}
		if err := u.AddTransition(srcID, evt.ID, dst.ID); err != nil {
			return err
		}
		if !visited[dst.ID] {
			visited[dst.ID] = true
			*queue = append(*queue, dst.ID)
		}

		classify(a, u, srcID, vec, e, evt, dst.ID, targetSys, combo)
	}
	return nil
}

// cartesian computes the cartesian product of options, in deterministic
// order (each options[i] is iterated in its own insertion order).
func cartesian(options [][]int64) [][]int64 {
	result := [][]int64{{}}
	for _, opt := range options {
		var next [][]int64
		for _, prefix := range result {
			for _, v := range opt {
				combo := append(append([]int64(nil), prefix...), v)
				next = append(next, combo)
			}
		}
		result = next
	}
	return result
}

func joinLabels(labels []string) string {
	s := "<"
	for i, l := range labels {
		if i > 0 {
			s += ","
		}
		s += l
	}
	return s + ">"
}

// classify applies spec §4.3's unconditional/conditional-violation and
// illegal-configuration rules for one (vec, e, combo) instantiation.
func classify(a *graph.Automaton, u *UStructure, srcID int64, vec []int64, e *graph.Event, evt *graph.Event, dstID int64, targetSys int64, combo []int64) {
	n := a.NControllers()
	sysTD := graph.TransitionData{InitialStateID: vec[0], EventID: e.ID, TargetStateID: targetSys}
	isBad := a.IsBad(sysTD)

	if dstSys, ok := a.State(targetSys); ok && dstSys.Label == graph.DumpStateLabel {
		return
	}

	observingBad := make([]bool, n)
	anyObserving := false
	for i := 0; i < n; i++ {
		if !e.IsObservableTo(i) {
			continue
		}
		anyObserving = true
		localTD := graph.TransitionData{InitialStateID: vec[i+1], EventID: e.ID, TargetStateID: combo[i]}
		observingBad[i] = a.IsBad(localTD)
	}
	if !anyObserving {
		return
	}

	noObservingDisagrees := func(wantBad bool) bool {
		for i := 0; i < n; i++ {
			if !e.IsObservableTo(i) {
				continue
			}
			if observingBad[i] != wantBad {
				return false
			}
		}
		return true
	}

	unconditional := isBad && e.ControllerCount() > 0
	if unconditional {
		for i := 0; i < n; i++ {
			if e.IsObservableTo(i) && observingBad[i] {
				unconditional = false
				break
			}
		}
	}

	conditional := !isBad && e.ControllerCount() >= 2
	if conditional {
		for i := 0; i < n; i++ {
			if e.IsObservableTo(i) && !observingBad[i] {
				conditional = false
				break
			}
		}
	}

	srcState, _ := u.State(srcID)
	utd := graph.TransitionData{InitialStateID: srcID, EventID: evt.ID, TargetStateID: dstID}

	if unconditional {
		u.MarkUnconditionalViolation(utd)
		srcState.DisablementEvents.Add(e.Label)
		disabler := make([]bool, n)
		copy(disabler, observingBad)
		u.MarkDisablementDecision(utd, graph.DisablementData{Disabler: disabler})
		if noObservingDisagrees(isBad) {
			srcState.IllegalConfigEvents.Add(e.Label)
		}
	} else if conditional {
		u.MarkConditionalViolation(utd)
		srcState.EnablementEvents.Add(e.Label)
		if noObservingDisagrees(isBad) {
			srcState.IllegalConfigEvents.Add(e.Label)
		}
	}
}

// emitMirrorTransition handles the per-controller unobservable-move
// loop of spec §4.3: a controller can privately advance its own
// estimate on an event it doesn't observe, without the system or any
// other controller moving.
func emitMirrorTransition(
	a *graph.Automaton,
	u *UStructure,
	srcID int64,
	vec []int64,
	ctrl int,
	e *graph.Event,
	target int64,
	queue *[]int64,
	visited map[int64]bool,
	getOrCreate func([]int64) (*graph.State, error),
) error {
	n := a.NControllers()
	labels := make([]string, n+1)
	for i := range labels {
		labels[i] = ids.Epsilon
	}
	labels[ctrl] = e.Label

	observable := make([]bool, n)
	controllable := make([]bool, n)
	controllable[ctrl-1] = e.IsControllableBy(ctrl - 1)

	evt, err := u.AddEvent(joinLabels(labels), observable, controllable)
	if err != nil {
		return err
	}

	newVec := cloneVec(vec)
	newVec[ctrl] = target
	dst, err := getOrCreate(newVec)
	if err != nil {
		return err
	}
	if err := u.AddTransition(srcID, evt.ID, dst.ID); err != nil {
		return err
	}
	if !visited[dst.ID] {
		visited[dst.ID] = true
		*queue = append(*queue, dst.ID)
	}
	return nil
}

// dropDumpStates removes every U-state whose vector routes through a
// dump-state component (spec §4.3 "After the queue empties, drop any
// U-state whose label contains the dump-state label").
func dropDumpStates(a *graph.Automaton, u *UStructure) {
	var toRemove []int64
	for id, vec := range u.Vectors {
		if vectorContainsDumpState(a, vec) {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		u.RemoveState(id)
		delete(u.Vectors, id)
	}
}

func vectorContainsDumpState(a *graph.Automaton, vec []int64) bool {
	for _, id := range vec {
		if s, ok := a.State(id); ok && strings.Contains(s.Label, graph.DumpStateLabel) {
			return true
		}
	}
	return false
}
