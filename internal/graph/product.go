package graph

import (
	"github.com/dragomit/desctl/errs"
	"github.com/dragomit/desctl/internal/ids"
	"github.com/dragomit/desctl/internal/logging"
)

// sharedAndPrivateEvents partitions first's and second's events by label
// into the set shared by both (validated pairwise-compatible, spec
// §4.2) and the sets private to each. A shared label with mismatched
// observable/controllable masks is an IncompatibleAutomata error.
func sharedAndPrivateEvents(first, second *Automaton) (shared, private1, private2 []*Event, err error) {
	for _, e1 := range first.Events() {
		if e2, ok := second.EventByLabel(e1.Label); ok {
			if !e1.compatibleWith(e2) {
				return nil, nil, nil, errs.New(errs.IncompatibleAutomata,
					"event %q has mismatched observable/controllable masks between automata", e1.Label)
			}
			shared = append(shared, e1)
		} else {
			private1 = append(private1, e1)
		}
	}
	for _, e2 := range second.Events() {
		if _, ok := first.EventByLabel(e2.Label); !ok {
			private2 = append(private2, e2)
		}
	}
	return shared, private1, private2, nil
}

type pairKey struct{ a, b int64 }

// productWorklist drives the shared BFS machinery used by both
// Intersection and Union: it owns the pair -> result-state-id map and
// the combined-id computation (spec §3), leaving synchronization
// semantics to the step callback.
type productWorklist struct {
	first, second *Automaton
	result        *Automaton
	radix         int64
	seen          map[pairKey]int64
	queue         []pairKey
}

func newProductWorklist(first, second, result *Automaton) *productWorklist {
	maxID := maxStateID(first)
	if m := maxStateID(second); m > maxID {
		maxID = m
	}
	return &productWorklist{
		first: first, second: second, result: result,
		radix: maxID + 1,
		seen:  make(map[pairKey]int64),
	}
}

func maxStateID(a *Automaton) int64 {
	var max int64
	for _, s := range a.States() {
		if s.ID > max {
			max = s.ID
		}
	}
	return max
}

// stateFor returns the result-automaton id for (s1, s2), creating the
// product state the first time it's seen and enqueuing it for expansion.
// The new state takes the pair's combined id (spec §3) when that fits in
// 64 bits and is free, and a fresh sequential id otherwise; Renumber
// compacts the ids afterwards.
func (w *productWorklist) stateFor(s1, s2 *State, labelSep string) int64 {
	key := pairKey{s1.ID, s2.ID}
	if id, ok := w.seen[key]; ok {
		return id
	}
	cid, err := ids.Combine(w.radix, []int64{s1.ID, s2.ID})
	var newID int64
	if err == nil {
		if v, err2 := cid.Int64(); err2 == nil && v > 0 {
			newID = v
		}
	}
	label := s1.Label + labelSep + s2.Label
	var st *State
	if newID > 0 {
		st, err = w.result.AddStateWithID(newID, label, s1.Marked && s2.Marked)
	}
	if newID <= 0 || err != nil {
		st = w.result.AddState(label, s1.Marked && s2.Marked)
		newID = st.ID
	}
	w.seen[key] = newID
	w.queue = append(w.queue, key)
	return newID
}

func (w *productWorklist) stateByID(a *Automaton, id int64) (*State, bool) {
	if id == 0 {
		logging.Get().Warnw("Bad state ID", "operation", "product", "automaton", a.Kind().String())
		return nil, false
	}
	return a.State(id)
}

// Intersection computes the synchronized product of first and second
// over their shared alphabet only (spec §4.2). Requires equal
// controller counts and pairwise-compatible shared events.
func Intersection(first, second *Automaton) (*Automaton, error) {
	if first.NControllers() != second.NControllers() {
		return nil, errs.New(errs.IncompatibleAutomata, "intersection: controller counts differ (%d vs %d)", first.NControllers(), second.NControllers())
	}
	shared, _, _, err := sharedAndPrivateEvents(first, second)
	if err != nil {
		return nil, err
	}
	if !first.HasInitialState() || !second.HasInitialState() {
		return nil, errs.Wrap(errs.NoInitialState, nil, "intersection: both automata need an initial state")
	}

	result, _ := New(KindAutomaton, first.NControllers())
	for _, e := range shared {
		if _, err := result.AddEvent(e.Label, e.Observable, e.Controllable); err != nil {
			return nil, err
		}
	}

	w := newProductWorklist(first, second, result)
	s1init, _ := first.State(first.InitialState())
	s2init, _ := second.State(second.InitialState())
	initID := w.stateFor(s1init, s2init, "_")
	if err := result.SetInitialState(initID); err != nil {
		return nil, err
	}

	for len(w.queue) > 0 {
		key := w.queue[0]
		w.queue = w.queue[1:]
		s1, ok1 := w.stateByID(first, key.a)
		s2, ok2 := w.stateByID(second, key.b)
		if !ok1 || !ok2 {
			continue
		}
		srcID := w.seen[key]

		for _, e := range shared {
			for _, t1 := range s1.TransitionOn(e.ID) {
				for _, t2 := range s2.TransitionOn(e.ID) {
					target1, _ := first.State(t1)
					target2, _ := second.State(t2)
					dstID := w.stateFor(target1, target2, "_")
					if err := result.AddTransition(srcID, e.ID, dstID); err != nil {
						return nil, err
					}
					td1 := TransitionData{InitialStateID: s1.ID, EventID: e.ID, TargetStateID: t1}
					td2 := TransitionData{InitialStateID: s2.ID, EventID: e.ID, TargetStateID: t2}
					if first.IsBad(td1) && second.IsBad(td2) {
						result.MarkBad(TransitionData{InitialStateID: srcID, EventID: e.ID, TargetStateID: dstID})
					}
				}
			}
		}
	}
	result.Renumber()
	return result, nil
}

// Union computes the parallel composition of first and second: shared
// events synchronize exactly as in Intersection, private events
// interleave independently (spec §4.2). A synchronized transition is
// bad if either projection is bad; a private transition is bad if the
// contributing automaton's transition is bad.
func Union(first, second *Automaton) (*Automaton, error) {
	if first.NControllers() != second.NControllers() {
		return nil, errs.New(errs.IncompatibleAutomata, "union: controller counts differ (%d vs %d)", first.NControllers(), second.NControllers())
	}
	shared, private1, private2, err := sharedAndPrivateEvents(first, second)
	if err != nil {
		return nil, err
	}
	if !first.HasInitialState() || !second.HasInitialState() {
		return nil, errs.Wrap(errs.NoInitialState, nil, "union: both automata need an initial state")
	}

	result, _ := New(KindAutomaton, first.NControllers())
	for _, e := range shared {
		if _, err := result.AddEvent(e.Label, e.Observable, e.Controllable); err != nil {
			return nil, err
		}
	}
	for _, e := range private1 {
		if _, err := result.AddEvent(e.Label, e.Observable, e.Controllable); err != nil {
			return nil, err
		}
	}
	for _, e := range private2 {
		if _, err := result.AddEvent(e.Label, e.Observable, e.Controllable); err != nil {
			return nil, err
		}
	}

	w := newProductWorklist(first, second, result)
	s1init, _ := first.State(first.InitialState())
	s2init, _ := second.State(second.InitialState())
	initID := w.stateFor(s1init, s2init, "_")
	if err := result.SetInitialState(initID); err != nil {
		return nil, err
	}

	for len(w.queue) > 0 {
		key := w.queue[0]
		w.queue = w.queue[1:]
		s1, ok1 := w.stateByID(first, key.a)
		s2, ok2 := w.stateByID(second, key.b)
		if !ok1 || !ok2 {
			continue
		}
		srcID := w.seen[key]

		for _, e := range shared {
			for _, t1 := range s1.TransitionOn(e.ID) {
				for _, t2 := range s2.TransitionOn(e.ID) {
					target1, _ := first.State(t1)
					target2, _ := second.State(t2)
					dstID := w.stateFor(target1, target2, "_")
					if err := result.AddTransition(srcID, e.ID, dstID); err != nil {
						return nil, err
					}
					td1 := TransitionData{InitialStateID: s1.ID, EventID: e.ID, TargetStateID: t1}
					td2 := TransitionData{InitialStateID: s2.ID, EventID: e.ID, TargetStateID: t2}
					if first.IsBad(td1) || second.IsBad(td2) {
						result.MarkBad(TransitionData{InitialStateID: srcID, EventID: e.ID, TargetStateID: dstID})
					}
				}
			}
		}
		for _, e := range private1 {
			for _, t1 := range s1.TransitionOn(e.ID) {
				target1, _ := first.State(t1)
				dstID := w.stateFor(target1, s2, "_")
				if err := result.AddTransition(srcID, e.ID, dstID); err != nil {
					return nil, err
				}
				td1 := TransitionData{InitialStateID: s1.ID, EventID: e.ID, TargetStateID: t1}
				if first.IsBad(td1) {
					result.MarkBad(TransitionData{InitialStateID: srcID, EventID: e.ID, TargetStateID: dstID})
				}
			}
		}
		for _, e := range private2 {
			for _, t2 := range s2.TransitionOn(e.ID) {
				target2, _ := second.State(t2)
				dstID := w.stateFor(s1, target2, "_")
				if err := result.AddTransition(srcID, e.ID, dstID); err != nil {
					return nil, err
				}
				td2 := TransitionData{InitialStateID: s2.ID, EventID: e.ID, TargetStateID: t2}
				if second.IsBad(td2) {
					result.MarkBad(TransitionData{InitialStateID: srcID, EventID: e.ID, TargetStateID: dstID})
				}
			}
		}
	}
	result.Renumber()
	return result, nil
}
