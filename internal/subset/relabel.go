package subset

import (
	"fmt"

	"github.com/dragomit/desctl/internal/graph"
)

// Relabeled is the result of configuration relabeling. CloneOf maps an
// original U-state id to its clone ids, indexed by occurrence;
// occurrence 0 always keeps the original id. CloneSubset maps a clone id
// back to the index (into the source Determinization's Sets) of the
// subset it was created from - two clones share a common
// indistinguishability set of D_i iff CloneSubset agrees (spec §4.5).
type Relabeled struct {
	Automaton   *graph.Automaton
	CloneOf     map[int64][]int64
	CloneSubset map[int64]int
}

// Relabel walks d's subsets in discovery order, giving every state
// occurrence past the first a cloned id origId + |U|*occurrence and a
// suffixed label, then re-projects u's violations onto every clone pair
// that survives (spec §4.4).
func Relabel(u *graph.Automaton, d *Determinization) (*Relabeled, error) {
	sizeU := int64(u.NumStates())
	result := graph.NewLike(u)
	for _, e := range u.Events() {
		if _, err := result.AddEvent(e.Label, e.Observable, e.Controllable); err != nil {
			return nil, err
		}
	}

	occurrence := make(map[int64]int)
	cloneOf := make(map[int64][]int64)
	cloneSubset := make(map[int64]int)
	subsetClones := make([]map[int64]int64, len(d.Sets))

	for si, subset := range d.Sets {
		clones := make(map[int64]int64, subset.Len())
		for _, s := range subset.States() {
			idx := occurrence[s.ID]
			occurrence[s.ID] = idx + 1

			cloneID := s.ID
			label := s.Label
			if idx > 0 {
				cloneID = s.ID + int64(idx)*sizeU
				label = fmt.Sprintf("%s#%d", s.Label, idx)
			}
			if _, err := result.AddStateWithID(cloneID, label, s.Marked); err != nil {
				return nil, err
			}
			clones[s.ID] = cloneID
			cloneOf[s.ID] = append(cloneOf[s.ID], cloneID)
			cloneSubset[cloneID] = si
		}
		subsetClones[si] = clones
	}

	if initID, ok := subsetClones[0][u.InitialState()]; ok {
		if err := result.SetInitialState(initID); err != nil {
			return nil, err
		}
	}

	for si, subset := range d.Sets {
		clones := subsetClones[si]
		edges := d.transitions[si]
		for _, s := range subset.States() {
			srcClone := clones[s.ID]
			for _, t := range s.Transitions {
				e, ok := u.Event(t.EventID)
				if !ok {
					continue
				}
				if subset.Contains(t.TargetID) {
					if err := result.AddTransition(srcClone, e.ID, clones[t.TargetID]); err != nil {
						return nil, err
					}
					continue
				}
				targetSubset, ok := edges[e.Label]
				if !ok {
					continue
				}
				targetClone, ok := subsetClones[targetSubset][t.TargetID]
				if !ok {
					continue
				}
				if err := result.AddTransition(srcClone, e.ID, targetClone); err != nil {
					return nil, err
				}
			}
		}
	}

	reprojectViolations(u, result, cloneOf)
	reprojectConfigSets(u, result, cloneOf)
	return &Relabeled{Automaton: result, CloneOf: cloneOf, CloneSubset: cloneSubset}, nil
}

// reprojectConfigSets copies every original state's enablement/
// disablement/illegal-configuration labels (spec §4.3 classify) onto
// all of its clones - unlike violations these are per-state, not
// per-edge, so every occurrence of a state carries the same tags.
func reprojectConfigSets(u, result *graph.Automaton, cloneOf map[int64][]int64) {
	for _, s := range u.States() {
		for _, cloneID := range cloneOf[s.ID] {
			clone, ok := result.State(cloneID)
			if !ok {
				continue
			}
			for _, label := range s.EnablementEvents.Labels() {
				clone.EnablementEvents.Add(label)
			}
			for _, label := range s.DisablementEvents.Labels() {
				clone.DisablementEvents.Add(label)
			}
			for _, label := range s.IllegalConfigEvents.Labels() {
				clone.IllegalConfigEvents.Add(label)
			}
		}
	}
}

// reprojectViolations re-marks every unconditional/conditional violation
// of src onto every clone pair of the relabeled automaton (spec §4.4
// "re-project ... onto every clone-pair that exists in the relabeled
// structure").
func reprojectViolations(src, dst *graph.Automaton, cloneOf map[int64][]int64) {
	project := func(td graph.TransitionData, mark func(graph.TransitionData)) {
		srcClones := cloneOf[td.InitialStateID]
		dstClones := cloneOf[td.TargetStateID]
		for _, sc := range srcClones {
			for _, dc := range dstClones {
				ntd := graph.TransitionData{InitialStateID: sc, EventID: td.EventID, TargetStateID: dc}
				mark(ntd)
			}
		}
	}
	for td := range src.UnconditionalViolations() {
		project(td, dst.MarkUnconditionalViolation)
	}
	for td := range src.ConditionalViolations() {
		project(td, dst.MarkConditionalViolation)
	}
}
