// Package protocol implements the pruned-U-structure-only violation and
// communication analysis of spec §4.6: applying a chosen communication
// protocol, deciding its feasibility, and the shared unobservable-to-
// sender reachability helper both use.
package protocol

import (
	"context"

	"github.com/dragomit/desctl/internal/graph"
	"github.com/dragomit/desctl/internal/ids"
)

// Protocol is the set of communications chosen from u's
// potentialCommunications table (spec §4.6 applyProtocol's P parameter).
type Protocol struct {
	Chosen []graph.TransitionData
}

// pathMask tracks, per vector slot, whether a value has been established
// along the current DFS path and what it is - the "found" bitmask of
// spec §4.6, scoped per traversal path rather than globally so that
// independent branches can each lock onto their own first-seen values.
type pathMask struct {
	found []bool
	value []string
}

func (m pathMask) fork() pathMask {
	return pathMask{found: append([]bool(nil), m.found...), value: append([]string(nil), m.value...)}
}

// ApplyProtocol clones u as a pruned U-structure and, for every chosen
// communication, recursively prunes transitions reachable from its
// target state that conflict with the communication's LUB vector (spec
// §4.6). The chosen communication transitions themselves are never
// pruned. If discardUnused is true, potentialCommunications not chosen
// by p are dropped from the result.
func ApplyProtocol(ctx context.Context, u *graph.Automaton, p *Protocol, discardUnused bool) (*graph.Automaton, error) {
	result := u.CloneAs(graph.KindPrunedUStructure)
	n := u.NControllers()

	chosenSet := make(map[graph.TransitionData]bool, len(p.Chosen))
	for _, td := range p.Chosen {
		chosenSet[td] = true
	}

	for _, td := range p.Chosen {
		e, ok := u.Event(td.EventID)
		if !ok {
			continue
		}
		lub := e.Vector
		if lub.Size() != n+1 {
			continue // not a vector event, nothing to constrain
		}
		init := pathMask{found: make([]bool, n+1), value: make([]string, n+1)}
		for i := 0; i <= n; i++ {
			if lub.LabelAt(i) != ids.Epsilon {
				init.found[i] = true
				init.value[i] = lub.LabelAt(i)
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prune(result, td.TargetStateID, init, chosenSet, make(map[int64]bool))
	}

	if discardUnused {
		for td := range u.PotentialCommunications() {
			if !chosenSet[td] {
				result.RemovePotentialCommunication(td)
			}
		}
	}
	return result, nil
}

// prune walks forward from state, removing any outgoing transition
// whose event vector conflicts with the path's established slot values,
// and recursing through the ones that pass. visited prevents
// re-expanding a state already explored by this communication's walk
// (cycles are accepted but not re-expanded, as in subset relabeling).
func prune(a *graph.Automaton, state int64, mask pathMask, protected map[graph.TransitionData]bool, visited map[int64]bool) {
	if visited[state] {
		return
	}
	visited[state] = true

	s, ok := a.State(state)
	if !ok {
		return
	}
	for _, t := range append([]graph.Transition(nil), s.Transitions...) {
		td := graph.TransitionData{InitialStateID: state, EventID: t.EventID, TargetStateID: t.TargetID}
		if protected[td] {
			prune(a, t.TargetID, mask, protected, visited)
			continue
		}
		e, ok := a.Event(t.EventID)
		if !ok || e.Vector.Size() != len(mask.found) {
			continue
		}
		next := mask.fork()
		ok2 := true
		for i := range next.found {
			label := e.Vector.LabelAt(i)
			if label == ids.Epsilon {
				continue
			}
			if next.found[i] && next.value[i] != label {
				ok2 = false
				break
			}
			next.found[i] = true
			next.value[i] = label
		}
		if !ok2 {
			a.RemoveTransition(td)
			continue
		}
		prune(a, t.TargetID, next, protected, visited)
	}
}

// IsFeasibleProtocol applies p and checks spec §4.6's two feasibility
// conditions: no chosen communication was itself lost, and no state
// indistinguishable (to the sender) from a communication's source has
// an outgoing transition whose event vector could pass for it.
func IsFeasibleProtocol(ctx context.Context, u *graph.Automaton, p *Protocol) (bool, error) {
	pruned, err := ApplyProtocol(ctx, u, p, false)
	if err != nil {
		return false, err
	}
	inv := graph.Invert(pruned)

	for _, td := range p.Chosen {
		if !pruned.HasTransition(td) {
			return false, nil
		}

		cd, ok := u.PotentialCommunications()[td]
		if !ok {
			cd, ok = u.InvalidCommunications()[td]
		}
		if !ok || cd.IndexOfSender < 0 {
			continue
		}
		e, ok := u.Event(td.EventID)
		if !ok {
			continue
		}

		reach, err := FindReachableStates(ctx, pruned, inv, td.InitialStateID, cd.IndexOfSender+1)
		if err != nil {
			return false, err
		}
		for _, rs := range reach.States() {
			for _, t := range rs.Transitions {
				te, ok := pruned.Event(t.EventID)
				if !ok {
					continue
				}
				if ids.IsStrictSubVector(te.Vector, e.Vector) {
					return false, nil
				}
			}
		}
	}
	return true, nil
}

// FindReachableStates computes the unobservable-to-sender reach from
// seed in both the forward (uFwd) and inverse (uInv) U-structure (spec
// §4.6), where senderIdx is 1-based.
func FindReachableStates(ctx context.Context, uFwd, uInv *graph.Automaton, seed int64, senderIdx int) (*graph.StateSet, error) {
	result := graph.NewStateSet()
	for _, dir := range []*graph.Automaton{uFwd, uInv} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		visited := map[int64]bool{seed: true}
		stack := []int64{seed}
		if s, ok := dir.State(seed); ok {
			result.Add(s)
		}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			s, ok := dir.State(id)
			if !ok {
				continue
			}
			for _, t := range s.Transitions {
				e, ok := dir.Event(t.EventID)
				if !ok || !e.Vector.IsUnobservableToController(senderIdx) {
					continue
				}
				if !visited[t.TargetID] {
					visited[t.TargetID] = true
					if ts, ok := dir.State(t.TargetID); ok {
						result.Add(ts)
					}
					stack = append(stack, t.TargetID)
				}
			}
		}
	}
	return result, nil
}

