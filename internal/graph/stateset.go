package graph

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dragomit/desctl/internal/ids"
)

// StateSet is an unordered set of states from one automaton, ordered
// internally by state id for a canonical label/id (spec §3). It is the
// key type used by subset construction (spec §4.4): the same set of
// member ids always produces the same canonical label regardless of
// insertion order.
type StateSet struct {
	members map[int64]*State
	order   []int64 // sorted ascending, kept in sync with members
}

// NewStateSet builds a StateSet from the given states.
func NewStateSet(states ...*State) *StateSet {
	ss := &StateSet{members: make(map[int64]*State, len(states))}
	for _, s := range states {
		ss.Add(s)
	}
	return ss
}

// Add inserts s into the set if not already present.
func (ss *StateSet) Add(s *State) {
	if _, ok := ss.members[s.ID]; ok {
		return
	}
	ss.members[s.ID] = s
	i := sort.Search(len(ss.order), func(i int) bool { return ss.order[i] >= s.ID })
	ss.order = append(ss.order, 0)
	copy(ss.order[i+1:], ss.order[i:])
	ss.order[i] = s.ID
}

// Contains reports whether stateID is a member.
func (ss *StateSet) Contains(stateID int64) bool {
	_, ok := ss.members[stateID]
	return ok
}

// Len returns the number of members.
func (ss *StateSet) Len() int { return len(ss.order) }

// States returns the members in canonical (sorted by id) order.
func (ss *StateSet) States() []*State {
	out := make([]*State, len(ss.order))
	for i, id := range ss.order {
		out[i] = ss.members[id]
	}
	return out
}

// IDs returns the member ids in canonical order.
func (ss *StateSet) IDs() []int64 {
	out := make([]int64, len(ss.order))
	copy(out, ss.order)
	return out
}

// Union returns a new StateSet containing the members of ss and other.
func (ss *StateSet) Union(other *StateSet) *StateSet {
	out := NewStateSet(ss.States()...)
	for _, s := range other.States() {
		out.Add(s)
	}
	return out
}

// Equals reports whether ss and other contain exactly the same ids -
// the "twin closure" double-containment check of spec §4.4.
func (ss *StateSet) Equals(other *StateSet) bool {
	if ss.Len() != other.Len() {
		return false
	}
	for _, id := range ss.order {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

// CanonicalLabel returns a label uniquely determined by the set's
// member ids, suitable as a map key or combined-id input for subset
// construction (spec §4.4).
func (ss *StateSet) CanonicalLabel() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, id := range ss.order {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	b.WriteByte('}')
	return b.String()
}

// CombinedID computes a CombinedID for this set using maxID+1 as the
// mixed-radix base, matching the encoding spec §3 defines for
// StateVector (members sorted ascending so the id is deterministic).
func (ss *StateSet) CombinedID(maxID int64) (ids.CombinedID, error) {
	return ids.Combine(maxID+1, ss.order)
}
