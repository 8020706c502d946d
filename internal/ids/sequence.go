package ids

// Sequence pairs a state-id prefix trail with the event-id trail along
// it (spec §4.1). Used to carry paths through breadth-first traversals
// and to build counter-example words. The trail always has one more
// state than events: states[0] is the path's origin, states[i+1] is the
// target of events[i].
type Sequence struct {
	States []int64
	Events []int32
}

// NewSequence starts a sequence at the given origin state.
func NewSequence(origin int64) Sequence {
	return Sequence{States: []int64{origin}}
}

// Append returns a new Sequence extended by one (event, target) step.
// The receiver is not mutated, so a single Sequence can be safely
// branched from during a worklist traversal.
func (s Sequence) Append(eventID int32, targetState int64) Sequence {
	states := make([]int64, len(s.States)+1)
	copy(states, s.States)
	states[len(s.States)] = targetState

	events := make([]int32, len(s.Events)+1)
	copy(events, s.Events)
	events[len(s.Events)] = eventID

	return Sequence{States: states, Events: events}
}

// Last returns the terminal state of the sequence.
func (s Sequence) Last() int64 {
	return s.States[len(s.States)-1]
}

// Len returns the number of events (transitions) in the sequence.
func (s Sequence) Len() int {
	return len(s.Events)
}

// Word builds the Word corresponding to this sequence's events, using
// labelOf to map an event id to its label.
func (s Sequence) Word(labelOf func(eventID int32) string) Word {
	labels := make([]string, len(s.Events))
	for i, e := range s.Events {
		labels[i] = labelOf(e)
	}
	return NewWord(labels...)
}
