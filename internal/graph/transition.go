package graph

// Transition is an outgoing (event, target) pair. Transitions on one
// state are ordered by insertion; duplicates (same event and target)
// are disallowed (spec §3).
type Transition struct {
	EventID  int32
	TargetID int64
}

// TransitionData is a (initialStateId, eventId, targetStateId) triple
// used as a key into the tagged-transition tables (spec §3).
type TransitionData struct {
	InitialStateID int64
	EventID        int32
	TargetStateID  int64
}

// Role classifies a controller's participation in a communication
// (spec §3). Exactly one controller is SENDER per communication record.
type Role int

const (
	RoleNone Role = iota
	RoleSender
	RoleReceiver
)

// CommunicationData carries the per-controller role array of a
// potential/invalid communication. IndexOfSender caches the sender's
// index, or -1 if the record is logically inconsistent (zero or two+
// senders) - spec §4.6 "Failure semantics".
type CommunicationData struct {
	Roles         []Role
	IndexOfSender int
}

// NewCommunicationData derives IndexOfSender from roles, accepting
// logically inconsistent role arrays (spec §4.6: such records are kept,
// with IndexOfSender = -1, and logged by the caller).
func NewCommunicationData(roles []Role) CommunicationData {
	senderIdx := -1
	senders := 0
	for i, r := range roles {
		if r == RoleSender {
			senders++
			senderIdx = i
		}
	}
	if senders != 1 {
		senderIdx = -1
	}
	return CommunicationData{Roles: roles, IndexOfSender: senderIdx}
}

// NashCommunicationData is a CommunicationData with an opaque cost and
// probability attribute (spec §3: "carried as opaque attributes; no
// equilibrium solver is specified here").
type NashCommunicationData struct {
	CommunicationData
	Cost        float64
	Probability float64
}

// DisablementData carries, per controller, whether that controller
// locally has a bad transition for the tagged event (spec §3, §4.3
// "disablement decisions").
type DisablementData struct {
	Disabler []bool
}
