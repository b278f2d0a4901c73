package domain

import "sort"

// Operation is a workflow intent submitted against an existing event
type Operation string

const (
	OpApprove  Operation = "approve"
	OpReject   Operation = "reject"
	OpStart    Operation = "start"
	OpComplete Operation = "complete"
)

// Effect is a bit set of side effects a transition carries
type Effect uint8

const (
	// EffectRecordHistory appends an approval history entry
	EffectRecordHistory Effect = 1 << iota
	// EffectRecheckConflict re-runs the venue conflict check before committing
	EffectRecheckConflict
	// EffectReserve decrements every requested resource
	EffectReserve
	// EffectRelease returns every requested resource to stock
	EffectRelease
)

// Has reports whether f is set
func (e Effect) Has(f Effect) bool {
	return e&f != 0
}

// Transition is one row of the workflow table
type Transition struct {
	From    EventStatus
	Op      Operation
	Role    Role
	To      EventStatus
	Effects Effect
}

// Decision returns the history decision recorded by the transition
func (t Transition) Decision() Decision {
	if t.Op == OpReject {
		return DecisionRejected
	}
	return DecisionApproved
}

type transitionKey struct {
	from EventStatus
	op   Operation
	role Role
}

var transitionTable = map[transitionKey]Transition{}

func init() {
	rows := []Transition{
		{StatusPending, OpApprove, RoleHOD, StatusHODApproved, EffectRecordHistory},
		{StatusHODApproved, OpApprove, RoleDean, StatusDeanApproved, EffectRecordHistory},
		{StatusDeanApproved, OpApprove, RoleInstitutionalHead, StatusApproved,
			EffectRecordHistory | EffectRecheckConflict | EffectReserve},

		{StatusPending, OpReject, RoleHOD, StatusRejected, EffectRecordHistory},
		{StatusHODApproved, OpReject, RoleDean, StatusRejected, EffectRecordHistory},
		{StatusDeanApproved, OpReject, RoleInstitutionalHead, StatusRejected, EffectRecordHistory},

		{StatusApproved, OpStart, RoleCoordinator, StatusRunning, 0},
		{StatusRunning, OpComplete, RoleCoordinator, StatusCompleted, EffectRelease},
	}
	for _, r := range rows {
		transitionTable[transitionKey{r.From, r.Op, r.Role}] = r
	}
}

// CreateRole is the only role allowed to submit new events
const CreateRole = RoleCoordinator

// LookupTransition finds the row for (from, op, role). Any combination
// outside the table is an InvalidTransition.
func LookupTransition(from EventStatus, op Operation, role Role) (Transition, error) {
	t, ok := transitionTable[transitionKey{from, op, role}]
	if !ok {
		return Transition{}, invalidTransition(from, op, role)
	}
	return t, nil
}

// ApproverFor names the role whose decision the event is waiting on
func ApproverFor(status EventStatus) (Role, bool) {
	r, ok := approverByStatus[status]
	return r, ok
}

var approverByStatus = map[EventStatus]Role{
	StatusPending:      RoleHOD,
	StatusHODApproved:  RoleDean,
	StatusDeanApproved: RoleInstitutionalHead,
}

// Transitions returns every row of the table in a stable order
func Transitions() []Transition {
	out := make([]Transition, 0, len(transitionTable))
	for _, t := range transitionTable {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].Op != out[j].Op {
			return out[i].Op < out[j].Op
		}
		return out[i].Role < out[j].Role
	})
	return out
}

func invalidTransition(from EventStatus, op Operation, role Role) error {
	switch op {
	case OpStart:
		if from != StatusApproved {
			return NewError(ErrInvalidTransition, "Only fully approved events can be started")
		}
	case OpComplete:
		if from != StatusRunning {
			return NewError(ErrInvalidTransition, "Only running events can be completed")
		}
	case OpApprove, OpReject:
		if want, ok := approverByStatus[from]; ok && want != role {
			return NewError(ErrInvalidTransition, "Event at %s awaits %s, not %s", from, want, role)
		}
	}
	return NewError(ErrInvalidTransition, "Cannot %s an event in status %s as %s", op, from, role)
}
