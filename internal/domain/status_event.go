package domain

import "time"

// GrievanceAction enumerates the commands staff may apply to a grievance.
type GrievanceAction string

const (
	ActionResolve     GrievanceAction = "RESOLVE"
	ActionReject      GrievanceAction = "REJECT"
	ActionPassToAdmin GrievanceAction = "PASS_TO_ADMIN"
)

// DefaultEscalationNote is recorded when an escalation carries no remark.
const DefaultEscalationNote = "Passed to Admin"

// ResultingStatus maps an action to the status it puts the grievance in.
func (a GrievanceAction) ResultingStatus() GrievanceStatus {
	switch a {
	case ActionResolve:
		return GrievanceStatusResolved
	case ActionReject:
		return GrievanceStatusRejected
	case ActionPassToAdmin:
		return GrievanceStatusEscalated
	}
	return GrievanceStatusPending
}

// IsValid reports whether the action is one of the known commands.
func (a GrievanceAction) IsValid() bool {
	switch a {
	case ActionResolve, ActionReject, ActionPassToAdmin:
		return true
	}
	return false
}

// RequiresNote reports whether the action must carry a non-empty note.
func (a GrievanceAction) RequiresNote() bool {
	return a == ActionResolve || a == ActionReject
}

// StatusEvent is one immutable entry in a grievance's audit trail. Entries are
// only ever appended; OccurredAt is non-decreasing within one grievance.
type StatusEvent struct {
	ID          string
	GrievanceID string
	ActorID     string
	ActorRole   Role
	Action      GrievanceAction
	Note        string
	OccurredAt  time.Time
}
