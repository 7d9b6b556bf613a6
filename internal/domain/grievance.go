package domain

import "time"

// GrievanceStatus enumerates lifecycle states for grievances.
type GrievanceStatus string

const (
	GrievanceStatusPending   GrievanceStatus = "PENDING"
	GrievanceStatusResolved  GrievanceStatus = "RESOLVED"
	GrievanceStatusRejected  GrievanceStatus = "REJECTED"
	GrievanceStatusEscalated GrievanceStatus = "ESCALATED_TO_ADMIN"
)

// IsTerminal reports whether no further transitions are permitted.
func (s GrievanceStatus) IsTerminal() bool {
	return s == GrievanceStatusResolved || s == GrievanceStatusRejected
}

// Grievance is the aggregate for citizen complaints. Status and AssignedTo
// are caches over History: Status must always equal DeriveStatus(History),
// and Version must always equal len(History).
type Grievance struct {
	ID           string
	Title        string
	Description  string
	RaisedBy     string
	DepartmentID string
	Status       GrievanceStatus
	AssignedTo   *string
	Version      int
	CreatedAt    time.Time
	History      []StatusEvent
}

// DeriveStatus computes the status implied by an event history: the status of
// the last event, or PENDING when the history is empty.
func DeriveStatus(history []StatusEvent) GrievanceStatus {
	if len(history) == 0 {
		return GrievanceStatusPending
	}
	return history[len(history)-1].Action.ResultingStatus()
}
