package service

import (
	"github.com/spec-kit/grievance-service/internal/domain"
)

// AssignmentKind classifies who a grievance is currently routed to.
type AssignmentKind string

const (
	// AssignmentEmployeePool routes to any employee of the department.
	AssignmentEmployeePool AssignmentKind = "EMPLOYEE_POOL"
	// AssignmentDepartmentAdmin routes to the department's admin.
	AssignmentDepartmentAdmin AssignmentKind = "DEPARTMENT_ADMIN"
	// AssignmentTerminalActor is the audit-display assignment of a closed
	// grievance: the actor who performed the terminal action.
	AssignmentTerminalActor AssignmentKind = "TERMINAL_ACTOR"
)

// Assignment is the routing decision for one grievance. ActorID is nil for
// pool assignments.
type Assignment struct {
	Kind         AssignmentKind
	ActorID      *string
	DepartmentID string
}

// ResolveAssignment computes the party responsible for a grievance. It is a
// pure function of status, department, and history; the cached assignedTo on
// the grievance must always agree with it.
func ResolveAssignment(status domain.GrievanceStatus, dept *domain.Department, history []domain.StatusEvent) Assignment {
	assignment := Assignment{DepartmentID: dept.ID}
	switch {
	case status.IsTerminal():
		assignment.Kind = AssignmentTerminalActor
		if n := len(history); n > 0 {
			actorID := history[n-1].ActorID
			assignment.ActorID = &actorID
		}
	case status == domain.GrievanceStatusEscalated:
		assignment.Kind = AssignmentDepartmentAdmin
		assignment.ActorID = dept.AdminID
	default:
		assignment.Kind = AssignmentEmployeePool
	}
	return assignment
}
