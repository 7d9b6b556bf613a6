package domain

import "time"

// StaffMember models a department employee or department admin. Role is
// always RoleEmployee or RoleDepartmentAdmin; citizens live in Citizen.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	DepartmentID string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor converts the staff record into the identity the workflow core trusts.
func (m *StaffMember) Actor() Actor {
	return Actor{ID: m.ID, Role: m.Role, DepartmentID: m.DepartmentID}
}
