package domain

// Role enumerates the parties that interact with grievances.
type Role string

const (
	RoleCitizen         Role = "CITIZEN"
	RoleEmployee        Role = "EMPLOYEE"
	RoleDepartmentAdmin Role = "DEPARTMENT_ADMIN"
)

// IsStaff reports whether the role belongs to department staff.
func (r Role) IsStaff() bool {
	return r == RoleEmployee || r == RoleDepartmentAdmin
}

// Actor is the authenticated identity acting on a grievance. It is handed to
// the core by the auth layer and trusted as-is; DepartmentID is empty for
// citizens.
type Actor struct {
	ID           string
	Role         Role
	DepartmentID string
}
