package domain

import "time"

// Department is the organizational unit owning grievances. AdminID names the
// single department admin that escalations route to.
type Department struct {
	ID          string
	Name        string
	Description string
	AdminID     *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
