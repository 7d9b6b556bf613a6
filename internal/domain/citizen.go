package domain

import "time"

// CitizenStatus represents account lifecycle states for a citizen.
type CitizenStatus string

const (
	CitizenStatusActive    CitizenStatus = "ACTIVE"
	CitizenStatusSuspended CitizenStatus = "SUSPENDED"
)

// Citizen is the domain model for residents who file grievances.
type Citizen struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       CitizenStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
