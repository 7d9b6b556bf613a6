package dto

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
)

// SubmitGrievanceRequest payload for citizen submissions.
type SubmitGrievanceRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	DepartmentID string `json:"department_id"`
}

// ApplyActionRequest payload for staff workflow actions.
type ApplyActionRequest struct {
	Action string `json:"action"`
	Note   string `json:"note"`
}

// StatusEventResponse is one history entry.
type StatusEventResponse struct {
	ID         string                 `json:"id"`
	ActorID    string                 `json:"actor_id"`
	ActorRole  domain.Role            `json:"actor_role"`
	Action     domain.GrievanceAction `json:"action"`
	Note       string                 `json:"note"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// AssignmentResponse describes who a grievance is currently routed to.
type AssignmentResponse struct {
	Kind         service.AssignmentKind `json:"kind"`
	ActorID      *string                `json:"actor_id,omitempty"`
	DepartmentID string                 `json:"department_id"`
}

// GrievanceSummary is the list-view shape.
type GrievanceSummary struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	DepartmentID string                 `json:"department_id"`
	Status       domain.GrievanceStatus `json:"status"`
	AssignedTo   *string                `json:"assigned_to"`
	Version      int                    `json:"version"`
	CreatedAt    time.Time              `json:"created_at"`
}

// GrievanceDetailResponse is the single-grievance shape with full history
// and resolved routing.
type GrievanceDetailResponse struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	RaisedBy     string                 `json:"raised_by"`
	DepartmentID string                 `json:"department_id"`
	Status       domain.GrievanceStatus `json:"status"`
	AssignedTo   *string                `json:"assigned_to"`
	Version      int                    `json:"version"`
	CreatedAt    time.Time              `json:"created_at"`
	History      []StatusEventResponse  `json:"history"`
	Assignment   AssignmentResponse     `json:"assignment"`
}
