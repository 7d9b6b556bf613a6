package dto

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// AuditEntryResponse is one status event in the department audit trail.
type AuditEntryResponse struct {
	ID           string                 `json:"id"`
	GrievanceID  string                 `json:"grievance_id"`
	DepartmentID string                 `json:"department_id"`
	ActorID      string                 `json:"actor_id"`
	ActorRole    domain.Role            `json:"actor_role"`
	Action       domain.GrievanceAction `json:"action"`
	Note         string                 `json:"note"`
	OccurredAt   time.Time              `json:"occurred_at"`
}
