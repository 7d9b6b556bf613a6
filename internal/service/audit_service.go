package service

import (
	"context"
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// AuditQuery narrows the audit projection for oversight queries.
type AuditQuery struct {
	ActorID *string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// AuditService is the read-only projection over status events. It never
// writes; unknown filters yield empty results rather than errors, and store
// failures propagate unchanged.
type AuditService struct {
	audit repository.AuditRepository
}

// NewAuditService constructs the service.
func NewAuditService(audit repository.AuditRepository) *AuditService {
	return &AuditService{audit: audit}
}

// ListForAdmin returns the audit trail of the admin's own department. Only
// department admins may query the projection.
func (s *AuditService) ListForAdmin(ctx context.Context, actor domain.Actor, query AuditQuery) ([]repository.AuditEntry, error) {
	if actor.Role != domain.RoleDepartmentAdmin {
		return nil, apperrors.NewForbidden("audit queries require a department admin")
	}
	entries, err := s.audit.List(ctx, repository.AuditFilter{
		ActorID:      query.ActorID,
		DepartmentID: &actor.DepartmentID,
		From:         query.From,
		To:           query.To,
		Limit:        query.Limit,
		Offset:       query.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if entries == nil {
		entries = []repository.AuditEntry{}
	}
	return entries, nil
}
