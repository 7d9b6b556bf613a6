package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/service"
)

// AuditHandler exposes the department-scoped audit trail to admins.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: auditService}
}

// List GET /staff/audit.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}

	query := service.AuditQuery{}
	if actorID := c.Query("actor_id"); actorID != "" {
		query.ActorID = &actorID
	}
	query.From = parseTime(c.Query("from"))
	query.To = parseTime(c.Query("to"))
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	query.Offset = (page - 1) * pageSize
	query.Limit = pageSize

	entries, err := h.audit.ListForAdmin(c.Context(), staff.Actor(), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": auditEntries(entries)})
}

func auditEntries(entries []repository.AuditEntry) []dto.AuditEntryResponse {
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.AuditEntryResponse{
			ID:           entry.Event.ID,
			GrievanceID:  entry.Event.GrievanceID,
			DepartmentID: entry.DepartmentID,
			ActorID:      entry.Event.ActorID,
			ActorRole:    entry.Event.ActorRole,
			Action:       entry.Event.Action,
			Note:         entry.Event.Note,
			OccurredAt:   entry.Event.OccurredAt,
		})
	}
	return items
}
