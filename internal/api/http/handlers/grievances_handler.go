package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// GrievancesHandler manages citizen-facing grievance endpoints.
type GrievancesHandler struct {
	grievances *service.GrievanceService
}

// NewGrievancesHandler constructs handler.
func NewGrievancesHandler(grievanceService *service.GrievanceService) *GrievancesHandler {
	return &GrievancesHandler{grievances: grievanceService}
}

// Submit POST /grievances.
func (h *GrievancesHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Citizen == nil {
		return apperrors.NewUnauthorized("citizen required")
	}
	var req dto.SubmitGrievanceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" || req.Description == "" || req.DepartmentID == "" {
		return apperrors.NewValidationError("title, description, department_id required", nil)
	}

	grievance, err := h.grievances.Submit(c.Context(), service.SubmitInput{
		Title:        req.Title,
		Description:  req.Description,
		RaisedBy:     principal.Citizen.ID,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": grievanceSummaryFromDomain(grievance)})
}

// List GET /grievances.
func (h *GrievancesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Citizen == nil {
		return apperrors.NewUnauthorized("citizen required")
	}
	views, err := h.grievances.ListForActor(c.Context(), principal.Actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": grievanceSummaries(views)})
}

// Get GET /grievances/:id.
func (h *GrievancesHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Citizen == nil {
		return apperrors.NewUnauthorized("citizen required")
	}
	view, err := h.grievances.Get(c.Context(), principal.Actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": grievanceDetail(view)})
}

func grievanceSummaries(views []service.GrievanceView) []dto.GrievanceSummary {
	items := make([]dto.GrievanceSummary, 0, len(views))
	for i := range views {
		items = append(items, grievanceSummary(&views[i]))
	}
	return items
}

func grievanceSummary(view *service.GrievanceView) dto.GrievanceSummary {
	g := view.Grievance
	return dto.GrievanceSummary{
		ID:           g.ID,
		Title:        g.Title,
		DepartmentID: g.DepartmentID,
		Status:       g.Status,
		AssignedTo:   g.AssignedTo,
		Version:      g.Version,
		CreatedAt:    g.CreatedAt,
	}
}

func grievanceSummaryFromDomain(g *domain.Grievance) dto.GrievanceSummary {
	return dto.GrievanceSummary{
		ID:           g.ID,
		Title:        g.Title,
		DepartmentID: g.DepartmentID,
		Status:       g.Status,
		AssignedTo:   g.AssignedTo,
		Version:      g.Version,
		CreatedAt:    g.CreatedAt,
	}
}

func grievanceDetail(view *service.GrievanceView) dto.GrievanceDetailResponse {
	g := view.Grievance
	history := make([]dto.StatusEventResponse, 0, len(g.History))
	for _, event := range g.History {
		history = append(history, dto.StatusEventResponse{
			ID:         event.ID,
			ActorID:    event.ActorID,
			ActorRole:  event.ActorRole,
			Action:     event.Action,
			Note:       event.Note,
			OccurredAt: event.OccurredAt,
		})
	}
	return dto.GrievanceDetailResponse{
		ID:           g.ID,
		Title:        g.Title,
		Description:  g.Description,
		RaisedBy:     g.RaisedBy,
		DepartmentID: g.DepartmentID,
		Status:       g.Status,
		AssignedTo:   g.AssignedTo,
		Version:      g.Version,
		CreatedAt:    g.CreatedAt,
		History:      history,
		Assignment: dto.AssignmentResponse{
			Kind:         view.Assignment.Kind,
			ActorID:      view.Assignment.ActorID,
			DepartmentID: view.Assignment.DepartmentID,
		},
	}
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
