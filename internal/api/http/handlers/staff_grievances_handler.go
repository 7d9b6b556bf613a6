package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// applyRetryLimit bounds automatic retries after a lost optimistic-version
// race. Each retry re-reads current state, so a transition that became
// illegal in the meantime fails with INVALID_TRANSITION instead of looping.
const applyRetryLimit = 3

// StaffGrievancesHandler handles employee and department admin endpoints.
type StaffGrievancesHandler struct {
	grievances *service.GrievanceService
}

// NewStaffGrievancesHandler constructs handler.
func NewStaffGrievancesHandler(grievanceService *service.GrievanceService) *StaffGrievancesHandler {
	return &StaffGrievancesHandler{grievances: grievanceService}
}

// List GET /staff/grievances.
func (h *StaffGrievancesHandler) List(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	views, err := h.grievances.ListForActor(c.Context(), staff.Actor())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": grievanceSummaries(views)})
}

// Get GET /staff/grievances/:id.
func (h *StaffGrievancesHandler) Get(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	view, err := h.grievances.Get(c.Context(), staff.Actor(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": grievanceDetail(view)})
}

// ApplyAction POST /staff/grievances/:id/actions.
func (h *StaffGrievancesHandler) ApplyAction(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ApplyActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	action := domain.GrievanceAction(strings.ToUpper(strings.TrimSpace(req.Action)))
	if !action.IsValid() {
		return apperrors.NewValidationError("unknown action", map[string]any{"action": req.Action})
	}

	actor := staff.Actor()
	grievanceID := c.Params("id")

	var grievance *domain.Grievance
	for attempt := 0; attempt < applyRetryLimit; attempt++ {
		grievance, err = h.grievances.Apply(c.Context(), actor, grievanceID, action, req.Note)
		if err == nil || !apperrors.IsCode(err, apperrors.CodeConflict) {
			break
		}
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": grievanceSummaryFromDomain(grievance)})
}

func staffPrincipal(c *fiber.Ctx) (*domain.StaffMember, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	return principal.Staff, nil
}
