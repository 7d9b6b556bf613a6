package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/repository"
)

// DepartmentsHandler exposes the public department directory citizens pick
// from when filing a grievance.
type DepartmentsHandler struct {
	departments repository.DepartmentRepository
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departmentRepo repository.DepartmentRepository) *DepartmentsHandler {
	return &DepartmentsHandler{departments: departmentRepo}
}

// List GET /departments.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	departments, err := h.departments.ListActive(c.Context())
	if err != nil {
		return err
	}
	items := make([]fiber.Map, 0, len(departments))
	for _, dept := range departments {
		items = append(items, fiber.Map{
			"id":          dept.ID,
			"name":        dept.Name,
			"description": dept.Description,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
