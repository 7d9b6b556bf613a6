package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// CitizensHandler exposes auth endpoints for citizens.
type CitizensHandler struct {
	auth *service.AuthService
}

// NewCitizensHandler constructs handler.
func NewCitizensHandler(authService *service.AuthService) *CitizensHandler {
	return &CitizensHandler{auth: authService}
}

// Register handles POST /auth/citizens/register.
func (h *CitizensHandler) Register(c *fiber.Ctx) error {
	var req dto.CitizenRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	citizen, token, exp, err := h.auth.RegisterCitizen(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"citizen": fiber.Map{
				"id":    citizen.ID,
				"name":  citizen.Name,
				"email": citizen.Email,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/citizens/login.
func (h *CitizensHandler) Login(c *fiber.Ctx) error {
	var req dto.CitizenLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	citizen, token, exp, err := h.auth.LoginCitizen(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"citizen": fiber.Map{
				"id":    citizen.ID,
				"name":  citizen.Name,
				"email": citizen.Email,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}
