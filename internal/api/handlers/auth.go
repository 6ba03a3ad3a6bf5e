package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tajious/backoffice/internal/auth"
	"github.com/tajious/backoffice/internal/middleware"
	"github.com/tajious/backoffice/internal/models"
	"github.com/tajious/backoffice/internal/validation"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{
		auth: svc,
	}
}

func (h *AuthHandler) StaffLogin(c *fiber.Ctx) error {
	return h.login(c, models.IdentityStaff)
}

func (h *AuthHandler) CustomerLogin(c *fiber.Ctx) error {
	return h.login(c, models.IdentityCustomer)
}

func (h *AuthHandler) login(c *fiber.Ctx, class models.IdentityClass) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := validation.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	tenant, err := middleware.RequireTenant(c)
	if err != nil {
		return err
	}

	token, err := h.auth.IssueToken(c.UserContext(), tenant, class, auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(models.LoginResponse{
		Token:     token.Value,
		ExpiresIn: int(h.auth.TTL(class).Seconds()),
		Subject:   subjectOf(token.Identity),
	})
}

// Me returns the authenticated staff user or customer and its tenant.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return auth.ErrServerMisconfigured
	}
	tenant, err := middleware.RequireTenant(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user": subjectOf(identity),
		"tenant": fiber.Map{
			"id":     tenant.ID,
			"handle": tenant.Handle,
			"name":   tenant.Name,
		},
	})
}

func subjectOf(identity *auth.Identity) any {
	if identity.Staff != nil {
		return identity.Staff
	}
	return identity.Customer
}
