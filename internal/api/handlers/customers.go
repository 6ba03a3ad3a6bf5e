package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tajious/backoffice/internal/auth"
	"github.com/tajious/backoffice/internal/middleware"
	"github.com/tajious/backoffice/internal/models"
	"github.com/tajious/backoffice/internal/storage"
	"github.com/tajious/backoffice/internal/validation"
)

type CustomerHandler struct {
	storage storage.Storage
}

func NewCustomerHandler(storage storage.Storage) *CustomerHandler {
	return &CustomerHandler{
		storage: storage,
	}
}

type RegisterCustomerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,password"`
	Name     string `json:"name" validate:"max=100"`
	Phone    string `json:"phone" validate:"max=32"`
}

// Register creates a shopper account inside the resolved tenant. The same
// email may exist in other tenants.
func (h *CustomerHandler) Register(c *fiber.Ctx) error {
	var req RegisterCustomerRequest
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

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}

	customer := &models.Customer{
		ID:       uuid.NewString(),
		TenantID: tenant.ID,
		Email:    auth.NormalizeEmail(req.Email),
		Name:     strings.TrimSpace(req.Name),
		Phone:    strings.TrimSpace(req.Phone),
		Password: hash,
		Active:   true,
	}
	if err := h.storage.CreateCustomer(c.UserContext(), customer); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(customer)
}
