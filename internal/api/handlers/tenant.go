package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tajious/backoffice/internal/auth"
	"github.com/tajious/backoffice/internal/models"
	"github.com/tajious/backoffice/internal/provision"
	"github.com/tajious/backoffice/internal/storage"
	"github.com/tajious/backoffice/internal/validation"
)

// TenantHandler serves the platform operator's tenant routes.
type TenantHandler struct {
	storage     storage.Storage
	provisioner *provision.Orchestrator
}

func NewTenantHandler(storage storage.Storage, provisioner *provision.Orchestrator) *TenantHandler {
	return &TenantHandler{
		storage:     storage,
		provisioner: provisioner,
	}
}

type CreateTenantRequest struct {
	ClientName    string         `json:"client_name" validate:"required,min=2,max=100"`
	Handle        string         `json:"handle" validate:"required,handle"`
	AdminEmail    string         `json:"admin_email" validate:"required,email"`
	AdminName     string         `json:"admin_name" validate:"max=100"`
	AdminPassword string         `json:"admin_password" validate:"required,min=8,password"`
	Credentials   map[string]any `json:"credentials"`
}

type CreateTenantResponse struct {
	ID         int64  `json:"id"`
	Handle     string `json:"handle"`
	Name       string `json:"name"`
	AdminEmail string `json:"admin_email"`
}

func (h *TenantHandler) CreateTenant(c *fiber.Ctx) error {
	var req CreateTenantRequest
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

	tenant, err := h.provisioner.Provision(c.UserContext(), provision.Request{
		ClientName:    req.ClientName,
		Handle:        req.Handle,
		AdminEmail:    req.AdminEmail,
		AdminName:     req.AdminName,
		AdminPassword: req.AdminPassword,
		Credentials:   req.Credentials,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(CreateTenantResponse{
		ID:         tenant.ID,
		Handle:     tenant.Handle,
		Name:       tenant.Name,
		AdminEmail: auth.NormalizeEmail(req.AdminEmail),
	})
}

type ListTenantsRequest struct {
	Page     int `query:"page" validate:"min=1"`
	PageSize int `query:"page_size" validate:"min=1,max=100"`
}

type ListTenantsResponse struct {
	Tenants []*models.Tenant `json:"tenants"`
	Page
}

func (h *TenantHandler) ListTenants(c *fiber.Ctx) error {
	var req ListTenantsRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid query parameters",
		})
	}

	pageDefaults(&req.Page, &req.PageSize)

	if err := validation.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	tenants, total, err := h.storage.ListTenants(c.UserContext(), req.Page, req.PageSize)
	if err != nil {
		return err
	}
	if tenants == nil {
		tenants = []*models.Tenant{}
	}

	return c.JSON(ListTenantsResponse{
		Tenants: tenants,
		Page:    newPage(total, req.Page, req.PageSize),
	})
}

type UpdateTenantStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// UpdateStatus enables or disables a tenant. A disabled tenant fails
// resolution, so every request addressed to it is rejected.
func (h *TenantHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid tenant id",
		})
	}

	var req UpdateTenantStatusRequest
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

	tenant, err := h.storage.GetTenant(c.UserContext(), int64(id))
	if err != nil {
		return err
	}

	tenant.Active = *req.Active
	if err := h.storage.UpdateTenant(c.UserContext(), tenant); err != nil {
		return err
	}

	return c.JSON(tenant)
}
