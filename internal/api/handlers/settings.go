package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/tajious/backoffice/internal/auth"
	"github.com/tajious/backoffice/internal/middleware"
	"github.com/tajious/backoffice/internal/storage"
	"github.com/tajious/backoffice/internal/validation"
	"go.uber.org/zap"
)

// SettingsHandler lets a tenant admin manage the tenant's own configuration.
type SettingsHandler struct {
	storage storage.Storage
	log     *zap.SugaredLogger
}

func NewSettingsHandler(storage storage.Storage, log *zap.SugaredLogger) *SettingsHandler {
	return &SettingsHandler{
		storage: storage,
		log:     log,
	}
}

// Get reports the tenant profile and the names of configured third-party
// credentials. Secret values never leave the server.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	tenant, err := middleware.RequireTenant(c)
	if err != nil {
		return err
	}

	names := tenant.Config.CredentialNames()
	sort.Strings(names)

	return c.JSON(fiber.Map{
		"id":          tenant.ID,
		"handle":      tenant.Handle,
		"name":        tenant.Name,
		"active":      tenant.Active,
		"credentials": names,
	})
}

type UpdateCredentialsRequest struct {
	Credentials map[string]any `json:"credentials" validate:"required"`
}

func (h *SettingsHandler) UpdateCredentials(c *fiber.Ctx) error {
	var req UpdateCredentialsRequest
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

	config := tenant.Config
	config.TenantID = tenant.ID
	config.Credentials = req.Credentials
	if err := h.storage.UpdateTenantConfig(c.UserContext(), &config); err != nil {
		return err
	}

	names := config.CredentialNames()
	sort.Strings(names)
	return c.JSON(fiber.Map{
		"credentials": names,
	})
}

// RotateSecret replaces the tenant's signing secret. Every token issued
// before the rotation stops verifying, including the caller's.
func (h *SettingsHandler) RotateSecret(c *fiber.Ctx) error {
	tenant, err := middleware.RequireTenant(c)
	if err != nil {
		return err
	}

	config := tenant.Config
	config.TenantID = tenant.ID
	config.SigningSecret = auth.NewSigningSecret()
	if err := h.storage.UpdateTenantConfig(c.UserContext(), &config); err != nil {
		return err
	}

	h.log.Infow("signing secret rotated", "tenant_id", tenant.ID)
	return c.JSON(fiber.Map{
		"message": "Signing secret rotated; existing tokens are revoked",
	})
}
