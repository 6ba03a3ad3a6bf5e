package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tajious/backoffice/internal/auth"
	"github.com/tajious/backoffice/internal/provision"
	"github.com/tajious/backoffice/internal/storage"
	"go.uber.org/zap"
)

var statuses = []struct {
	err     error
	status  int
	message string
}{
	{auth.ErrMissingTenantIdentifier, fiber.StatusBadRequest, "Missing tenant identifier"},
	{auth.ErrTenantNotFound, fiber.StatusNotFound, "Tenant not found"},
	{auth.ErrTenantInactive, fiber.StatusForbidden, "Tenant is inactive"},
	{auth.ErrTenantMisconfigured, fiber.StatusInternalServerError, "Tenant is misconfigured"},
	{auth.ErrServerMisconfigured, fiber.StatusInternalServerError, "Server misconfigured"},
	{auth.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid credentials"},
	{auth.ErrAccountInactive, fiber.StatusForbidden, "Account is inactive"},
	{auth.ErrMissingToken, fiber.StatusUnauthorized, "Missing authorization header"},
	{auth.ErrInvalidToken, fiber.StatusUnauthorized, "Invalid token"},
	{auth.ErrTokenExpired, fiber.StatusUnauthorized, "Token expired"},
	{auth.ErrIdentityMismatch, fiber.StatusForbidden, "Token not accepted on this route"},
	{auth.ErrIdentityNotFound, fiber.StatusUnauthorized, "Identity not found"},
	{auth.ErrForbidden, fiber.StatusForbidden, "Insufficient permissions"},
	{auth.ErrPasswordTooLong, fiber.StatusBadRequest, "Password must be at most 72 bytes"},
	{ErrProvisioningDisabled, fiber.StatusServiceUnavailable, "Provisioning is disabled"},
	{ErrInvalidAPIKey, fiber.StatusUnauthorized, "Invalid API key"},
	{provision.ErrDuplicateTenant, fiber.StatusConflict, "Tenant already exists"},
	{provision.ErrInvalidRequest, fiber.StatusBadRequest, "Invalid request body"},
	{storage.ErrDuplicate, fiber.StatusConflict, "Resource already exists"},
	{storage.ErrTenantNotFound, fiber.StatusNotFound, "Tenant not found"},
	{storage.ErrUserNotFound, fiber.StatusNotFound, "User not found"},
	{storage.ErrCustomerNotFound, fiber.StatusNotFound, "Customer not found"},
	{storage.ErrProductNotFound, fiber.StatusNotFound, "Product not found"},
}

// StatusOf maps an error to the HTTP status and public message sent for it.
func StatusOf(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status, s.message
		}
	}
	return fiber.StatusInternalServerError, "Internal server error"
}

// ErrorHandler renders every error returned by a handler as {"error": ...}.
// Configuration faults are logged at error level since they point at a bad
// tenant record rather than a bad request.
func ErrorHandler(log *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, message := StatusOf(err)

		fields := []any{"method", c.Method(), "path", c.Path(), "status", status, "error", err}
		if tenant, ok := TenantFrom(c); ok {
			fields = append(fields, "tenant_id", tenant.ID)
		}
		switch {
		case errors.Is(err, auth.ErrTenantMisconfigured), errors.Is(err, auth.ErrServerMisconfigured):
			log.Errorw("configuration fault", fields...)
		case status >= fiber.StatusInternalServerError:
			log.Errorw("request failed", fields...)
		default:
			log.Debugw("request rejected", fields...)
		}

		return c.Status(status).JSON(fiber.Map{
			"error": message,
		})
	}
}
