package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tajious/backoffice/internal/auth"
	"github.com/tajious/backoffice/internal/models"
)

const (
	localTenant   = "tenant"
	localIdentity = "identity"
)

type TenantMiddleware struct {
	auth   *auth.Service
	header string
}

func NewTenantMiddleware(svc *auth.Service, header string) *TenantMiddleware {
	return &TenantMiddleware{
		auth:   svc,
		header: header,
	}
}

// Resolve attaches the addressed tenant to the request or rejects it.
func (m *TenantMiddleware) Resolve() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenant, err := m.auth.ResolveTenant(c.UserContext(), auth.TenantLookup{
			Header: c.Get(m.header),
			Host:   c.Hostname(),
		})
		if err != nil {
			return err
		}

		c.Locals(localTenant, tenant)
		return c.Next()
	}
}

func TenantFrom(c *fiber.Ctx) (*models.Tenant, bool) {
	tenant, ok := c.Locals(localTenant).(*models.Tenant)
	return tenant, ok && tenant != nil
}

// RequireTenant is TenantFrom for handlers: a route mounted without the
// resolver fails closed.
func RequireTenant(c *fiber.Ctx) (*models.Tenant, error) {
	tenant, ok := TenantFrom(c)
	if !ok {
		return nil, auth.ErrServerMisconfigured
	}
	return tenant, nil
}
