package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tajious/backoffice/internal/auth"
	"github.com/tajious/backoffice/internal/models"
)

type AuthMiddleware struct {
	auth *auth.Service
}

func NewAuthMiddleware(svc *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		auth: svc,
	}
}

// Authenticate verifies the bearer token of the given identity class
// against the resolved tenant. It must run after TenantMiddleware.Resolve.
func (m *AuthMiddleware) Authenticate(class models.IdentityClass) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenant, err := RequireTenant(c)
		if err != nil {
			return err
		}

		tokenString, err := auth.ParseBearer(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}

		identity, err := m.auth.Verify(c.UserContext(), tenant, tokenString, class)
		if err != nil {
			return err
		}

		c.Locals(localIdentity, identity)
		return c.Next()
	}
}

func (m *AuthMiddleware) RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := IdentityFrom(c)
		if err := auth.Authorize(identity, roles...); err != nil {
			return err
		}
		return c.Next()
	}
}

func IdentityFrom(c *fiber.Ctx) (*auth.Identity, bool) {
	identity, ok := c.Locals(localIdentity).(*auth.Identity)
	return identity, ok && identity != nil
}
