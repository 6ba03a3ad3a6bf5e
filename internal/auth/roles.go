package auth

import "github.com/tajious/backoffice/internal/models"

// Authorize accepts identity when its role is one of roles.
func Authorize(identity *Identity, roles ...models.Role) error {
	if identity == nil {
		return ErrServerMisconfigured
	}
	for _, role := range roles {
		if identity.Role == role {
			return nil
		}
	}
	return ErrForbidden
}
