package middleware

import (
	"crypto/subtle"
	"errors"

	"github.com/gofiber/fiber/v2"
)

const HeaderAPIKey = "X-Api-Key"

var (
	ErrProvisioningDisabled = errors.New("provisioning disabled")
	ErrInvalidAPIKey        = errors.New("invalid api key")
)

// SuperAdmin guards platform routes with a static shared key. An empty key
// disables the routes entirely.
func SuperAdmin(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiKey == "" {
			return ErrProvisioningDisabled
		}
		if subtle.ConstantTimeCompare([]byte(c.Get(HeaderAPIKey)), []byte(apiKey)) != 1 {
			return ErrInvalidAPIKey
		}
		return c.Next()
	}
}
