package auth

import (
	"github.com/gofiber/fiber/v2"
)

// RequireAdmin ensures the authenticated caller is an administrator.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return ErrMissingToken
		}
		if !principal.User.IsAdmin {
			return ErrAuthorizationDenied
		}
		return c.Next()
	}
}

