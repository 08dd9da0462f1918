package middleware

import (
	"cribz-gateway/internal/pkg/constants"
	"cribz-gateway/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth ensures a bearer token is present. The gateway does not verify
// it — the upstream owns authentication — but routes that are meaningless
// without a viewer reject early instead of relaying guaranteed 401s.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Token(c) == "" {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// RequireAdmin gates moderation and dashboard routes on the cached session
// user's role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := GetUser(c)
		if u == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if u.Role != constants.RoleAdmin {
			return response.Error(c, "Admin access required", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}
