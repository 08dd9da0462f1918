package auth

import (
	"encoding/json"

	"cribz-gateway/internal/domain"
	"cribz-gateway/internal/middleware"
	"cribz-gateway/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Handlers manages the session cache: the dashboard attaches the upstream
// user object after sign-in and detaches it on sign-out.
type Handlers struct {
	Rdb *redis.Client
}

// POST /api/v1/auth/attach — caches the authenticated user under the
// bearer token's digest so later requests can resolve role and identity
// without calling upstream.
func (h *Handlers) Attach(c *fiber.Ctx) error {
	token := middleware.Token(c)
	if token == "" {
		return response.Unauthorized(c, "Bearer token is required")
	}
	var user domain.SessionUser
	if err := c.BodyParser(&user); err != nil || user.ID == "" {
		return response.Error(c, "A user object with an id is required", fiber.StatusBadRequest, nil)
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return response.Error(c, "Could not encode user", fiber.StatusInternalServerError, nil)
	}
	if err := h.Rdb.Set(c.Context(), middleware.SessionKey(token), payload, middleware.SessionTTL).Err(); err != nil {
		return response.Error(c, "Could not store session", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Session attached", fiber.Map{"id": user.ID, "role": user.Role}, nil)
}

// GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return response.Unauthorized(c, "No session attached for this token")
	}
	return response.Success(c, "Session fetched", user, nil)
}

// DELETE /api/v1/auth/detach
func (h *Handlers) Detach(c *fiber.Ctx) error {
	token := middleware.Token(c)
	if token == "" {
		return response.Unauthorized(c, "Bearer token is required")
	}
	if err := h.Rdb.Del(c.Context(), middleware.SessionKey(token)).Err(); err != nil {
		return response.Error(c, "Could not clear session", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Session detached", nil, nil)
}
