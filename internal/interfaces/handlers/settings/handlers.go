package settings

import (
	catsvc "cribz-gateway/internal/application/catalog"
	setsvc "cribz-gateway/internal/application/settings"
	"cribz-gateway/internal/middleware"
	"cribz-gateway/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *setsvc.Service
}

func viewerID(c *fiber.Ctx) string {
	if u := middleware.GetUser(c); u != nil && u.ID != "" {
		return u.ID
	}
	return catsvc.ViewerKey(middleware.Token(c))
}

// GET /api/v1/settings
func (h *Handlers) Get(c *fiber.Ctx) error {
	rec, err := h.Service.Get(c.Context(), viewerID(c))
	if err != nil {
		return response.Error(c, "Could not load settings", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Settings fetched", rec, nil)
}

// PUT /api/v1/settings
func (h *Handlers) Put(c *fiber.Ctx) error {
	var body struct {
		Currency string                 `json:"currency"`
		Prefs    map[string]interface{} `json:"prefs"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	rec, err := h.Service.Put(c.Context(), viewerID(c), body.Currency, body.Prefs)
	if err != nil {
		return response.Error(c, "Could not save settings", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Settings saved", rec, nil)
}
