package admin

import (
	"errors"
	"strings"

	admsvc "cribz-gateway/internal/application/admin"
	"cribz-gateway/internal/domain"
	"cribz-gateway/internal/middleware"
	"cribz-gateway/internal/pkg/response"
	"cribz-gateway/internal/upstream"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the moderation dashboard: platform overview, the pending
// queue, user management and payout views.
type Handlers struct {
	Service *admsvc.Service
}

// GET /api/v1/admin/dashboard
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	overview, err := h.Service.Dashboard(c.Context(), middleware.Token(c))
	if err != nil {
		return upstreamError(c, "Could not load dashboard", err)
	}
	return response.Success(c, "Dashboard fetched", overview, nil)
}

// GET /api/v1/admin/pending
func (h *Handlers) Pending(c *fiber.Ctx) error {
	items, err := h.Service.PendingQueue(c.Context(), middleware.Token(c))
	if err != nil {
		return upstreamError(c, "Could not load pending items", err)
	}
	return response.Success(c, "Pending items fetched", items, fiber.Map{"count": len(items)})
}

// GET /api/v1/admin/users
func (h *Handlers) Users(c *fiber.Ctx) error {
	users, err := h.Service.Users(c.Context(), middleware.Token(c))
	if err != nil {
		return upstreamError(c, "Could not load users", err)
	}
	return response.Success(c, "Users fetched", users, fiber.Map{"count": len(users)})
}

// GET /api/v1/admin/stats
func (h *Handlers) Stats(c *fiber.Ctx) error {
	stats, err := h.Service.Stats(c.Context(), middleware.Token(c))
	if err != nil {
		return upstreamError(c, "Could not load platform stats", err)
	}
	return response.Success(c, "Stats fetched", stats, nil)
}

// GET /api/v1/admin/transactions
func (h *Handlers) Transactions(c *fiber.Ctx) error {
	txs, err := h.Service.Transactions(c.Context(), middleware.Token(c))
	if err != nil {
		return upstreamError(c, "Could not load transactions", err)
	}
	return response.Success(c, "Transactions fetched", txs, fiber.Map{"count": len(txs)})
}

// GET /api/v1/admin/withdrawals
func (h *Handlers) Withdrawals(c *fiber.Ctx) error {
	ws, err := h.Service.Withdrawals(c.Context(), middleware.Token(c))
	if err != nil {
		return upstreamError(c, "Could not load withdrawals", err)
	}
	return response.Success(c, "Withdrawals fetched", ws, fiber.Map{"count": len(ws)})
}

// POST /api/v1/admin/credit
func (h *Handlers) Credit(c *fiber.Ctx) error {
	var body struct {
		UserID string  `json:"userId"`
		Amount float64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.CreditAgent(c.Context(), middleware.Token(c), body.UserID, body.Amount); err != nil {
		if errors.Is(err, admsvc.ErrInvalidCredit) {
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		}
		return upstreamError(c, "Could not credit user", err)
	}
	return response.Success(c, "Account credited successfully!", nil, nil)
}

// PATCH /api/v1/admin/approve/:id?kind=K — the item kind is carried
// explicitly so the moderation action never guesses the collection.
func (h *Handlers) Approve(c *fiber.Ctx) error {
	id := c.Params("id")
	kind, err := parseKind(c.Query("kind"))
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	if err := h.Service.ApproveProperty(c.Context(), middleware.Token(c), id, kind); err != nil {
		return moderationError(c, "Could not approve item", err)
	}
	return response.Success(c, "Item approved and published!", nil, nil)
}

// PATCH /api/v1/admin/reject/:id — body carries the kind and the reason.
func (h *Handlers) Reject(c *fiber.Ctx) error {
	id := c.Params("id")
	var body struct {
		Kind   string `json:"kind"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	kind, err := parseKind(body.Kind)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	if err := h.Service.RejectProperty(c.Context(), middleware.Token(c), id, kind, body.Reason); err != nil {
		return moderationError(c, "Could not reject item", err)
	}
	return response.Success(c, "Item declined and moved to draft!", nil, nil)
}

// DELETE /api/v1/admin/property/:id?type=K
func (h *Handlers) DeleteProperty(c *fiber.Ctx) error {
	id := c.Params("id")
	kind, err := parseKind(c.Query("type"))
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeleteProperty(c.Context(), middleware.Token(c), id, kind); err != nil {
		return moderationError(c, "Could not delete item", err)
	}
	return response.Success(c, "Item deleted!", nil, nil)
}

func parseKind(raw string) (domain.ListingKind, error) {
	switch strings.ToLower(raw) {
	case "hotel":
		return domain.KindHotel, nil
	case "rent":
		return domain.KindRent, nil
	case "sale", "listing":
		return domain.KindSale, nil
	default:
		return "", errors.New("kind must be one of Sale, Rent or Hotel")
	}
}

func moderationError(c *fiber.Ctx, message string, err error) error {
	if upstream.IsNotFound(err) {
		return response.NotFound(c, "Item not found")
	}
	return upstreamError(c, message, err)
}

func upstreamError(c *fiber.Ctx, message string, err error) error {
	var se *upstream.StatusError
	if errors.As(err, &se) {
		return response.Error(c, message, fiber.StatusBadGateway, fiber.Map{"upstreamStatus": se.StatusCode})
	}
	return response.Error(c, message, fiber.StatusBadGateway, nil)
}
