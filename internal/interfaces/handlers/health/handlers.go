package health

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	healthsvc "cribz-gateway/internal/application/health"
	"cribz-gateway/internal/middleware"
	"cribz-gateway/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// Handlers holds dependencies for health endpoints.
type Handlers struct {
	Rdb          *redis.Client
	DB           healthsvc.DBPinger
	Upstream     healthsvc.UpstreamPinger
	AdminKeyHash string // bcrypt hash of the reset key
}

func (h *Handlers) authorized(key string) bool {
	if key == "" || h.AdminKeyHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(h.AdminKeyHash), []byte(key)) == nil
}

// Reset clears traffic stats in Redis. Requires query key matching the
// configured bcrypt-hashed admin key.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	if !h.authorized(c.Query("key")) {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	ctx := context.Background()
	keys := []string{
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq,
		middleware.KeyErrorLog,
	}
	if err := h.Rdb.Del(ctx, keys...).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	if err := h.Rdb.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(time.Now().UnixMilli(), 10), 0).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}

// JSON returns health data: service status, runtime, traffic, dependencies.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := healthsvc.Collect(context.Background(), h.Rdb, h.DB, h.Upstream)
	return c.JSON(map[string]interface{}{
		"service":      "cribz-gateway",
		"status":       result.Status,
		"runtime":      result.Runtime,
		"traffic":      result.Traffic,
		"dependencies": result.Dependencies,
	})
}

// Errors returns the most recent 5xx log entries from Redis.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	entries, err := h.Rdb.LRange(context.Background(), middleware.KeyErrorLog, 0, 49).Result()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON([]interface{}{})
	}
	out := make([]map[string]interface{}, 0, len(entries))
	for _, s := range entries {
		var m map[string]interface{}
		if _ = json.Unmarshal([]byte(s), &m); m != nil {
			out = append(out, m)
		}
	}
	return c.JSON(out)
}
