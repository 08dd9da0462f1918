package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"cribz-gateway/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// SessionConfig for the Redis-backed session cache. The gateway does not mint
// tokens — the upstream does; Redis only caches the frontend's user object
// (old localStorage "user" blob) keyed by a digest of the bearer token.
type SessionConfig struct {
	RedisURL string
}

const (
	tokenLocal = "token"
	userLocal  = "user"

	sessionPrefix = "session:"

	// SessionTTL matches the upstream token lifetime the dashboard assumed.
	SessionTTL = 24 * time.Hour
)

// SessionKey is the Redis key for a bearer token's cached user object.
func SessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return sessionPrefix + hex.EncodeToString(sum[:])
}

// Session returns a middleware that extracts the bearer token and hydrates
// the cached session user, plus the Redis client for reuse elsewhere.
// Requests without a token pass through unauthenticated — the upstream
// decides rejection, same as the browser did.
func Session(cfg SessionConfig) (fiber.Handler, *redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opt)
	return SessionWithClient(rdb), rdb, nil
}

// SessionWithClient is Session with an externally owned Redis client (tests).
func SessionWithClient(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		c.Locals(tokenLocal, token)
		c.Locals(userLocal, nil)

		if token != "" && rdb != nil {
			b, err := rdb.Get(context.Background(), SessionKey(token)).Bytes()
			if err == nil {
				var u domain.SessionUser
				if json.Unmarshal(b, &u) == nil {
					c.Locals(userLocal, &u)
				}
			}
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Token returns the request's bearer token ("" when unauthenticated).
func Token(c *fiber.Ctx) string {
	if t, ok := c.Locals(tokenLocal).(string); ok {
		return t
	}
	return ""
}

// GetUser returns the cached session user, nil when none is attached.
func GetUser(c *fiber.Ctx) *domain.SessionUser {
	if u, ok := c.Locals(userLocal).(*domain.SessionUser); ok {
		return u
	}
	return nil
}
