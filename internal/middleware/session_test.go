package middleware

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"cribz-gateway/internal/domain"
	"cribz-gateway/internal/pkg/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSessionTest(t *testing.T) (*fiber.App, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	app := fiber.New()
	app.Use(SessionWithClient(rdb))
	return app, rdb
}

func TestSession_HydratesCachedUser(t *testing.T) {
	app, rdb := setupSessionTest(t)

	b, _ := json.Marshal(domain.SessionUser{ID: "u1", Fullname: "Ada", Role: constants.RoleAdmin})
	require.NoError(t, rdb.Set(context.Background(), SessionKey("tok-1"), b, SessionTTL).Err())

	app.Get("/whoami", func(c *fiber.Ctx) error {
		u := GetUser(c)
		require.NotNil(t, u)
		assert.Equal(t, "u1", u.ID)
		assert.Equal(t, "tok-1", Token(c))
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestSession_NoTokenPassesThrough(t *testing.T) {
	app, _ := setupSessionTest(t)

	app.Get("/open", func(c *fiber.Ctx) error {
		assert.Empty(t, Token(c))
		assert.Nil(t, GetUser(c))
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestSession_UnknownTokenHasNoUser(t *testing.T) {
	app, _ := setupSessionTest(t)

	app.Get("/open", func(c *fiber.Ctx) error {
		assert.Equal(t, "stranger", Token(c))
		assert.Nil(t, GetUser(c))
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/open", nil)
	req.Header.Set("Authorization", "Bearer stranger")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRequireAuth(t *testing.T) {
	app, _ := setupSessionTest(t)
	app.Get("/secure", RequireAuth(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/secure", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req := httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer tok")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRequireAdmin(t *testing.T) {
	app, rdb := setupSessionTest(t)
	app.Get("/admin", RequireAuth(), RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	agent, _ := json.Marshal(domain.SessionUser{ID: "u1", Role: constants.RoleAgent})
	require.NoError(t, rdb.Set(context.Background(), SessionKey("agent-tok"), agent, 0).Err())
	admin, _ := json.Marshal(domain.SessionUser{ID: "u2", Role: constants.RoleAdmin})
	require.NoError(t, rdb.Set(context.Background(), SessionKey("admin-tok"), admin, 0).Err())

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer agent-tok")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin-tok")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestTracing_PropagatesInboundID(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetTraceID(c))
	})

	inbound := "0e3889b1-52a0-4e1f-9e43-7a2d2f3a9a11"
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", inbound)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, inbound, resp.Header.Get("X-Trace-Id"))

	// Garbage inbound IDs are replaced, never echoed back.
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "not-a-uuid")
	resp, err = app.Test(req)
	require.NoError(t, err)
	got := resp.Header.Get("X-Trace-Id")
	assert.NotEqual(t, "not-a-uuid", got)
	assert.NotEmpty(t, got)
}

func TestBearerToken_Parsing(t *testing.T) {
	app := fiber.New()
	app.Use(SessionWithClient(nil))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(Token(c))
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "bearer lower-ok")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body := make([]byte, 32)
	n, _ := resp.Body.Read(body)
	assert.Equal(t, "lower-ok", string(body[:n]))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	n, _ = resp.Body.Read(body)
	assert.Equal(t, "", string(body[:n]))
}
