package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devlink/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTicketTestServer(t *testing.T) (*Server, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := &Server{
		config:          &config.Config{JWTSecret: "test-secret"},
		redis:           rdb,
		consumedTickets: make(map[string]consumedTicketEntry),
	}
	return s, rdb
}

func TestAuthRequired_WSTicket(t *testing.T) {
	s, rdb := newTicketTestServer(t)

	app := fiber.New()
	app.Get("/api/ws/test", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"userID":   c.Locals("userID"),
			"wsTicket": c.Locals("wsTicket"),
		})
	})
	app.Get("/api/other", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"userID": c.Locals("userID"),
		})
	})

	ctx := context.Background()

	t.Run("ticket consumed from redis but cached in-process", func(t *testing.T) {
		ticket := "ws-test-ticket-1"
		key := fmt.Sprintf("ws_ticket:%s", ticket)
		require.NoError(t, rdb.Set(ctx, key, "123", time.Minute).Err())

		req := httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket="+ticket, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		// Consumed atomically via GETDEL.
		exists, err := rdb.Exists(ctx, key).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(0), exists)

		// Cached in-process for the multi-pass upgrade handshake.
		s.consumedTicketsMu.Lock()
		_, inCache := s.consumedTickets[ticket]
		s.consumedTicketsMu.Unlock()
		assert.True(t, inCache)

		var body map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, float64(123), body["userID"])
		assert.Equal(t, ticket, body["wsTicket"])
		_ = resp.Body.Close()
	})

	t.Run("second pass uses in-process cache", func(t *testing.T) {
		ticket := "ws-test-ticket-2"
		key := fmt.Sprintf("ws_ticket:%s", ticket)
		require.NoError(t, rdb.Set(ctx, key, "789", time.Minute).Err())

		req := httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket="+ticket, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		req2 := httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket="+ticket, nil)
		resp2, err := app.Test(req2)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp2.StatusCode)

		var body map[string]interface{}
		_ = json.NewDecoder(resp2.Body).Decode(&body)
		assert.Equal(t, float64(789), body["userID"])
		_ = resp2.Body.Close()
	})

	t.Run("invalid ticket rejected on ws path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/ws/test?ticket=no-such-ticket", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("non-ws path with invalid ticket falls back to jwt", func(t *testing.T) {
		// No Authorization header either, so the fallback also fails.
		req := httptest.NewRequest(http.MethodGet, "/api/other?ticket=no-such-ticket", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})
}

func TestAuthRequired_JWT(t *testing.T) {
	s, rdb := newTicketTestServer(t)

	app := fiber.New()
	app.Get("/api/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"userID": c.Locals("userID"),
		})
	})

	t.Run("valid token accepted", func(t *testing.T) {
		token, err := s.generateToken(42, "ada")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, float64(42), body["userID"])
		_ = resp.Body.Close()
	})

	t.Run("missing token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("blacklisted jti rejected", func(t *testing.T) {
		token, err := s.generateToken(42, "ada")
		require.NoError(t, err)

		// Extract the jti by logging out with the token.
		logoutApp := fiber.New()
		logoutApp.Post("/logout", s.Logout)
		logoutReq := httptest.NewRequest(http.MethodPost, "/logout", nil)
		logoutReq.Header.Set("Authorization", "Bearer "+token)
		logoutResp, err := logoutApp.Test(logoutReq)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, logoutResp.StatusCode)
		_ = logoutResp.Body.Close()

		keys, err := rdb.Keys(context.Background(), "blacklist:*").Result()
		require.NoError(t, err)
		require.NotEmpty(t, keys, "logout should blacklist the jti")

		req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
