package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"note-weave/cmd/server/testutil"
	"note-weave/internal/config"
	authServices "note-weave/internal/services/auth"
	notesServices "note-weave/internal/services/notes"
	"note-weave/internal/services/notes/notestest"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		AppPort:             8080,
		LogLevel:            "debug",
		LogFormat:           "text",
		RouteMetricsEnabled: true,
		CORSOrigins:         "http://localhost:5173",
		PublicBaseURL:       "http://localhost:5173",
		StoreDriver:         config.StoreDriverPostgres,
		BcryptCost:          4,
		SignInRatePerMin:    100,
		JWTSecret:           testutil.TestSecret,
		JWTAlgorithm:        "HS256",
		AccessTokenMinutes:  60,
		AuthCookieName:      testutil.CookieName,
		WSMaxSessionSec:     60,
		WSOutboxBuffer:      16,
		WSMaxMessageBytes:   1 << 16,
	}
}

type routerEnv struct {
	app  *fiber.App
	repo *notestest.Memory
}

func newRouterEnv(t *testing.T, cfg config.Config, ping func(context.Context) error) *routerEnv {
	t.Helper()
	testutil.CreateTestApp(t) // initialises the logger

	repo := notestest.NewMemory()
	app, _ := setupRouter(routerDeps{
		cfg:      cfg,
		users:    repo,
		notes:    repo,
		ping:     ping,
		registry: prometheus.NewRegistry(),
	})
	return &routerEnv{app: app, repo: repo}
}

func (e *routerEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRequestLoggingConfig(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected bool
	}{
		{
			name:     "request logging disabled",
			envValue: "false",
			expected: false,
		},
		{
			name:     "request logging enabled",
			envValue: "true",
			expected: true,
		},
		{
			name:     "default value (no env var)",
			envValue: "",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				_ = os.Unsetenv("REQUEST_LOGGING_ENABLED")
				_ = os.Unsetenv("DEV_MODE")
				config.ResetCache()
			}()

			if tt.envValue != "" {
				err := os.Setenv("REQUEST_LOGGING_ENABLED", tt.envValue)
				require.NoError(t, err)
			}

			// Set DEV_MODE=true to bypass JWT_SECRET requirement for tests
			err := os.Setenv("DEV_MODE", "true")
			require.NoError(t, err)

			config.ResetCache()

			cfg, err := config.Load()
			require.NoError(t, err)

			assert.Equal(t, tt.expected, cfg.RequestLoggingEnabled,
				"RequestLoggingEnabled should be %v when REQUEST_LOGGING_ENABLED=%s",
				tt.expected, tt.envValue)
		})
	}
}

func TestRouterEndToEnd(t *testing.T) {
	env := newRouterEnv(t, testConfig(), func(context.Context) error { return nil })

	resp := env.do(t, testutil.CreateJSONRequest("POST", "/api/v1/auth/sign-up",
		map[string]string{"email": "Ada@Example.com", "password": "Password123"}))
	require.Equal(t, 201, resp.StatusCode)
	cookie := testutil.SessionCookie(resp)
	require.NotNil(t, cookie)
	token := cookie.Value

	resp = env.do(t, testutil.CreateAuthenticatedRequest("GET", "/api/v1/me", nil, token))
	require.Equal(t, 200, resp.StatusCode)
	var me authServices.Identity
	testutil.DecodeJSON(t, resp, &me)
	assert.Equal(t, "ada@example.com", me.Email)

	resp = env.do(t, testutil.CreateAuthenticatedRequest("POST", "/api/v1/notes",
		map[string]string{"title": "Roadmap"}, token))
	require.Equal(t, 201, resp.StatusCode)
	var note notesServices.Note
	testutil.DecodeJSON(t, resp, &note)
	assert.Equal(t, me.UserID, note.OwnerID)

	resp = env.do(t, testutil.CreateAuthenticatedRequest("POST", "/api/v1/notes/"+note.ID+"/blocks",
		map[string]string{"type": "TEXT", "content": "ship it"}, token))
	require.Equal(t, 201, resp.StatusCode)

	resp = env.do(t, testutil.CreateAuthenticatedRequest("PATCH", "/api/v1/notes/"+note.ID+"/public",
		map[string]bool{"isPublic": true}, token))
	require.Equal(t, 200, resp.StatusCode)
	var share notesServices.ShareResponse
	testutil.DecodeJSON(t, resp, &share)
	require.NotNil(t, share.PublicID)
	assert.Equal(t, "http://localhost:5173/public/"+*share.PublicID, *share.PublicLink)

	resp = env.do(t, testutil.CreateJSONRequest("GET", "/api/v1/public/"+*share.PublicID, nil))
	require.Equal(t, 200, resp.StatusCode, "public notes need no session")
	var public notesServices.PublicNote
	testutil.DecodeJSON(t, resp, &public)
	assert.Equal(t, "ada@example.com", public.OwnerEmail)
	require.Len(t, public.Blocks, 1)
	assert.Equal(t, "ship it", public.Blocks[0].Content)

	resp = env.do(t, testutil.CreateAuthenticatedRequest("POST", "/api/v1/auth/sign-out", nil, token))
	require.Equal(t, 200, resp.StatusCode)
	cleared := testutil.SessionCookie(resp)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestRouterHealthz(t *testing.T) {
	up := newRouterEnv(t, testConfig(), func(context.Context) error { return nil })
	assert.Equal(t, 200, up.do(t, testutil.CreateJSONRequest("GET", "/healthz", nil)).StatusCode)

	down := newRouterEnv(t, testConfig(), func(context.Context) error { return errors.New("no route to host") })
	assert.Equal(t, 500, down.do(t, testutil.CreateJSONRequest("GET", "/healthz", nil)).StatusCode)
}

func TestRouterMetrics(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		env := newRouterEnv(t, testConfig(), nil)
		env.do(t, testutil.CreateJSONRequest("GET", "/api/v1/notes", nil))

		resp := env.do(t, testutil.CreateJSONRequest("GET", "/metrics", nil))
		require.Equal(t, 200, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "http_requests_total")
		assert.Contains(t, string(body), "collab_connections")
	})

	t.Run("disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.RouteMetricsEnabled = false
		env := newRouterEnv(t, cfg, nil)
		assert.Equal(t, 404, env.do(t, testutil.CreateJSONRequest("GET", "/metrics", nil)).StatusCode)
	})
}

func TestRouterWebSocketRequiresUpgrade(t *testing.T) {
	env := newRouterEnv(t, testConfig(), nil)
	token := testutil.IssueTestToken(t, "u-1", "a@example.com", time.Hour)

	resp := env.do(t, testutil.CreateAuthenticatedRequest("GET", "/ws/notes", nil, token))
	assert.Equal(t, 400, resp.StatusCode)
}
