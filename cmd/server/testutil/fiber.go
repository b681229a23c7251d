package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"note-weave/cmd/server/ctxkeys"
	"note-weave/cmd/server/handlers/httperr"
	"note-weave/internal/config"
	"note-weave/internal/logger"
	"note-weave/internal/services/auth"
	"note-weave/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// TestSecret is long enough for HS256.
const TestSecret = "test-secret-key-with-32-characters!!"

// CookieName is the session cookie used by tests.
const CookieName = "token"

// CreateTestApp creates a basic Fiber app for testing with common configuration
func CreateTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{LogLevel: "debug", LogFormat: "text"}
	_, err := logger.Init(cfg)
	require.NoError(t, err)

	return fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
	})
}

// CreateTestValidator creates a validator with the project's custom rules registered
func CreateTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	return utils.NewValidator()
}

// IssueTestToken signs a session token for userID.
func IssueTestToken(t *testing.T, userID, email string, ttl time.Duration) string {
	t.Helper()
	token, err := auth.NewTokens(TestSecret, ttl).Issue(&auth.User{ID: userID, Email: email})
	require.NoError(t, err)
	return token
}

// FakeAuth binds a fixed identity, standing in for the JWT middleware.
func FakeAuth(id auth.Identity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(ctxkeys.IdentityKey, id)
		return c.Next()
	}
}

// CreateJSONRequest creates an HTTP request with JSON body
func CreateJSONRequest(method, url string, body any) *http.Request {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// CreateAuthenticatedRequest creates an HTTP request carrying the session cookie
func CreateAuthenticatedRequest(method, url string, body any, token string) *http.Request {
	req := CreateJSONRequest(method, url, body)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	return req
}

// DecodeJSON reads a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

// SessionCookie returns the session cookie set by resp, or nil.
func SessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}
