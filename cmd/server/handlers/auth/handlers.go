package auth

import (
	"context"
	"time"

	"note-weave/cmd/server/handlers/handlerutil"
	"note-weave/internal/logger"
	"note-weave/internal/services/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthService defines the interface for auth service
type AuthService interface {
	SignUp(ctx context.Context, req auth.SignUpRequest) (*auth.AuthResponse, error)
	SignIn(ctx context.Context, req auth.SignInRequest) (*auth.AuthResponse, error)
}

// CookieConfig describes the session cookie the server sets on sign-in.
// The same cookie authenticates REST calls and the WebSocket upgrade.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// Handlers contains the auth HTTP handlers
type Handlers struct {
	authService AuthService
	validator   *validator.Validate
	cookie      CookieConfig
	now         func() time.Time
}

// NewHandlers creates new auth handlers
func NewHandlers(authService AuthService, validator *validator.Validate, cookie CookieConfig) *Handlers {
	return &Handlers{
		authService: authService,
		validator:   validator,
		cookie:      cookie,
		now:         time.Now,
	}
}

// SignUp handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.SignUpRequest true "Sign up request"
// @Success 201 {object} auth.AuthResponse
// @Failure 400 {object} httperr.E
// @Failure 429 {object} httperr.E
// @Router /auth/sign-up [post]
func (h *Handlers) SignUp(c *fiber.Ctx) error {
	var req auth.SignUpRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "SignUp"); err != nil {
		return err
	}

	resp, err := h.authService.SignUp(c.UserContext(), req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "SignUp", "", "")
	}

	h.setSessionCookie(c, resp.Token)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// SignIn handles user authentication
// @Summary Authenticate a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.SignInRequest true "Sign in request"
// @Success 200 {object} auth.AuthResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 429 {object} httperr.E
// @Router /auth/sign-in [post]
func (h *Handlers) SignIn(c *fiber.Ctx) error {
	var req auth.SignInRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "SignIn"); err != nil {
		return err
	}

	resp, err := h.authService.SignIn(c.UserContext(), req)
	if err != nil {
		return handlerutil.HandleServiceError(err, "SignIn", "", "")
	}

	h.setSessionCookie(c, resp.Token)
	return c.JSON(resp)
}

// SignOut clears the session cookie. It needs no valid session so an
// expired cookie can still be dropped.
// @Summary Sign out
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/sign-out [post]
func (h *Handlers) SignOut(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  h.now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	logger.L().Debug("session cookie cleared", "ip", c.IP())
	return c.JSON(fiber.Map{"message": "Successfully signed out"})
}

func (h *Handlers) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  h.now().Add(h.cookie.TTL),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
