package main

import (
	"time"

	"note-weave/cmd/server/handlers"
	"note-weave/cmd/server/handlers/auth"
	collabHandlers "note-weave/cmd/server/handlers/collab"
	"note-weave/cmd/server/handlers/httperr"
	notesHandlers "note-weave/cmd/server/handlers/notes"
	"note-weave/cmd/server/middlewares"
	"note-weave/internal/config"
	"note-weave/internal/logger"
	authServices "note-weave/internal/services/auth"
	"note-weave/internal/services/collab"
	notesServices "note-weave/internal/services/notes"
	"note-weave/internal/utils"

	_ "note-weave/docs" // Load swagger docs

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	RateLimitExpiration = 1 * time.Minute
)

// routerDeps carries what setupRouter cannot build from config alone.
type routerDeps struct {
	cfg   config.Config
	users authServices.UsersRepo
	notes notesServices.Repository
	ping  handlers.PingFunc
	// limiterStorage shares sign-in budgets across replicas; nil keeps them in memory.
	limiterStorage fiber.Storage
	registry       *prometheus.Registry
}

// setupRouter configures and returns a Fiber app with all routes, plus the
// hub that fans note events out to live connections.
func setupRouter(deps routerDeps) (*fiber.App, *collab.Hub) {
	cfg := deps.cfg
	if deps.registry == nil {
		deps.registry = prometheus.NewRegistry()
	}

	v := utils.NewValidator()

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true, // make Fiber copy all request-derived strings
	})

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Content-Type",
		AllowCredentials: true,
	}))

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app, deps.registry)
	}

	// Health check endpoint, outside versioned API to appease scanners and to avoid logging
	app.Get("/healthz", handlers.Healthz(deps.ping))

	app.Get("/docs/*", swagger.HandlerDefault)

	hub := collab.NewHub(cfg.WSOutboxBuffer, collab.NewMetrics(deps.registry))
	tokens := authServices.NewTokens(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)

	authSvc := authServices.NewService(deps.users, tokens, cfg.BcryptCost, logger.L())
	authH := auth.NewHandlers(authSvc, v, auth.CookieConfig{
		Name:   cfg.AuthCookieName,
		Secure: cfg.AuthCookieSecure,
		TTL:    tokens.TTL(),
	})

	notesSvc := notesServices.NewService(deps.notes, deps.users, hub, logger.L(),
		notesServices.WithPublicBaseURL(cfg.PublicBaseURL))
	notesH := notesHandlers.NewHandlers(notesSvc, v)

	// WebSocket route
	wsHandlers := collabHandlers.NewWebSocketHandlers(hub, notesSvc.Gate(), notesSvc, tokens, collabHandlers.Config{
		CookieName:      cfg.AuthCookieName,
		MaxSession:      time.Duration(cfg.WSMaxSessionSec) * time.Second,
		MaxMessageBytes: int64(cfg.WSMaxMessageBytes),
	})
	app.Get("/ws/notes", wsHandlers.WSUpgrade, websocket.New(wsHandlers.WSNotesStream))

	var v1 fiber.Router
	if cfg.RequestLoggingEnabled {
		v1 = app.Group("/api/v1", fiberlogger.New())
		logger.L().Info("request logging enabled")
	} else {
		v1 = app.Group("/api/v1")
		logger.L().Info("request logging disabled")
	}

	jwtMiddleware := middlewares.JWT(tokens, cfg.AuthCookieName)
	limiterMW := middlewares.BuildRateLimiter(cfg.SignInRatePerMin, RateLimitExpiration, deps.limiterStorage)

	authGrp := v1.Group("/auth", limiterMW)
	authGrp.Post("/sign-up", authH.SignUp)
	authGrp.Post("/sign-in", authH.SignIn)
	authGrp.Post("/sign-out", authH.SignOut)

	v1.Get("/me", jwtMiddleware, handlers.Me(authSvc))

	notesH.Routes(v1, jwtMiddleware)
	v1.Get("/public/:publicId", notesH.GetPublic)

	return app, hub
}
