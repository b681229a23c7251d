package collab

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"note-weave/cmd/server/ctxkeys"
	"note-weave/cmd/server/handlers/httperr"
	"note-weave/internal/logger"
	"note-weave/internal/services/auth"
	"note-weave/internal/services/collab"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
)

const (
	// WSClosePolicyViolation represents WebSocket close code for policy violation
	WSClosePolicyViolation = 1008

	wsWriteTimeout     = 10 * time.Second
	wsPingInterval     = 25 * time.Second
	wsControlTimeout   = 5 * time.Second
	msgSessionTimedOut = "session timeout"
)

// TokenVerifier checks a session credential and returns the bound identity.
type TokenVerifier interface {
	Verify(raw string) (auth.Identity, error)
}

// Config tunes the live connection transport.
type Config struct {
	CookieName      string
	MaxSession      time.Duration
	MaxMessageBytes int64
	PingInterval    time.Duration
}

// WebSocketHandlers upgrades authenticated requests and runs one
// collaboration session per connection.
type WebSocketHandlers struct {
	hub    *collab.Hub
	gate   collab.Authorizer
	blocks collab.Mutator
	tokens TokenVerifier
	cfg    Config
}

// NewWebSocketHandlers creates new WebSocket handlers
func NewWebSocketHandlers(hub *collab.Hub, gate collab.Authorizer, blocks collab.Mutator, tokens TokenVerifier, cfg Config) *WebSocketHandlers {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = wsPingInterval
	}
	return &WebSocketHandlers{
		hub:    hub,
		gate:   gate,
		blocks: blocks,
		tokens: tokens,
		cfg:    cfg,
	}
}

// WSUpgrade authenticates the upgrade request from the session cookie.
// Failures are answered with plain HTTP errors and no hub state is created.
func (h *WebSocketHandlers) WSUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		logger.L().Warn("websocket upgrade required", "handler", "WSUpgrade", "path", c.Path())
		return httperr.Fail(httperr.ErrUpgradeRequired)
	}

	identity, err := h.tokens.Verify(c.Cookies(h.cfg.CookieName))
	if err != nil {
		msg := "Invalid token"
		if errors.Is(err, auth.ErrMissingToken) {
			msg = "Missing token"
		}
		logger.L().Info("websocket upgrade rejected", "handler", "WSUpgrade", "ip", c.IP(), "reason", msg)
		return httperr.Fail(httperr.E{Status: fiber.StatusUnauthorized, Message: msg})
	}

	logger.L().Info("WebSocket upgrade attempt", "ip", c.IP(), "user_id", identity.UserID)

	c.Locals(ctxkeys.IdentityKey, identity)
	c.Locals(ctxkeys.ParentCtxKey, c.UserContext())
	return c.Next()
}

// WSNotesStream runs the collaboration session for one connection: a
// sequential reader that dispatches frames, one writer draining the
// outbox, keep-alive pings and the hard session deadline.
func (h *WebSocketHandlers) WSNotesStream(c *websocket.Conn) {
	identity, parentCtx, err := connectionState(c)
	if err != nil {
		logger.L().Error("websocket without upgrade state", "error", err)
		closeConn(c, nil)
		return
	}

	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	connID := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader)
	log := logger.L().With("conn_id", connID.String(), "user_id", identity.UserID)

	sub, unregister := h.hub.Register(connID, identity.UserID)
	defer unregister()

	session := collab.NewSession(connID, identity, h.hub, h.gate, h.blocks, logger.L())
	defer session.Close(context.WithoutCancel(ctx))

	log.Info("WebSocket connection established")

	c.SetReadLimit(h.cfg.MaxMessageBytes)

	timer := time.AfterFunc(h.cfg.MaxSession, func() {
		log.Info("WebSocket session timeout")
		writeClose(c, WSClosePolicyViolation, msgSessionTimedOut, log)
		cancel()
		closeConn(c, log)
	})
	defer timer.Stop()

	go h.keepAlive(ctx, c, log)
	go h.writeLoop(ctx, c, sub, log)

	h.readLoop(ctx, c, session, log)

	log.Info("WebSocket connection closed")
}

func (h *WebSocketHandlers) readLoop(ctx context.Context, c *websocket.Conn, session *collab.Session, log *slog.Logger) {
	for {
		messageType, frame, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn("WebSocket read failed", "error", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		session.Handle(ctx, frame)
	}
}

// writeLoop is the only goroutine that writes data frames to c.
func (h *WebSocketHandlers) writeLoop(ctx context.Context, c *websocket.Conn, sub *collab.Subscriber, log *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic in WebSocket sender", "error", r)
		}
	}()

	for {
		select {
		case frame, ok := <-sub.Ch:
			if !ok {
				return
			}
			if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
				log.Error("failed to set write deadline", "error", err)
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Warn("failed to write WebSocket message", "error", err)
				return
			}
		case <-sub.Done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *WebSocketHandlers) keepAlive(ctx context.Context, c *websocket.Conn, log *slog.Logger) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsControlTimeout)); err != nil {
				log.Debug("failed to write ping message", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func connectionState(c *websocket.Conn) (auth.Identity, context.Context, error) {
	identity, ok := c.Locals(ctxkeys.IdentityKey).(auth.Identity)
	if !ok {
		return auth.Identity{}, nil, fmt.Errorf("%s not found", ctxkeys.IdentityKey)
	}
	parentCtx, ok := c.Locals(ctxkeys.ParentCtxKey).(context.Context)
	if !ok || parentCtx == nil {
		parentCtx = context.Background()
	}
	return identity, parentCtx, nil
}

func writeClose(c *websocket.Conn, code int, reason string, log *slog.Logger) {
	msg := websocket.FormatCloseMessage(code, reason)
	if err := c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsControlTimeout)); err != nil {
		log.Warn("failed to send close message", "error", err)
	}
}

func closeConn(c *websocket.Conn, log *slog.Logger) {
	if err := c.Close(); err != nil && log != nil {
		log.Debug("failed to close WebSocket connection", "error", err)
	}
}
