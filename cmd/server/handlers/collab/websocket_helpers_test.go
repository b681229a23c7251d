package collab

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"note-weave/cmd/server/handlers/httperr"
	"note-weave/internal/services/auth"
	"note-weave/internal/services/collab"
	"note-weave/internal/services/notes"
	"note-weave/internal/services/notes/notestest"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret-key-with-32-characters!!"
	noteID     = "note-1"
	ownerID    = "u-owner"
	editorID   = "u-editor"
	strangerID = "u-stranger"
)

// wsEnv is a collaboration server on a real loopback listener backed by
// the in-memory store.
type wsEnv struct {
	app    *fiber.App
	url    string
	tokens *auth.Tokens
	repo   *notestest.Memory
	hub    *collab.Hub
}

func testConfig() Config {
	return Config{
		CookieName:      "token",
		MaxSession:      time.Minute,
		MaxMessageBytes: 1 << 20,
	}
}

// newApp builds the routes without listening, for app.Test based checks.
func newApp(t *testing.T, cfg Config) *wsEnv {
	t.Helper()

	repo := notestest.NewMemory()
	repo.AddUser(ownerID, "owner@example.com")
	repo.AddUser(editorID, "editor@example.com")
	repo.AddUser(strangerID, "stranger@example.com")
	repo.AddNote(noteID, ownerID, "Plan")
	repo.Grant(noteID, editorID, notes.PermissionEdit)
	repo.AddBlock("blk-1", noteID, 0)

	silent := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := collab.NewHub(16, nil)
	svc := notes.NewService(repo, repo, hub, silent)
	tokens := auth.NewTokens(testSecret, time.Hour)

	h := NewWebSocketHandlers(hub, svc.Gate(), svc, tokens, cfg)

	app := fiber.New(fiber.Config{ErrorHandler: httperr.Handler})
	app.Get("/ws/notes", h.WSUpgrade, websocket.New(h.WSNotesStream))

	return &wsEnv{app: app, tokens: tokens, repo: repo, hub: hub}
}

// newWSEnv serves the routes on 127.0.0.1 with an OS-assigned port.
func newWSEnv(t *testing.T, cfg Config) *wsEnv {
	t.Helper()

	env := newApp(t, cfg)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = env.app.Listener(ln) }()
	t.Cleanup(func() { _ = env.app.Shutdown() })

	env.url = "ws://" + ln.Addr().String() + "/ws/notes"
	return env
}

func (e *wsEnv) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := e.tokens.Issue(&auth.User{ID: userID, Email: userID + "@example.com"})
	require.NoError(t, err)
	return tok
}

func (e *wsEnv) dial(t *testing.T, userID string) *gorillaws.Conn {
	t.Helper()

	header := http.Header{}
	header.Set("Cookie", "token="+e.token(t, userID))

	var conn *gorillaws.Conn
	require.Eventually(t, func() bool {
		c, _, err := gorillaws.DefaultDialer.Dial(e.url, header)
		if err != nil {
			return false
		}
		conn = c
		return true
	}, 2*time.Second, 20*time.Millisecond, "server never accepted the connection")

	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func (e *wsEnv) connections() int {
	n, _ := e.hub.Stats()
	return n
}

func send(t *testing.T, conn *gorillaws.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(collab.Envelope{Event: event, Data: raw}))
}

func read(t *testing.T, conn *gorillaws.Conn) collab.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	env, err := collab.Decode(frame)
	require.NoError(t, err)
	return env
}

// expect reads the next frame and requires it to be event.
func expect(t *testing.T, conn *gorillaws.Conn, event string, dst any) {
	t.Helper()
	env := read(t, conn)
	require.Equal(t, event, env.Event, "unexpected frame: %s", string(env.Data))
	if dst != nil {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
}
