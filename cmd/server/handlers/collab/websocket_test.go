package collab

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"note-weave/internal/services/auth"
	"note-weave/internal/services/collab"
	"note-weave/internal/services/notes"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWSUpgradeRejects(t *testing.T) {
	env := newApp(t, testConfig())

	valid := env.token(t, ownerID)
	expired, err := auth.NewTokens(testSecret, -time.Hour).Issue(&auth.User{ID: ownerID, Email: "owner@example.com"})
	require.NoError(t, err)
	foreign, err := auth.NewTokens("another-secret-key-with-32-characters", time.Hour).Issue(&auth.User{ID: ownerID, Email: "owner@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		upgrade bool
		cookie  string
		query   string
		bearer  string
		want    int
	}{
		{name: "plain GET", upgrade: false, cookie: valid, want: 400},
		{name: "missing cookie", upgrade: true, want: 401},
		{name: "garbage cookie", upgrade: true, cookie: "not-a-token", want: 401},
		{name: "expired cookie", upgrade: true, cookie: expired, want: 401},
		{name: "foreign signature", upgrade: true, cookie: foreign, want: 401},
		{name: "query token is not accepted", upgrade: true, query: valid, want: 401},
		{name: "bearer header is not accepted", upgrade: true, bearer: valid, want: 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/ws/notes"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest("GET", target, nil)
			if tt.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
				req.Header.Set("Sec-WebSocket-Version", "13")
				req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
			}
			if tt.cookie != "" {
				req.Header.Set("Cookie", "token="+tt.cookie)
			}
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}

			resp, err := env.app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Zero(t, env.connections(), "rejected upgrades never reach the hub")
		})
	}
}

func TestWSCollaborationRoundTrip(t *testing.T) {
	env := newWSEnv(t, testConfig())

	owner := env.dial(t, ownerID)
	editor := env.dial(t, editorID)

	send(t, owner, collab.EventJoinNote, noteID)
	var members []collab.Presence
	expect(t, owner, notes.EventActiveUsers, &members)
	require.Len(t, members, 1)
	assert.Equal(t, ownerID, members[0].UserID)

	send(t, editor, collab.EventJoinNote, noteID)
	expect(t, editor, notes.EventActiveUsers, &members)
	require.Len(t, members, 2)

	var joined collab.UserPresence
	expect(t, owner, notes.EventUserJoined, &joined)
	assert.Equal(t, editorID, joined.UserID)

	send(t, editor, collab.EventBlockUpdate, notes.UpdateBlockRequest{
		NoteID:  noteID,
		BlockID: "blk-1",
		Type:    notes.BlockText,
		Content: "hello",
	})

	var updated notes.BlockUpdated
	expect(t, owner, notes.EventBlockUpdated, &updated)
	assert.Equal(t, "blk-1", updated.BlockID)
	assert.Equal(t, "hello", updated.Content)
	assert.Equal(t, editorID, updated.UpdatedBy)
	assert.Equal(t, "hello", env.repo.Block("blk-1").Content)

	// The editor's next frame is the reply to its own bad message, so the
	// update above was not echoed back to it.
	require.NoError(t, editor.WriteMessage(gorillaws.TextMessage, []byte("{nope")))
	var failure collab.ErrorPayload
	expect(t, editor, notes.EventError, &failure)
	assert.Equal(t, "Invalid message", failure.Message)
}

func TestWSStrangerCannotJoin(t *testing.T) {
	env := newWSEnv(t, testConfig())

	owner := env.dial(t, ownerID)
	stranger := env.dial(t, strangerID)

	send(t, owner, collab.EventJoinNote, noteID)
	expect(t, owner, notes.EventActiveUsers, nil)

	send(t, stranger, collab.EventJoinNote, noteID)
	var failure collab.ErrorPayload
	expect(t, stranger, notes.EventError, &failure)
	assert.Equal(t, "Note access denied", failure.Message)

	assert.Len(t, env.hub.Presence().MembersOf(noteID), 1)
}

func TestWSDisconnectAnnouncesLeave(t *testing.T) {
	env := newWSEnv(t, testConfig())

	owner := env.dial(t, ownerID)
	editor := env.dial(t, editorID)

	send(t, owner, collab.EventJoinNote, noteID)
	expect(t, owner, notes.EventActiveUsers, nil)
	send(t, editor, collab.EventJoinNote, noteID)
	expect(t, editor, notes.EventActiveUsers, nil)
	expect(t, owner, notes.EventUserJoined, nil)

	require.NoError(t, editor.WriteControl(gorillaws.CloseMessage,
		gorillaws.FormatCloseMessage(gorillaws.CloseNormalClosure, "bye"), time.Now().Add(time.Second)))
	require.NoError(t, editor.Close())

	var left collab.UserPresence
	expect(t, owner, notes.EventUserLeft, &left)
	assert.Equal(t, editorID, left.UserID)

	require.Eventually(t, func() bool { return env.connections() == 1 },
		2*time.Second, 10*time.Millisecond)
	members := env.hub.Presence().MembersOf(noteID)
	require.Len(t, members, 1)
	assert.Equal(t, ownerID, members[0].UserID)
}

func TestWSSessionTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSession = time.Second
	env := newWSEnv(t, cfg)

	conn := env.dial(t, ownerID)

	start := time.Now()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	elapsed := time.Since(start)

	var closeErr *gorillaws.CloseError
	require.True(t, errors.As(err, &closeErr), "expected a close frame, got %v", err)
	assert.Equal(t, WSClosePolicyViolation, closeErr.Code)
	assert.Equal(t, msgSessionTimedOut, closeErr.Text)
	assert.Less(t, elapsed, 4*time.Second, "connection should have been closed promptly")

	require.Eventually(t, func() bool { return env.connections() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestWSReadLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxMessageBytes = 256
	env := newWSEnv(t, cfg)

	conn := env.dial(t, ownerID)
	require.Eventually(t, func() bool { return env.connections() == 1 },
		2*time.Second, 10*time.Millisecond)

	big := `{"event":"block-create","data":{"content":"` + strings.Repeat("x", 1024) + `"}}`
	require.NoError(t, conn.WriteMessage(gorillaws.TextMessage, []byte(big)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "oversized frames end the connection")

	require.Eventually(t, func() bool { return env.connections() == 0 },
		2*time.Second, 10*time.Millisecond)
}
