// Package docs NoteWeave API
//
// @title  NoteWeave API
// @version 0.1.0
// @description Collaborative block notes with live WebSocket updates.
// @host      localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token
// @description Session cookie set by sign-up and sign-in.
package docs

import (
	_ "note-weave/cmd/server/handlers/httperr"
	_ "note-weave/internal/services/auth"
	_ "note-weave/internal/services/notes"
)
