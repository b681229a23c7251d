package notestest

import (
	"context"
	"sync"

	"note-weave/internal/services/notes"
)

// Recorder is a notes.Bus that keeps every event it is given.
type Recorder struct {
	mu     sync.Mutex
	events []notes.NoteEvent
}

// Broadcast implements notes.Bus.
func (r *Recorder) Broadcast(_ context.Context, ev notes.NoteEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of everything broadcast so far.
func (r *Recorder) Events() []notes.NoteEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notes.NoteEvent(nil), r.events...)
}
