package notes

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Server to client event names.
const (
	EventActiveUsers     = "active-users"
	EventUserJoined      = "user-joined"
	EventUserLeft        = "user-left"
	EventBlockCreated    = "block-created"
	EventBlockUpdated    = "block-updated"
	EventBlockDeleted    = "block-deleted"
	EventBlocksReordered = "blocks-reordered"
	EventError           = "error"
)

// NoteEvent is addressed to every connection in the note's room except Except.
// A zero Except reaches the whole room.
type NoteEvent struct {
	NoteID  string
	Name    string
	Payload any
	Except  ulid.ULID
}

// BlockCreated is the block-created payload.
type BlockCreated struct {
	Block     *Block    `json:"block"`
	CreatedBy string    `json:"createdBy"`
	Timestamp time.Time `json:"timestamp"`
}

// BlockUpdated is the block-updated payload.
type BlockUpdated struct {
	BlockID   string    `json:"blockId"`
	Content   string    `json:"content"`
	Type      BlockType `json:"type"`
	UpdatedBy string    `json:"updatedBy"`
	Timestamp time.Time `json:"timestamp"`
}

// BlockDeleted is the block-deleted payload.
type BlockDeleted struct {
	BlockID   string    `json:"blockId"`
	DeletedBy string    `json:"deletedBy"`
	Timestamp time.Time `json:"timestamp"`
}

// BlocksReordered is the blocks-reordered payload.
type BlocksReordered struct {
	Blocks    []BlockOrder `json:"blocks"`
	UpdatedBy string       `json:"updatedBy"`
	Timestamp time.Time    `json:"timestamp"`
}
