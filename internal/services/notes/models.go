package notes

import (
	"strings"
	"time"
)

// BlockType is the variant tag of a block.
type BlockType string

// Supported block variants
const (
	BlockText      BlockType = "TEXT"
	BlockChecklist BlockType = "CHECKLIST"
	BlockImage     BlockType = "IMAGE"
	BlockCode      BlockType = "CODE"
)

// Permission is the level carried by a collaborator grant.
type Permission string

// Grant levels. COMMENT is accepted and stored but only confers viewer rights.
const (
	PermissionView    Permission = "VIEW"
	PermissionEdit    Permission = "EDIT"
	PermissionComment Permission = "COMMENT"
)

// ParsePermission normalises user input such as "edit" to a Permission.
func ParsePermission(s string) Permission {
	return Permission(strings.ToUpper(strings.TrimSpace(s)))
}

// Note is a document owned by exactly one user.
// PublicID is non-nil iff IsPublic is true.
type Note struct {
	ID        string    `bson:"_id" json:"id" example:"3f1d2a9e-6b7c-4d11-8a4e-2c9b1e0f5a77"`
	OwnerID   string    `bson:"owner_id" json:"userId" example:"5b0f6c84-8a8c-4c43-9a3e-0f1f4a3c2d11"`
	Title     string    `bson:"title" json:"title" example:"Sprint planning"`
	IsPublic  bool      `bson:"is_public" json:"isPublic" example:"false"`
	PublicID  *string   `bson:"public_id,omitempty" json:"publicId" example:"null"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt" example:"2025-06-01T23:00:26.005703677Z"`
	Blocks    []*Block  `bson:"-" json:"blocks,omitempty"`
}

// Block is an ordered content unit inside a note.
type Block struct {
	ID         string    `bson:"_id" json:"id" example:"9c7e3b1a-1f2d-4e5a-b6c7-d8e9f0a1b2c3"`
	NoteID     string    `bson:"note_id" json:"noteId" example:"3f1d2a9e-6b7c-4d11-8a4e-2c9b1e0f5a77"`
	Type       BlockType `bson:"type" json:"type" example:"TEXT"`
	Content    string    `bson:"content" json:"content" example:"Remember the retro"`
	ParentID   *string   `bson:"parent_id,omitempty" json:"parentId,omitempty"`
	OrderIndex int       `bson:"order_index" json:"orderIndex" example:"0"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt" example:"2025-06-01T23:00:26.005703677Z"`
}

// BlockOrder assigns a new position to one block.
type BlockOrder struct {
	ID         string `bson:"id" json:"id" validate:"required" example:"9c7e3b1a-1f2d-4e5a-b6c7-d8e9f0a1b2c3"`
	OrderIndex int    `bson:"order_index" json:"orderIndex" validate:"gte=0" example:"1"`
}

// Collaborator is a grant letting a non-owner view or edit a note.
// (NoteID, UserID) is unique.
type Collaborator struct {
	ID         string     `bson:"_id" json:"id" example:"b1c2d3e4-f5a6-4b7c-8d9e-0f1a2b3c4d5e"`
	NoteID     string     `bson:"note_id" json:"noteId"`
	UserID     string     `bson:"user_id" json:"userId"`
	Email      string     `bson:"email" json:"email" example:"friend@example.com"`
	Permission Permission `bson:"permission" json:"permission" example:"EDIT"`
	CreatedAt  time.Time  `bson:"created_at" json:"createdAt"`
}

// Collaboration is a note shared with the caller, as seen from the caller's side.
type Collaboration struct {
	NoteID     string     `json:"id"`
	Title      string     `json:"title"`
	OwnerEmail string     `json:"owner"`
	Permission Permission `json:"permission"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// PublicNote is the unauthenticated read-only view of a shared note.
type PublicNote struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Blocks     []*Block  `json:"blocks"`
	OwnerEmail string    `json:"owner"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
