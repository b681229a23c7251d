package auth

import (
	"time"
)

// User represents a user in the system
type User struct {
	ID           string    `bson:"_id" json:"id" example:"5b0f6c84-8a8c-4c43-9a3e-0f1f4a3c2d11"`
	Email        string    `bson:"email" json:"email" example:"test@example.com"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt" example:"2025-06-01T23:00:26.005703677Z"`
}

// Identity is what a verified credential proves about its bearer.
// It is bound once per request or live connection and never changes.
type Identity struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
}
