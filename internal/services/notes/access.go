package notes

import (
	"context"
	"errors"
)

// ViewAllowed reports whether userID may read a note owned by ownerID,
// given the user's grant on it (nil when there is none).
func ViewAllowed(ownerID, userID string, grant *Collaborator) bool {
	if ownerID == userID {
		return true
	}
	return grant != nil && grant.UserID == userID
}

// EditAllowed reports whether userID may mutate a note owned by ownerID.
// Only EDIT grants qualify; VIEW and COMMENT do not.
func EditAllowed(ownerID, userID string, grant *Collaborator) bool {
	if ownerID == userID {
		return true
	}
	return grant != nil && grant.UserID == userID && grant.Permission == PermissionEdit
}

// Gate answers capability questions against the store.
type Gate struct {
	repo Repository
}

// NewGate wraps repo.
func NewGate(repo Repository) Gate {
	return Gate{repo: repo}
}

// CanView is true when userID owns noteID or holds any grant on it.
func (g Gate) CanView(ctx context.Context, userID, noteID string) (bool, error) {
	return exists(g.repo.FindNoteForUser(ctx, noteID, userID))
}

// CanEdit is true when userID owns noteID or holds an EDIT grant on it.
func (g Gate) CanEdit(ctx context.Context, userID, noteID string) (bool, error) {
	return exists(g.repo.FindNoteForEditor(ctx, noteID, userID))
}

func exists(n *Note, err error) (bool, error) {
	switch {
	case errors.Is(err, ErrNoteNotFound):
		return false, nil
	case err != nil:
		return false, err
	default:
		return n != nil, nil
	}
}
