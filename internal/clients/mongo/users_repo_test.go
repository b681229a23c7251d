package mongo

import (
	"context"
	"testing"
	"time"

	"note-weave/internal/services/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(id, email string) *auth.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &auth.User{ID: id, Email: email, PasswordHash: "hashedpassword", CreatedAt: now, UpdatedAt: now}
}

func TestUsersRepoCreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	repo, err := NewUsersRepo(ctx, db)
	require.NoError(t, err)

	user := testUser("u1", "test@example.com")
	require.NoError(t, repo.Create(ctx, user))
	assert.ErrorIs(t, repo.Create(ctx, testUser("u2", "test@example.com")), auth.ErrDuplicate)

	byEmail, err := repo.FindByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)
	assert.Equal(t, user.PasswordHash, byEmail.PasswordHash)

	byID, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
}

func TestUsersRepoNotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	repo, err := NewUsersRepo(ctx, db)
	require.NoError(t, err)

	_, err = repo.FindByEmail(ctx, "nonexistent@example.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
