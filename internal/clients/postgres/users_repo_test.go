package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"note-weave/internal/services/auth"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func newMockUsersRepo(t *testing.T) (*UsersRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewUsersRepo(db), mock
}

func TestUsersRepo_Create(t *testing.T) {
	repo, mock := newMockUsersRepo(t)
	now := time.Now().UTC()
	user := &auth.User{ID: "u1", Email: "a@example.com", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(`INSERT INTO users \(id,email,password_hash,created_at,updated_at\)`).
		WithArgs("u1", "a@example.com", "hash", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), user))
}

func TestUsersRepo_CreateDuplicate(t *testing.T) {
	repo, mock := newMockUsersRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	err := repo.Create(context.Background(), &auth.User{ID: "u1", Email: "a@example.com"})
	assert.ErrorIs(t, err, auth.ErrDuplicate)
}

func TestUsersRepo_CreateUnexpectedError(t *testing.T) {
	repo, mock := newMockUsersRepo(t)
	boom := errors.New("connection reset")

	mock.ExpectExec("INSERT INTO users").WillReturnError(boom)

	err := repo.Create(context.Background(), &auth.User{ID: "u1"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, auth.ErrDuplicate)
}

func TestUsersRepo_FindByEmail(t *testing.T) {
	repo, mock := newMockUsersRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = \$1`).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u1", "a@example.com", "hash", now, now))

	u, err := repo.FindByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestUsersRepo_FindByIDNotFound(t *testing.T) {
	repo, mock := newMockUsersRepo(t)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
