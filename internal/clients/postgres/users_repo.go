package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"note-weave/internal/clients/dbctx"
	"note-weave/internal/services/auth"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var userColumns = []string{"id", "email", "password_hash", "created_at", "updated_at"}

// UsersRepo implements auth.UsersRepo and notes.UserFinder on Postgres.
type UsersRepo struct {
	db querier
}

// NewUsersRepo creates a new users repository
func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

// Create inserts user. A taken email yields auth.ErrDuplicate.
func (r *UsersRepo) Create(ctx context.Context, user *auth.User) error {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()

	query, args, err := psql.Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if pgCode(err) == pgerrcode.UniqueViolation {
			return auth.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByEmail finds a user by email address
func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findOne(ctx, sq.Eq{"email": email})
}

// FindByID finds a user by id
func (r *UsersRepo) FindByID(ctx context.Context, id string) (*auth.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *UsersRepo) findOne(ctx context.Context, where sq.Eq) (*auth.User, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()

	query, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, err
	}

	var u auth.User
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}
