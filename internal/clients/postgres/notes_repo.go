package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"note-weave/internal/clients/dbctx"
	"note-weave/internal/services/notes"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
)

var (
	noteColumns      = []string{"n.id", "n.owner_id", "n.title", "n.is_public", "n.public_id", "n.created_at", "n.updated_at"}
	noteGrantColumns = append(append([]string{}, noteColumns...), "c.id", "c.permission")
	blockColumns     = []string{"id", "note_id", "type", "content", "parent_id", "order_index", "created_at", "updated_at"}
)

// NotesRepo implements notes.Repository on Postgres. Blocks and grants
// cascade with their note through foreign keys.
type NotesRepo struct {
	db *sql.DB
}

var _ notes.Repository = (*NotesRepo)(nil)

// NewNotesRepo creates a new notes repository
func NewNotesRepo(db *sql.DB) *NotesRepo {
	return &NotesRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*notes.Note, error) {
	var n notes.Note
	if err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.IsPublic, &n.PublicID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func scanBlock(row rowScanner) (*notes.Block, error) {
	var b notes.Block
	if err := row.Scan(&b.ID, &b.NoteID, &b.Type, &b.Content, &b.ParentID, &b.OrderIndex, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// FindNoteForUser implements notes.Repository.
func (r *NotesRepo) FindNoteForUser(ctx context.Context, noteID, userID string) (*notes.Note, error) {
	return r.findWithGrant(ctx, noteID, userID, notes.ViewAllowed)
}

// FindNoteForEditor implements notes.Repository.
func (r *NotesRepo) FindNoteForEditor(ctx context.Context, noteID, userID string) (*notes.Note, error) {
	return r.findWithGrant(ctx, noteID, userID, notes.EditAllowed)
}

// findWithGrant loads the note with the caller's grant, if any, and lets
// allowed decide. Denials look exactly like a missing note.
func (r *NotesRepo) findWithGrant(ctx context.Context, noteID, userID string, allowed func(ownerID, userID string, grant *notes.Collaborator) bool) (*notes.Note, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()

	query, args, err := psql.Select(noteGrantColumns...).
		From("notes n").
		LeftJoin("collaborators c ON c.note_id = n.id AND c.user_id = ?", userID).
		Where(sq.Eq{"n.id": noteID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var (
		n          notes.Note
		grantID    sql.NullString
		permission sql.NullString
	)
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&n.ID, &n.OwnerID, &n.Title, &n.IsPublic, &n.PublicID, &n.CreatedAt, &n.UpdatedAt, &grantID, &permission)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notes.ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select note: %w", err)
	}

	var grant *notes.Collaborator
	if grantID.Valid {
		grant = &notes.Collaborator{
			ID:         grantID.String,
			NoteID:     n.ID,
			UserID:     userID,
			Permission: notes.Permission(permission.String),
		}
	}
	if !allowed(n.OwnerID, userID, grant) {
		return nil, notes.ErrNoteNotFound
	}
	return &n, nil
}

// CreateNote implements notes.Repository.
func (r *NotesRepo) CreateNote(ctx context.Context, n *notes.Note) error {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()

	query, args, err := psql.Insert("notes").
		Columns("id", "owner_id", "title", "is_public", "public_id", "created_at", "updated_at").
		Values(n.ID, n.OwnerID, n.Title, n.IsPublic, n.PublicID, n.CreatedAt, n.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// ListOwnedNotes implements notes.Repository.
func (r *NotesRepo) ListOwnedNotes(ctx context.Context, ownerID string) ([]*notes.Note, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()

	query, args, err := psql.Select(noteColumns...).
		From("notes n").
		Where(sq.Eq{"n.owner_id": ownerID}).
		OrderBy("n.updated_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := []*notes.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UpdateNoteTitle implements notes.Repository.
func (r *NotesRepo) UpdateNoteTitle(ctx context.Context, noteID, title string, at time.Time) (*notes.Note, error) {
	return r.updateNote(ctx, noteID, sq.Eq{"title": title, "updated_at": at})
}

// SetPublic implements notes.Repository.
func (r *NotesRepo) SetPublic(ctx context.Context, noteID string, publicID *string, at time.Time) (*notes.Note, error) {
	return r.updateNote(ctx, noteID, sq.Eq{"public_id": publicID, "is_public": publicID != nil, "updated_at": at})
}

func (r *NotesRepo) updateNote(ctx context.Context, noteID string, set sq.Eq) (*notes.Note, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()

	query, args, err := psql.Update("notes").
		SetMap(set).
		Where(sq.Eq{"id": noteID}).
		Suffix("RETURNING id, owner_id, title, is_public, public_id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	n, err := scanNote(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notes.ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	return n, nil
}

// DeleteNote implements notes.Repository.
func (r *NotesRepo) DeleteNote(ctx context.Context, noteID string) error {
	return r.execOne(ctx, psql.Delete("notes").Where(sq.Eq{"id": noteID}), notes.ErrNoteNotFound)
}

// TouchNote implements notes.Repository.
func (r *NotesRepo) TouchNote(ctx context.Context, noteID string, at time.Time) error {
	return r.execOne(ctx, psql.Update("notes").Set("updated_at", at).Where(sq.Eq{"id": noteID}), notes.ErrNoteNotFound)
}

// execOne runs a write that must hit a row, returning notFound otherwise.
func (r *NotesRepo) execOne(ctx context.Context, b sq.Sqlizer, notFound error) error {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()

	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// FindPublicNote implements notes.Repository.
func (r *NotesRepo) FindPublicNote(ctx context.Context, publicID string) (*notes.PublicNote, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()

	query, args, err := psql.Select("n.id", "n.title", "u.email", "n.created_at", "n.updated_at").
		From("notes n").
		Join("users u ON u.id = n.owner_id").
		Where(sq.Eq{"n.public_id": publicID, "n.is_public": true}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var p notes.PublicNote
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.Title, &p.OwnerEmail, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notes.ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select public note: %w", err)
	}

	p.Blocks, err = r.listBlocks(ctx, r.db, p.ID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListBlocks implements notes.Repository.
func (r *NotesRepo) ListBlocks(ctx context.Context, noteID string) ([]*notes.Block, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()
	return r.listBlocks(ctx, r.db, noteID)
}

func (r *NotesRepo) listBlocks(ctx context.Context, q querier, noteID string) ([]*notes.Block, error) {
	query, args, err := psql.Select(blockColumns...).
		From("blocks").
		Where(sq.Eq{"note_id": noteID}).
		OrderBy("order_index", "created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	out := []*notes.Block{}
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// MaxOrderIndex implements notes.Repository.
func (r *NotesRepo) MaxOrderIndex(ctx context.Context, noteID string) (int, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()

	query, args, err := psql.Select("COALESCE(MAX(order_index), -1)").
		From("blocks").
		Where(sq.Eq{"note_id": noteID}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var idx int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&idx); err != nil {
		return 0, fmt.Errorf("max order index: %w", err)
	}
	return idx, nil
}

// CreateBlock implements notes.Repository.
func (r *NotesRepo) CreateBlock(ctx context.Context, b *notes.Block) error {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()

	query, args, err := psql.Insert("blocks").
		Columns(blockColumns...).
		Values(b.ID, b.NoteID, b.Type, b.Content, b.ParentID, b.OrderIndex, b.CreatedAt, b.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if pgCode(err) == pgerrcode.ForeignKeyViolation {
			return notes.ErrNoteNotFound
		}
		return fmt.Errorf("insert block: %w", err)
	}
	return nil
}

// UpdateBlock implements notes.Repository.
func (r *NotesRepo) UpdateBlock(ctx context.Context, noteID, blockID string, typ notes.BlockType, content string, at time.Time) (*notes.Block, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()

	query, args, err := psql.Update("blocks").
		SetMap(sq.Eq{"type": typ, "content": content, "updated_at": at}).
		Where(sq.Eq{"id": blockID, "note_id": noteID}).
		Suffix("RETURNING id, note_id, type, content, parent_id, order_index, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	b, err := scanBlock(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notes.ErrBlockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update block: %w", err)
	}
	return b, nil
}

// DeleteBlock implements notes.Repository.
func (r *NotesRepo) DeleteBlock(ctx context.Context, noteID, blockID string) error {
	return r.execOne(ctx, psql.Delete("blocks").Where(sq.Eq{"id": blockID, "note_id": noteID}), notes.ErrBlockNotFound)
}

// ReorderBlocks implements notes.Repository. The batch runs in one
// transaction: the note's block rows are locked and checked with
// notes.CheckReorder before any update, so concurrent reorders of one note
// serialize and an id outside the note rolls everything back.
func (r *NotesRepo) ReorderBlocks(ctx context.Context, noteID string, order []notes.BlockOrder, at time.Time) (err error) {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	current, err := lockPositions(ctx, tx, noteID)
	if err != nil {
		return err
	}
	if err := notes.CheckReorder(current, order); err != nil {
		return err
	}

	for _, o := range order {
		query, args, err := psql.Update("blocks").
			SetMap(sq.Eq{"order_index": o.OrderIndex, "updated_at": at}).
			Where(sq.Eq{"id": o.ID, "note_id": noteID}).
			ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("reorder block %s: %w", o.ID, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return notes.ErrBlockNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

// lockPositions reads every block position of the note with FOR UPDATE.
func lockPositions(ctx context.Context, q querier, noteID string) ([]notes.BlockOrder, error) {
	query, args, err := psql.Select("id", "order_index").
		From("blocks").
		Where(sq.Eq{"note_id": noteID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lock block positions: %w", err)
	}
	defer rows.Close()

	var out []notes.BlockOrder
	for rows.Next() {
		var o notes.BlockOrder
		if err := rows.Scan(&o.ID, &o.OrderIndex); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// AddCollaborator implements notes.Repository.
func (r *NotesRepo) AddCollaborator(ctx context.Context, c *notes.Collaborator) error {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()

	query, args, err := psql.Insert("collaborators").
		Columns("id", "note_id", "user_id", "permission", "created_at").
		Values(c.ID, c.NoteID, c.UserID, c.Permission, c.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		switch pgCode(err) {
		case pgerrcode.UniqueViolation:
			return notes.ErrDuplicateCollaborator
		case pgerrcode.ForeignKeyViolation:
			return notes.ErrNoteNotFound
		default:
			return fmt.Errorf("insert collaborator: %w", err)
		}
	}
	return nil
}

// RemoveCollaborator implements notes.Repository.
func (r *NotesRepo) RemoveCollaborator(ctx context.Context, noteID, collaboratorID string) error {
	return r.execOne(ctx,
		psql.Delete("collaborators").Where(sq.Eq{"id": collaboratorID, "note_id": noteID}),
		notes.ErrCollaboratorNotFound)
}

// ListCollaborators implements notes.Repository.
func (r *NotesRepo) ListCollaborators(ctx context.Context, noteID string) ([]*notes.Collaborator, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()

	query, args, err := psql.Select("c.id", "c.note_id", "c.user_id", "u.email", "c.permission", "c.created_at").
		From("collaborators c").
		Join("users u ON u.id = c.user_id").
		Where(sq.Eq{"c.note_id": noteID}).
		OrderBy("c.created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	defer rows.Close()

	out := []*notes.Collaborator{}
	for rows.Next() {
		var c notes.Collaborator
		if err := rows.Scan(&c.ID, &c.NoteID, &c.UserID, &c.Email, &c.Permission, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// ListCollaborations implements notes.Repository.
func (r *NotesRepo) ListCollaborations(ctx context.Context, userID string) ([]*notes.Collaboration, error) {
	ctx, cancel := dbctx.WithTimeout(ctx, dbctx.OpTimeout)
	defer cancel()

	query, args, err := psql.Select("n.id", "n.title", "u.email", "c.permission", "n.created_at", "n.updated_at").
		From("collaborators c").
		Join("notes n ON n.id = c.note_id").
		Join("users u ON u.id = n.owner_id").
		Where(sq.Eq{"c.user_id": userID}).
		OrderBy("n.updated_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list collaborations: %w", err)
	}
	defer rows.Close()

	out := []*notes.Collaboration{}
	for rows.Next() {
		var c notes.Collaboration
		if err := rows.Scan(&c.NoteID, &c.Title, &c.OwnerEmail, &c.Permission, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
