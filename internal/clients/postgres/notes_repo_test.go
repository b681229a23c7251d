package postgres

import (
	"context"
	"testing"
	"time"

	"note-weave/internal/services/notes"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var grantRowColumns = []string{"id", "owner_id", "title", "is_public", "public_id", "created_at", "updated_at", "grant_id", "permission"}

func newMockNotesRepo(t *testing.T) (*NotesRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewNotesRepo(db), mock
}

func TestNotesRepo_FindNoteForUser(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name       string
		userID     string
		grantID    any
		permission any
		editor     bool
		wantErr    error
	}{
		{name: "owner views", userID: "owner"},
		{name: "owner edits", userID: "owner", editor: true},
		{name: "viewer views", userID: "v", grantID: "g1", permission: "VIEW"},
		{name: "viewer cannot edit", userID: "v", grantID: "g1", permission: "VIEW", editor: true, wantErr: notes.ErrNoteNotFound},
		{name: "commenter cannot edit", userID: "c", grantID: "g2", permission: "COMMENT", editor: true, wantErr: notes.ErrNoteNotFound},
		{name: "editor edits", userID: "e", grantID: "g3", permission: "EDIT", editor: true},
		{name: "stranger", userID: "x", wantErr: notes.ErrNoteNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockNotesRepo(t)

			mock.ExpectQuery(`SELECT (.+) FROM notes n LEFT JOIN collaborators c ON c.note_id = n.id AND c.user_id = \$1 WHERE n.id = \$2`).
				WithArgs(tt.userID, "n1").
				WillReturnRows(sqlmock.NewRows(grantRowColumns).
					AddRow("n1", "owner", "Title", false, nil, now, now, tt.grantID, tt.permission))

			var (
				n   *notes.Note
				err error
			)
			if tt.editor {
				n, err = repo.FindNoteForEditor(context.Background(), "n1", tt.userID)
			} else {
				n, err = repo.FindNoteForUser(context.Background(), "n1", tt.userID)
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, n)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "n1", n.ID)
			assert.Nil(t, n.PublicID)
		})
	}
}

func TestNotesRepo_FindNoteMissing(t *testing.T) {
	repo, mock := newMockNotesRepo(t)

	mock.ExpectQuery("FROM notes n").WillReturnRows(sqlmock.NewRows(grantRowColumns))

	_, err := repo.FindNoteForUser(context.Background(), "nope", "owner")
	assert.ErrorIs(t, err, notes.ErrNoteNotFound)
}

func TestNotesRepo_DeleteNoteNotFound(t *testing.T) {
	repo, mock := newMockNotesRepo(t)

	mock.ExpectExec(`DELETE FROM notes WHERE id = \$1`).
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.DeleteNote(context.Background(), "n1"), notes.ErrNoteNotFound)
}

func TestNotesRepo_MaxOrderIndex(t *testing.T) {
	repo, mock := newMockNotesRepo(t)

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(order_index\), -1\) FROM blocks WHERE note_id = \$1`).
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(-1))

	idx, err := repo.MaxOrderIndex(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
}

func TestNotesRepo_UpdateBlockScopedToNote(t *testing.T) {
	repo, mock := newMockNotesRepo(t)
	at := time.Now().UTC()

	mock.ExpectQuery(`UPDATE blocks SET content = \$1, type = \$2, updated_at = \$3 WHERE id = \$4 AND note_id = \$5 RETURNING`).
		WithArgs("hello", notes.BlockText, at, "b1", "other-note").
		WillReturnRows(sqlmock.NewRows(blockColumns))

	_, err := repo.UpdateBlock(context.Background(), "other-note", "b1", notes.BlockText, "hello", at)
	assert.ErrorIs(t, err, notes.ErrBlockNotFound)
}

const lockPositionsSQL = `SELECT id, order_index FROM blocks WHERE note_id = \$1 FOR UPDATE`

func expectPositions(mock sqlmock.Sqlmock, noteID string, rows ...notes.BlockOrder) {
	out := sqlmock.NewRows([]string{"id", "order_index"})
	for _, o := range rows {
		out.AddRow(o.ID, o.OrderIndex)
	}
	mock.ExpectQuery(lockPositionsSQL).WithArgs(noteID).WillReturnRows(out)
}

func TestNotesRepo_ReorderBlocksCommits(t *testing.T) {
	repo, mock := newMockNotesRepo(t)
	at := time.Now().UTC()

	mock.ExpectBegin()
	expectPositions(mock, "n1", notes.BlockOrder{ID: "b1", OrderIndex: 0}, notes.BlockOrder{ID: "b2", OrderIndex: 1})
	mock.ExpectExec(`UPDATE blocks SET order_index = \$1, updated_at = \$2 WHERE id = \$3 AND note_id = \$4`).
		WithArgs(1, at, "b1", "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE blocks SET order_index`).
		WithArgs(0, at, "b2", "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ReorderBlocks(context.Background(), "n1", []notes.BlockOrder{
		{ID: "b1", OrderIndex: 1},
		{ID: "b2", OrderIndex: 0},
	}, at)
	require.NoError(t, err)
}

func TestNotesRepo_ReorderBlocksRejectedBeforeWrite(t *testing.T) {
	current := []notes.BlockOrder{{ID: "b1", OrderIndex: 0}, {ID: "b2", OrderIndex: 1}, {ID: "b3", OrderIndex: 2}}

	tests := []struct {
		name    string
		order   []notes.BlockOrder
		wantErr error
	}{
		{
			name:    "foreign block",
			order:   []notes.BlockOrder{{ID: "b1", OrderIndex: 1}, {ID: "elsewhere", OrderIndex: 0}},
			wantErr: notes.ErrBlockNotFound,
		},
		{
			name:    "index held by a block outside the batch",
			order:   []notes.BlockOrder{{ID: "b1", OrderIndex: 2}},
			wantErr: notes.ErrOrderIndexTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockNotesRepo(t)

			mock.ExpectBegin()
			expectPositions(mock, "n1", current...)
			mock.ExpectRollback()

			err := repo.ReorderBlocks(context.Background(), "n1", tt.order, time.Now().UTC())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNotesRepo_ReorderBlocksRollsBackOnLostRow(t *testing.T) {
	repo, mock := newMockNotesRepo(t)
	at := time.Now().UTC()

	mock.ExpectBegin()
	expectPositions(mock, "n1", notes.BlockOrder{ID: "b1", OrderIndex: 0}, notes.BlockOrder{ID: "b2", OrderIndex: 1})
	mock.ExpectExec(`UPDATE blocks SET order_index`).
		WithArgs(1, at, "b1", "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE blocks SET order_index`).
		WithArgs(0, at, "b2", "n1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ReorderBlocks(context.Background(), "n1", []notes.BlockOrder{
		{ID: "b1", OrderIndex: 1},
		{ID: "b2", OrderIndex: 0},
	}, at)
	assert.ErrorIs(t, err, notes.ErrBlockNotFound)
}

func TestNotesRepo_AddCollaborator(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{name: "inserted"},
		{name: "duplicate grant", dbErr: pgError(pgerrcode.UniqueViolation), wantErr: notes.ErrDuplicateCollaborator},
		{name: "note vanished", dbErr: pgError(pgerrcode.ForeignKeyViolation), wantErr: notes.ErrNoteNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockNotesRepo(t)
			c := &notes.Collaborator{ID: "c1", NoteID: "n1", UserID: "u2", Permission: notes.PermissionEdit, CreatedAt: time.Now().UTC()}

			exp := mock.ExpectExec(`INSERT INTO collaborators \(id,note_id,user_id,permission,created_at\)`).
				WithArgs(c.ID, c.NoteID, c.UserID, c.Permission, c.CreatedAt)
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := repo.AddCollaborator(context.Background(), c)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotesRepo_ListCollaborationsEmpty(t *testing.T) {
	repo, mock := newMockNotesRepo(t)

	mock.ExpectQuery(`FROM collaborators c JOIN notes n ON n.id = c.note_id JOIN users u ON u.id = n.owner_id WHERE c.user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "email", "permission", "created_at", "updated_at"}))

	out, err := repo.ListCollaborations(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
