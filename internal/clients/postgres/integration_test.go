//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"note-weave/internal/services/auth"
	"note-weave/internal/services/notes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgresTC returns a migrated database backed by a throwaway container.
func startPostgresTC(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "noteweave",
				"POSTGRES_PASSWORD": "noteweave",
				"POSTGRES_DB":       "noteweave",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := sql.Open("pgx", fmt.Sprintf("postgres://noteweave:noteweave@%s:%s/noteweave?sslmode=disable", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db))
	return db
}

func TestIntegration_NotesLifecycle(t *testing.T) {
	db := startPostgresTC(t)
	ctx := context.Background()
	users := NewUsersRepo(db)
	repo := NewNotesRepo(db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	for _, u := range []*auth.User{
		{ID: "owner", Email: "owner@example.com", PasswordHash: "x", CreatedAt: now, UpdatedAt: now},
		{ID: "editor", Email: "editor@example.com", PasswordHash: "x", CreatedAt: now, UpdatedAt: now},
		{ID: "viewer", Email: "viewer@example.com", PasswordHash: "x", CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, users.Create(ctx, u))
	}
	assert.ErrorIs(t, users.Create(ctx, &auth.User{ID: "dup", Email: "owner@example.com", PasswordHash: "x"}), auth.ErrDuplicate)

	require.NoError(t, repo.CreateNote(ctx, &notes.Note{ID: "n1", OwnerID: "owner", Title: "N", CreatedAt: now, UpdatedAt: now}))
	for i, id := range []string{"b1", "b2", "b3"} {
		require.NoError(t, repo.CreateBlock(ctx, &notes.Block{ID: id, NoteID: "n1", Type: notes.BlockText, OrderIndex: i, CreatedAt: now, UpdatedAt: now}))
	}
	require.NoError(t, repo.AddCollaborator(ctx, &notes.Collaborator{ID: "c1", NoteID: "n1", UserID: "editor", Permission: notes.PermissionEdit, CreatedAt: now}))
	require.NoError(t, repo.AddCollaborator(ctx, &notes.Collaborator{ID: "c2", NoteID: "n1", UserID: "viewer", Permission: notes.PermissionView, CreatedAt: now}))
	assert.ErrorIs(t, repo.AddCollaborator(ctx, &notes.Collaborator{ID: "c3", NoteID: "n1", UserID: "viewer", Permission: notes.PermissionEdit, CreatedAt: now}), notes.ErrDuplicateCollaborator)

	t.Run("access", func(t *testing.T) {
		_, err := repo.FindNoteForEditor(ctx, "n1", "editor")
		assert.NoError(t, err)
		_, err = repo.FindNoteForUser(ctx, "n1", "viewer")
		assert.NoError(t, err)
		_, err = repo.FindNoteForEditor(ctx, "n1", "viewer")
		assert.ErrorIs(t, err, notes.ErrNoteNotFound)
		_, err = repo.FindNoteForUser(ctx, "n1", "stranger")
		assert.ErrorIs(t, err, notes.ErrNoteNotFound)
	})

	t.Run("max order index", func(t *testing.T) {
		idx, err := repo.MaxOrderIndex(ctx, "n1")
		require.NoError(t, err)
		assert.Equal(t, 2, idx)
	})

	t.Run("reorder is all or nothing", func(t *testing.T) {
		err := repo.ReorderBlocks(ctx, "n1", []notes.BlockOrder{{ID: "b1", OrderIndex: 2}, {ID: "ghost", OrderIndex: 0}}, now)
		assert.ErrorIs(t, err, notes.ErrBlockNotFound)

		blocks, err := repo.ListBlocks(ctx, "n1")
		require.NoError(t, err)
		assert.Equal(t, "b1", blocks[0].ID, "failed batch left order unchanged")

		err = repo.ReorderBlocks(ctx, "n1", []notes.BlockOrder{{ID: "b1", OrderIndex: 1}}, now)
		assert.ErrorIs(t, err, notes.ErrOrderIndexTaken, "b2 already sits at 1")
		blocks, err = repo.ListBlocks(ctx, "n1")
		require.NoError(t, err)
		assert.Equal(t, 0, blocks[0].OrderIndex)
		assert.Equal(t, "b1", blocks[0].ID)

		require.NoError(t, repo.ReorderBlocks(ctx, "n1", []notes.BlockOrder{{ID: "b1", OrderIndex: 2}, {ID: "b3", OrderIndex: 0}}, now))
		blocks, err = repo.ListBlocks(ctx, "n1")
		require.NoError(t, err)
		assert.Equal(t, []string{"b3", "b2", "b1"}, []string{blocks[0].ID, blocks[1].ID, blocks[2].ID})
	})

	t.Run("public note", func(t *testing.T) {
		pub := "8d1f7c0e-2b3a-4c5d-9e6f-7a8b9c0d1e2f"
		n, err := repo.SetPublic(ctx, "n1", &pub, now)
		require.NoError(t, err)
		assert.True(t, n.IsPublic)

		p, err := repo.FindPublicNote(ctx, pub)
		require.NoError(t, err)
		assert.Equal(t, "owner@example.com", p.OwnerEmail)
		assert.Len(t, p.Blocks, 3)

		_, err = repo.SetPublic(ctx, "n1", nil, now)
		require.NoError(t, err)
		_, err = repo.FindPublicNote(ctx, pub)
		assert.ErrorIs(t, err, notes.ErrNoteNotFound)
	})

	t.Run("collaborations", func(t *testing.T) {
		list, err := repo.ListCollaborations(ctx, "editor")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "owner@example.com", list[0].OwnerEmail)
		assert.Equal(t, notes.PermissionEdit, list[0].Permission)
	})

	t.Run("delete cascades", func(t *testing.T) {
		require.NoError(t, repo.DeleteNote(ctx, "n1"))
		blocks, err := repo.ListBlocks(ctx, "n1")
		require.NoError(t, err)
		assert.Empty(t, blocks)
		grants, err := repo.ListCollaborators(ctx, "n1")
		require.NoError(t, err)
		assert.Empty(t, grants)
	})
}
