// Package notestest provides an in-memory notes.Repository for tests.
package notestest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"note-weave/internal/services/auth"
	"note-weave/internal/services/notes"
)

// Memory is a mutex-guarded notes.Repository and auth.UsersRepo.
// Use SetErr to make a method fail.
type Memory struct {
	mu      sync.Mutex
	users   map[string]*auth.User
	notes   map[string]*notes.Note
	blocks  map[string]*notes.Block
	collabs map[string]*notes.Collaborator
	errs    map[string]error
	calls   map[string]int
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		users:   map[string]*auth.User{},
		notes:   map[string]*notes.Note{},
		blocks:  map[string]*notes.Block{},
		collabs: map[string]*notes.Collaborator{},
		errs:    map[string]error{},
		calls:   map[string]int{},
	}
}

// SetErr makes every later call to method return err. A nil err clears it.
func (m *Memory) SetErr(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, method)
		return
	}
	m.errs[method] = err
}

// Calls reports how many times method was invoked.
func (m *Memory) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// enter records the call and returns the injected error, if any. Caller holds mu.
func (m *Memory) enter(method string) error {
	m.calls[method]++
	return m.errs[method]
}

// AddUser seeds a user.
func (m *Memory) AddUser(id, email string) *auth.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &auth.User{ID: id, Email: email, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.users[id] = u
	return u
}

// AddNote seeds a note.
func (m *Memory) AddNote(id, ownerID, title string) *notes.Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := &notes.Note{ID: id, OwnerID: ownerID, Title: title, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.notes[id] = n
	return cloneNote(n)
}

// AddBlock seeds a block.
func (m *Memory) AddBlock(id, noteID string, idx int) *notes.Block {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &notes.Block{ID: id, NoteID: noteID, Type: notes.BlockText, OrderIndex: idx, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.blocks[id] = b
	return cloneBlock(b)
}

// Grant seeds a collaborator grant.
func (m *Memory) Grant(noteID, userID string, perm notes.Permission) *notes.Collaborator {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := ""
	if u, ok := m.users[userID]; ok {
		email = u.Email
	}
	c := &notes.Collaborator{ID: noteID + ":" + userID, NoteID: noteID, UserID: userID, Email: email, Permission: perm, CreatedAt: time.Now()}
	m.collabs[c.ID] = c
	return c
}

// Note returns a copy of the stored note, or nil.
func (m *Memory) Note(id string) *notes.Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notes[id]; ok {
		return cloneNote(n)
	}
	return nil
}

// Block returns a copy of the stored block, or nil.
func (m *Memory) Block(id string) *notes.Block {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.blocks[id]; ok {
		return cloneBlock(b)
	}
	return nil
}

// OrderOf returns blockID -> order index for every block in the note.
func (m *Memory) OrderOf(noteID string) map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int{}
	for _, b := range m.blocks {
		if b.NoteID == noteID {
			out[b.ID] = b.OrderIndex
		}
	}
	return out
}

func (m *Memory) grantFor(noteID, userID string) *notes.Collaborator {
	for _, c := range m.collabs {
		if c.NoteID == noteID && c.UserID == userID {
			return c
		}
	}
	return nil
}

// FindNoteForUser implements notes.Repository.
func (m *Memory) FindNoteForUser(_ context.Context, noteID, userID string) (*notes.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("FindNoteForUser"); err != nil {
		return nil, err
	}
	n, ok := m.notes[noteID]
	if !ok || !notes.ViewAllowed(n.OwnerID, userID, m.grantFor(noteID, userID)) {
		return nil, notes.ErrNoteNotFound
	}
	return cloneNote(n), nil
}

// FindNoteForEditor implements notes.Repository.
func (m *Memory) FindNoteForEditor(_ context.Context, noteID, userID string) (*notes.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("FindNoteForEditor"); err != nil {
		return nil, err
	}
	n, ok := m.notes[noteID]
	if !ok || !notes.EditAllowed(n.OwnerID, userID, m.grantFor(noteID, userID)) {
		return nil, notes.ErrNoteNotFound
	}
	return cloneNote(n), nil
}

// CreateNote implements notes.Repository.
func (m *Memory) CreateNote(_ context.Context, n *notes.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateNote"); err != nil {
		return err
	}
	m.notes[n.ID] = cloneNote(n)
	return nil
}

// ListOwnedNotes implements notes.Repository.
func (m *Memory) ListOwnedNotes(_ context.Context, ownerID string) ([]*notes.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListOwnedNotes"); err != nil {
		return nil, err
	}
	var out []*notes.Note
	for _, n := range m.notes {
		if n.OwnerID == ownerID {
			out = append(out, cloneNote(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// UpdateNoteTitle implements notes.Repository.
func (m *Memory) UpdateNoteTitle(_ context.Context, noteID, title string, at time.Time) (*notes.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateNoteTitle"); err != nil {
		return nil, err
	}
	n, ok := m.notes[noteID]
	if !ok {
		return nil, notes.ErrNoteNotFound
	}
	n.Title, n.UpdatedAt = title, at
	return cloneNote(n), nil
}

// DeleteNote implements notes.Repository.
func (m *Memory) DeleteNote(_ context.Context, noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteNote"); err != nil {
		return err
	}
	if _, ok := m.notes[noteID]; !ok {
		return notes.ErrNoteNotFound
	}
	delete(m.notes, noteID)
	for id, b := range m.blocks {
		if b.NoteID == noteID {
			delete(m.blocks, id)
		}
	}
	for id, c := range m.collabs {
		if c.NoteID == noteID {
			delete(m.collabs, id)
		}
	}
	return nil
}

// TouchNote implements notes.Repository.
func (m *Memory) TouchNote(_ context.Context, noteID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("TouchNote"); err != nil {
		return err
	}
	n, ok := m.notes[noteID]
	if !ok {
		return notes.ErrNoteNotFound
	}
	n.UpdatedAt = at
	return nil
}

// SetPublic implements notes.Repository.
func (m *Memory) SetPublic(_ context.Context, noteID string, publicID *string, at time.Time) (*notes.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("SetPublic"); err != nil {
		return nil, err
	}
	n, ok := m.notes[noteID]
	if !ok {
		return nil, notes.ErrNoteNotFound
	}
	n.PublicID, n.IsPublic, n.UpdatedAt = publicID, publicID != nil, at
	return cloneNote(n), nil
}

// FindPublicNote implements notes.Repository.
func (m *Memory) FindPublicNote(_ context.Context, publicID string) (*notes.PublicNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("FindPublicNote"); err != nil {
		return nil, err
	}
	for _, n := range m.notes {
		if n.IsPublic && n.PublicID != nil && *n.PublicID == publicID {
			owner := ""
			if u, ok := m.users[n.OwnerID]; ok {
				owner = u.Email
			}
			return &notes.PublicNote{
				ID:         n.ID,
				Title:      n.Title,
				Blocks:     m.sortedBlocks(n.ID),
				OwnerEmail: owner,
				CreatedAt:  n.CreatedAt,
				UpdatedAt:  n.UpdatedAt,
			}, nil
		}
	}
	return nil, notes.ErrNoteNotFound
}

// ListBlocks implements notes.Repository.
func (m *Memory) ListBlocks(_ context.Context, noteID string) ([]*notes.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListBlocks"); err != nil {
		return nil, err
	}
	return m.sortedBlocks(noteID), nil
}

func (m *Memory) sortedBlocks(noteID string) []*notes.Block {
	out := []*notes.Block{}
	for _, b := range m.blocks {
		if b.NoteID == noteID {
			out = append(out, cloneBlock(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

// MaxOrderIndex implements notes.Repository.
func (m *Memory) MaxOrderIndex(_ context.Context, noteID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("MaxOrderIndex"); err != nil {
		return 0, err
	}
	maxIdx := -1
	for _, b := range m.blocks {
		if b.NoteID == noteID && b.OrderIndex > maxIdx {
			maxIdx = b.OrderIndex
		}
	}
	return maxIdx, nil
}

// CreateBlock implements notes.Repository.
func (m *Memory) CreateBlock(_ context.Context, b *notes.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateBlock"); err != nil {
		return err
	}
	m.blocks[b.ID] = cloneBlock(b)
	return nil
}

// UpdateBlock implements notes.Repository.
func (m *Memory) UpdateBlock(_ context.Context, noteID, blockID string, typ notes.BlockType, content string, at time.Time) (*notes.Block, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateBlock"); err != nil {
		return nil, err
	}
	b, ok := m.blocks[blockID]
	if !ok || b.NoteID != noteID {
		return nil, notes.ErrBlockNotFound
	}
	b.Type, b.Content, b.UpdatedAt = typ, content, at
	return cloneBlock(b), nil
}

// DeleteBlock implements notes.Repository.
func (m *Memory) DeleteBlock(_ context.Context, noteID, blockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteBlock"); err != nil {
		return err
	}
	b, ok := m.blocks[blockID]
	if !ok || b.NoteID != noteID {
		return notes.ErrBlockNotFound
	}
	delete(m.blocks, blockID)
	return nil
}

// ReorderBlocks implements notes.Repository. It validates the whole batch
// before writing anything.
func (m *Memory) ReorderBlocks(_ context.Context, noteID string, order []notes.BlockOrder, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ReorderBlocks"); err != nil {
		return err
	}
	var current []notes.BlockOrder
	for _, b := range m.blocks {
		if b.NoteID == noteID {
			current = append(current, notes.BlockOrder{ID: b.ID, OrderIndex: b.OrderIndex})
		}
	}
	if err := notes.CheckReorder(current, order); err != nil {
		return err
	}
	for _, o := range order {
		b := m.blocks[o.ID]
		b.OrderIndex, b.UpdatedAt = o.OrderIndex, at
	}
	return nil
}

// AddCollaborator implements notes.Repository.
func (m *Memory) AddCollaborator(_ context.Context, c *notes.Collaborator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("AddCollaborator"); err != nil {
		return err
	}
	if m.grantFor(c.NoteID, c.UserID) != nil {
		return notes.ErrDuplicateCollaborator
	}
	cp := *c
	m.collabs[c.ID] = &cp
	return nil
}

// RemoveCollaborator implements notes.Repository.
func (m *Memory) RemoveCollaborator(_ context.Context, noteID, collaboratorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("RemoveCollaborator"); err != nil {
		return err
	}
	c, ok := m.collabs[collaboratorID]
	if !ok || c.NoteID != noteID {
		return notes.ErrCollaboratorNotFound
	}
	delete(m.collabs, collaboratorID)
	return nil
}

// ListCollaborators implements notes.Repository.
func (m *Memory) ListCollaborators(_ context.Context, noteID string) ([]*notes.Collaborator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListCollaborators"); err != nil {
		return nil, err
	}
	var out []*notes.Collaborator
	for _, c := range m.collabs {
		if c.NoteID == noteID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListCollaborations implements notes.Repository.
func (m *Memory) ListCollaborations(_ context.Context, userID string) ([]*notes.Collaboration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListCollaborations"); err != nil {
		return nil, err
	}
	var out []*notes.Collaboration
	for _, c := range m.collabs {
		if c.UserID != userID {
			continue
		}
		n, ok := m.notes[c.NoteID]
		if !ok {
			continue
		}
		owner := ""
		if u, ok := m.users[n.OwnerID]; ok {
			owner = u.Email
		}
		out = append(out, &notes.Collaboration{
			NoteID:     n.ID,
			Title:      n.Title,
			OwnerEmail: owner,
			Permission: c.Permission,
			CreatedAt:  n.CreatedAt,
			UpdatedAt:  n.UpdatedAt,
		})
	}
	return out, nil
}

// Create implements auth.UsersRepo.
func (m *Memory) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("Create"); err != nil {
		return err
	}
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return auth.ErrDuplicate
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

// FindByID implements auth.UsersRepo.
func (m *Memory) FindByID(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("FindByID"); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// FindByEmail implements notes.UserFinder and auth.UsersRepo.
func (m *Memory) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

var (
	_ notes.Repository = (*Memory)(nil)
	_ auth.UsersRepo   = (*Memory)(nil)
)

func cloneNote(n *notes.Note) *notes.Note {
	cp := *n
	cp.Blocks = nil
	return &cp
}

func cloneBlock(b *notes.Block) *notes.Block {
	cp := *b
	return &cp
}
