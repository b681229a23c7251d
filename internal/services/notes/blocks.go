package notes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"note-weave/internal/utils/sanitize"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Block mutations follow one template: validate, authorize as editor,
// persist, touch the note, then broadcast to the room excluding origin.
// A zero origin (REST callers) reaches every connection in the room.
// Nothing is broadcast unless the write committed.

// CreateBlockRequest adds a block at the end of a note.
type CreateBlockRequest struct {
	NoteID   string    `json:"noteId" validate:"required" example:"3f1d2a9e-6b7c-4d11-8a4e-2c9b1e0f5a77"`
	Type     BlockType `json:"type" validate:"required,oneof=TEXT CHECKLIST IMAGE CODE" example:"TEXT"`
	Content  string    `json:"content" validate:"max=100000" example:"Remember the retro"`
	ParentID *string   `json:"parentId,omitempty" validate:"omitempty,min=1"`
}

// UpdateBlockRequest replaces a block's type and content.
type UpdateBlockRequest struct {
	NoteID  string    `json:"noteId" validate:"required"`
	BlockID string    `json:"blockId" validate:"required"`
	Type    BlockType `json:"type" validate:"required,oneof=TEXT CHECKLIST IMAGE CODE" example:"TEXT"`
	Content string    `json:"content" validate:"max=100000" example:"Remember the retro (moved to Friday)"`
}

// DeleteBlockRequest removes a block.
type DeleteBlockRequest struct {
	NoteID  string `json:"noteId" validate:"required"`
	BlockID string `json:"blockId" validate:"required"`
}

// ReorderBlocksRequest assigns new positions. Ids and indexes must both be unique.
type ReorderBlocksRequest struct {
	NoteID string       `json:"noteId" validate:"required"`
	Blocks []BlockOrder `json:"blocks" validate:"required,min=1,max=1000,unique=ID,unique=OrderIndex,dive"`
}

// CreateBlock appends a block at max(order index)+1.
//
// The read of the current maximum and the insert are not atomic: two
// concurrent creators on the same note may be handed the same index.
func (s *Service) CreateBlock(ctx context.Context, userID string, origin ulid.ULID, req CreateBlockRequest) (*Block, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	if err := s.requireEditor(ctx, userID, req.NoteID); err != nil {
		return nil, err
	}

	maxIdx, err := s.repo.MaxOrderIndex(ctx, req.NoteID)
	if err != nil {
		s.log.Error(ErrCreateBlock.Error(), "error", err, "note_id", req.NoteID)
		return nil, ErrCreateBlock
	}

	now := s.now().UTC()
	block := &Block{
		ID:         uuid.NewString(),
		NoteID:     req.NoteID,
		Type:       req.Type,
		Content:    cleanContent(req.Type, req.Content),
		ParentID:   req.ParentID,
		OrderIndex: maxIdx + 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateBlock(ctx, block); err != nil {
		s.log.Error(ErrCreateBlock.Error(), "error", err, "note_id", req.NoteID)
		return nil, ErrCreateBlock
	}

	s.touch(ctx, req.NoteID, now)
	s.emit(ctx, req.NoteID, EventBlockCreated, origin, BlockCreated{
		Block:     block,
		CreatedBy: userID,
		Timestamp: now,
	})
	return block, nil
}

// UpdateBlock replaces a block's type and content. Last write wins.
func (s *Service) UpdateBlock(ctx context.Context, userID string, origin ulid.ULID, req UpdateBlockRequest) (*Block, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	if err := s.requireEditor(ctx, userID, req.NoteID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	block, err := s.repo.UpdateBlock(ctx, req.NoteID, req.BlockID, req.Type, cleanContent(req.Type, req.Content), now)
	if err != nil {
		if errors.Is(err, ErrBlockNotFound) {
			return nil, ErrBlockNotFound
		}
		s.log.Error(ErrUpdateBlock.Error(), "error", err, "note_id", req.NoteID, "block_id", req.BlockID)
		return nil, ErrUpdateBlock
	}

	s.touch(ctx, req.NoteID, now)
	s.emit(ctx, req.NoteID, EventBlockUpdated, origin, BlockUpdated{
		BlockID:   block.ID,
		Content:   block.Content,
		Type:      block.Type,
		UpdatedBy: userID,
		Timestamp: now,
	})
	return block, nil
}

// DeleteBlock removes a block from a note.
func (s *Service) DeleteBlock(ctx context.Context, userID string, origin ulid.ULID, req DeleteBlockRequest) error {
	if err := s.check(ctx, req); err != nil {
		return err
	}
	if err := s.requireEditor(ctx, userID, req.NoteID); err != nil {
		return err
	}

	if err := s.repo.DeleteBlock(ctx, req.NoteID, req.BlockID); err != nil {
		if errors.Is(err, ErrBlockNotFound) {
			return ErrBlockNotFound
		}
		s.log.Error(ErrDeleteBlock.Error(), "error", err, "note_id", req.NoteID, "block_id", req.BlockID)
		return ErrDeleteBlock
	}

	now := s.now().UTC()
	s.touch(ctx, req.NoteID, now)
	s.emit(ctx, req.NoteID, EventBlockDeleted, origin, BlockDeleted{
		BlockID:   req.BlockID,
		DeletedBy: userID,
		Timestamp: now,
	})
	return nil
}

// ReorderBlocks applies the whole batch atomically. The batch may name a
// subset of the note's blocks, but no target index may be held by a block
// outside it. On any failure no index changes and nothing is broadcast.
func (s *Service) ReorderBlocks(ctx context.Context, userID string, origin ulid.ULID, req ReorderBlocksRequest) ([]BlockOrder, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	if err := s.requireEditor(ctx, userID, req.NoteID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.repo.ReorderBlocks(ctx, req.NoteID, req.Blocks, now); err != nil {
		switch {
		case errors.Is(err, ErrBlockNotFound):
			return nil, ErrBlockNotFound
		case errors.Is(err, ErrOrderIndexTaken):
			return nil, ErrOrderIndexTaken
		}
		s.log.Error(ErrReorderBlocks.Error(), "error", err, "note_id", req.NoteID)
		return nil, ErrReorderBlocks
	}

	s.touch(ctx, req.NoteID, now)
	s.emit(ctx, req.NoteID, EventBlocksReordered, origin, BlocksReordered{
		Blocks:    req.Blocks,
		UpdatedBy: userID,
		Timestamp: now,
	})
	return req.Blocks, nil
}

// touch bumps the note's updated_at. The block write already committed,
// so a failure here is logged and the broadcast still goes out.
func (s *Service) touch(ctx context.Context, noteID string, at time.Time) {
	if err := s.repo.TouchNote(ctx, noteID, at); err != nil {
		s.log.Warn("failed to touch note", "error", err, "note_id", noteID)
	}
}

func (s *Service) emit(ctx context.Context, noteID, name string, origin ulid.ULID, payload any) {
	if s.log.Enabled(ctx, slog.LevelDebug) {
		s.log.Debug("broadcasting event", "note_id", noteID, "event", name, "origin", origin.String())
	}
	s.bus.Broadcast(ctx, NoteEvent{
		NoteID:  noteID,
		Name:    name,
		Payload: payload,
		Except:  origin,
	})
}

// cleanContent strips markup from free text. Code, image and checklist
// payloads are stored verbatim and must be escaped by the renderer.
func cleanContent(typ BlockType, content string) string {
	if typ == BlockText {
		return sanitize.Text(content)
	}
	return content
}
