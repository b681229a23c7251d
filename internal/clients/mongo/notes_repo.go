package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"note-weave/internal/clients/dbctx"
	"note-weave/internal/logger"
	"note-weave/internal/services/auth"
	"note-weave/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NotesRepo implements notes.Repository for MongoDB. Notes, blocks and
// grants live in separate collections keyed by string ids.
type NotesRepo struct {
	notes   *mongo.Collection
	blocks  *mongo.Collection
	collabs *mongo.Collection
	users   *mongo.Collection
}

var _ notes.Repository = (*NotesRepo)(nil)

func repoCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return dbctx.WithTimeout(parent, dbctx.OpTimeout)
}

// translateNotFound maps the driver ErrNoDocuments to the domain-level error.
func translateNotFound(err, notFound error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	return err
}

// NewNotesRepo creates a new notes repository and ensures its indexes.
func NewNotesRepo(parentCtx context.Context, db *mongo.Database) (*NotesRepo, error) {
	r := &NotesRepo{
		notes:   db.Collection("notes"),
		blocks:  db.Collection("blocks"),
		collabs: db.Collection("collaborators"),
		users:   db.Collection("users"),
	}

	indexes := map[*mongo.Collection][]mongo.IndexModel{
		r.notes: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "updated_at", Value: -1}}},
			{
				Keys: bson.D{{Key: "public_id", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"public_id": bson.M{"$type": "string"}}),
			},
		},
		r.blocks: {
			{Keys: bson.D{{Key: "note_id", Value: 1}, {Key: "order_index", Value: 1}}},
		},
		r.collabs: {
			{
				Keys:    bson.D{{Key: "note_id", Value: 1}, {Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
	}

	ctx, cancel := context.WithTimeout(parentCtx, dbctx.OpTimeout)
	defer cancel()

	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			logger.L().Error("failed to create index", "collection", coll.Name(), "error", err)
			return nil, fmt.Errorf("failed to create %s collection index: %w", coll.Name(), err)
		}
	}

	return r, nil
}

// FindNoteForUser implements notes.Repository.
func (r *NotesRepo) FindNoteForUser(ctx context.Context, noteID, userID string) (*notes.Note, error) {
	return r.findWithGrant(ctx, noteID, userID, notes.ViewAllowed)
}

// FindNoteForEditor implements notes.Repository.
func (r *NotesRepo) FindNoteForEditor(ctx context.Context, noteID, userID string) (*notes.Note, error) {
	return r.findWithGrant(ctx, noteID, userID, notes.EditAllowed)
}

func (r *NotesRepo) findWithGrant(ctx context.Context, noteID, userID string, allowed func(ownerID, userID string, grant *notes.Collaborator) bool) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var n notes.Note
	if err := r.notes.FindOne(ctx, bson.M{"_id": noteID}).Decode(&n); err != nil {
		return nil, translateNotFound(err, notes.ErrNoteNotFound)
	}

	var grant *notes.Collaborator
	if n.OwnerID != userID {
		var c notes.Collaborator
		err := r.collabs.FindOne(ctx, bson.M{"note_id": noteID, "user_id": userID}).Decode(&c)
		switch {
		case err == nil:
			grant = &c
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, err
		}
	}

	if !allowed(n.OwnerID, userID, grant) {
		return nil, notes.ErrNoteNotFound
	}
	return &n, nil
}

// CreateNote implements notes.Repository.
func (r *NotesRepo) CreateNote(ctx context.Context, n *notes.Note) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.notes.InsertOne(ctx, n)
	return err
}

// ListOwnedNotes implements notes.Repository.
func (r *NotesRepo) ListOwnedNotes(ctx context.Context, ownerID string) ([]*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	cursor, err := r.notes.Find(ctx, bson.M{"owner_id": ownerID},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, err
	}

	out := []*notes.Note{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateNoteTitle implements notes.Repository.
func (r *NotesRepo) UpdateNoteTitle(ctx context.Context, noteID, title string, at time.Time) (*notes.Note, error) {
	return r.updateNote(ctx, noteID, bson.M{"$set": bson.M{"title": title, "updated_at": at}})
}

// SetPublic implements notes.Repository.
func (r *NotesRepo) SetPublic(ctx context.Context, noteID string, publicID *string, at time.Time) (*notes.Note, error) {
	if publicID == nil {
		return r.updateNote(ctx, noteID, bson.M{
			"$set":   bson.M{"is_public": false, "updated_at": at},
			"$unset": bson.M{"public_id": ""},
		})
	}
	return r.updateNote(ctx, noteID, bson.M{
		"$set": bson.M{"is_public": true, "public_id": *publicID, "updated_at": at},
	})
}

func (r *NotesRepo) updateNote(ctx context.Context, noteID string, update bson.M) (*notes.Note, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n notes.Note
	if err := r.notes.FindOneAndUpdate(ctx, bson.M{"_id": noteID}, update, opts).Decode(&n); err != nil {
		return nil, translateNotFound(err, notes.ErrNoteNotFound)
	}
	return &n, nil
}

// DeleteNote implements notes.Repository. Blocks and grants go with the
// note, inside a transaction when the deployment supports one.
func (r *NotesRepo) DeleteNote(ctx context.Context, noteID string) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	return r.inTxn(ctx, func(ctx context.Context) error {
		res, err := r.notes.DeleteOne(ctx, bson.M{"_id": noteID})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return notes.ErrNoteNotFound
		}
		if _, err := r.blocks.DeleteMany(ctx, bson.M{"note_id": noteID}); err != nil {
			return err
		}
		_, err = r.collabs.DeleteMany(ctx, bson.M{"note_id": noteID})
		return err
	})
}

// TouchNote implements notes.Repository.
func (r *NotesRepo) TouchNote(ctx context.Context, noteID string, at time.Time) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.notes.UpdateOne(ctx, bson.M{"_id": noteID}, bson.M{"$set": bson.M{"updated_at": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notes.ErrNoteNotFound
	}
	return nil
}

// FindPublicNote implements notes.Repository.
func (r *NotesRepo) FindPublicNote(ctx context.Context, publicID string) (*notes.PublicNote, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var n notes.Note
	if err := r.notes.FindOne(ctx, bson.M{"public_id": publicID, "is_public": true}).Decode(&n); err != nil {
		return nil, translateNotFound(err, notes.ErrNoteNotFound)
	}

	emails, err := r.ownerEmails(ctx, []string{n.OwnerID})
	if err != nil {
		return nil, err
	}
	blocks, err := r.listBlocks(ctx, n.ID)
	if err != nil {
		return nil, err
	}

	return &notes.PublicNote{
		ID:         n.ID,
		Title:      n.Title,
		Blocks:     blocks,
		OwnerEmail: emails[n.OwnerID],
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}, nil
}

// ListBlocks implements notes.Repository.
func (r *NotesRepo) ListBlocks(ctx context.Context, noteID string) ([]*notes.Block, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()
	return r.listBlocks(ctx, noteID)
}

func (r *NotesRepo) listBlocks(ctx context.Context, noteID string) ([]*notes.Block, error) {
	cursor, err := r.blocks.Find(ctx, bson.M{"note_id": noteID},
		options.Find().SetSort(bson.D{{Key: "order_index", Value: 1}, {Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}

	out := []*notes.Block{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MaxOrderIndex implements notes.Repository.
func (r *NotesRepo) MaxOrderIndex(ctx context.Context, noteID string) (int, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	opts := options.FindOne().
		SetSort(bson.D{{Key: "order_index", Value: -1}}).
		SetProjection(bson.M{"order_index": 1})

	var top struct {
		OrderIndex int `bson:"order_index"`
	}
	err := r.blocks.FindOne(ctx, bson.M{"note_id": noteID}, opts).Decode(&top)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return -1, nil
	}
	if err != nil {
		return 0, err
	}
	return top.OrderIndex, nil
}

// CreateBlock implements notes.Repository.
func (r *NotesRepo) CreateBlock(ctx context.Context, b *notes.Block) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	_, err := r.blocks.InsertOne(ctx, b)
	return err
}

// UpdateBlock implements notes.Repository.
func (r *NotesRepo) UpdateBlock(ctx context.Context, noteID, blockID string, typ notes.BlockType, content string, at time.Time) (*notes.Block, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{"type": typ, "content": content, "updated_at": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var b notes.Block
	if err := r.blocks.FindOneAndUpdate(ctx, bson.M{"_id": blockID, "note_id": noteID}, update, opts).Decode(&b); err != nil {
		return nil, translateNotFound(err, notes.ErrBlockNotFound)
	}
	return &b, nil
}

// DeleteBlock implements notes.Repository. Child blocks are removed with their parent.
func (r *NotesRepo) DeleteBlock(ctx context.Context, noteID, blockID string) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.blocks.DeleteOne(ctx, bson.M{"_id": blockID, "note_id": noteID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notes.ErrBlockNotFound
	}
	_, err = r.blocks.DeleteMany(ctx, bson.M{"note_id": noteID, "parent_id": blockID})
	return err
}

// ReorderBlocks implements notes.Repository. The note's current positions
// are read and checked with notes.CheckReorder before any write; the writes
// then run as one ordered bulk. On a replica set everything runs in a
// transaction. A stand-alone server has no multi-document transactions, so
// a bulk that fails midway is undone by writing the previous positions
// back; only a failure of that restore can leave a partial reorder.
func (r *NotesRepo) ReorderBlocks(ctx context.Context, noteID string, order []notes.BlockOrder, at time.Time) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	return r.inTxn(ctx, func(ctx context.Context) error {
		current, err := r.positions(ctx, noteID)
		if err != nil {
			return err
		}
		if err := notes.CheckReorder(current, order); err != nil {
			return err
		}

		err = r.applyOrder(ctx, noteID, order, at)
		if err == nil || IsReplicaSet() {
			return err
		}

		if rerr := r.applyOrder(ctx, noteID, previousPositions(current, order), at); rerr != nil {
			logger.L().Error("failed to restore block order", "error", rerr, "note_id", noteID)
			return errors.Join(err, rerr)
		}
		return err
	})
}

// positions returns the id and order index of every block in the note.
func (r *NotesRepo) positions(ctx context.Context, noteID string) ([]notes.BlockOrder, error) {
	cur, err := r.blocks.Find(ctx, bson.M{"note_id": noteID},
		options.Find().SetProjection(bson.M{"_id": 1, "order_index": 1}))
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID         string `bson:"_id"`
		OrderIndex int    `bson:"order_index"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make([]notes.BlockOrder, 0, len(rows))
	for _, row := range rows {
		out = append(out, notes.BlockOrder{ID: row.ID, OrderIndex: row.OrderIndex})
	}
	return out, nil
}

// previousPositions returns the assignments that undo order, given the
// positions read before it was applied.
func previousPositions(current, order []notes.BlockOrder) []notes.BlockOrder {
	prev := make(map[string]int, len(current))
	for _, c := range current {
		prev[c.ID] = c.OrderIndex
	}
	out := make([]notes.BlockOrder, 0, len(order))
	for _, o := range order {
		out = append(out, notes.BlockOrder{ID: o.ID, OrderIndex: prev[o.ID]})
	}
	return out
}

func (r *NotesRepo) applyOrder(ctx context.Context, noteID string, order []notes.BlockOrder, at time.Time) error {
	models := make([]mongo.WriteModel, 0, len(order))
	for _, o := range order {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": o.ID, "note_id": noteID}).
			SetUpdate(bson.M{"$set": bson.M{"order_index": o.OrderIndex, "updated_at": at}}))
	}

	res, err := r.blocks.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return err
	}
	if res.MatchedCount != int64(len(models)) {
		return notes.ErrBlockNotFound
	}
	return nil
}

// AddCollaborator implements notes.Repository.
func (r *NotesRepo) AddCollaborator(ctx context.Context, c *notes.Collaborator) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	if _, err := r.collabs.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return notes.ErrDuplicateCollaborator
		}
		return err
	}
	return nil
}

// RemoveCollaborator implements notes.Repository.
func (r *NotesRepo) RemoveCollaborator(ctx context.Context, noteID, collaboratorID string) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	res, err := r.collabs.DeleteOne(ctx, bson.M{"_id": collaboratorID, "note_id": noteID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notes.ErrCollaboratorNotFound
	}
	return nil
}

// ListCollaborators implements notes.Repository.
func (r *NotesRepo) ListCollaborators(ctx context.Context, noteID string) ([]*notes.Collaborator, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	cursor, err := r.collabs.Find(ctx, bson.M{"note_id": noteID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}

	out := []*notes.Collaborator{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCollaborations implements notes.Repository.
func (r *NotesRepo) ListCollaborations(ctx context.Context, userID string) ([]*notes.Collaboration, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	cursor, err := r.collabs.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	var grants []notes.Collaborator
	if err := cursor.All(ctx, &grants); err != nil {
		return nil, err
	}
	if len(grants) == 0 {
		return []*notes.Collaboration{}, nil
	}

	noteIDs := make([]string, 0, len(grants))
	for _, g := range grants {
		noteIDs = append(noteIDs, g.NoteID)
	}
	cursor, err = r.notes.Find(ctx, bson.M{"_id": bson.M{"$in": noteIDs}})
	if err != nil {
		return nil, err
	}
	var shared []notes.Note
	if err := cursor.All(ctx, &shared); err != nil {
		return nil, err
	}

	byID := make(map[string]notes.Note, len(shared))
	ownerIDs := make([]string, 0, len(shared))
	for _, n := range shared {
		byID[n.ID] = n
		ownerIDs = append(ownerIDs, n.OwnerID)
	}
	emails, err := r.ownerEmails(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	out := make([]*notes.Collaboration, 0, len(grants))
	for _, g := range grants {
		n, ok := byID[g.NoteID]
		if !ok {
			continue
		}
		out = append(out, &notes.Collaboration{
			NoteID:     n.ID,
			Title:      n.Title,
			OwnerEmail: emails[n.OwnerID],
			Permission: g.Permission,
			CreatedAt:  n.CreatedAt,
			UpdatedAt:  n.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// ownerEmails resolves user ids to emails in one round trip.
func (r *NotesRepo) ownerEmails(ctx context.Context, userIDs []string) (map[string]string, error) {
	cursor, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}},
		options.Find().SetProjection(bson.M{"email": 1}))
	if err != nil {
		return nil, err
	}
	var found []auth.User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(found))
	for _, u := range found {
		out[u.ID] = u.Email
	}
	return out, nil
}

// inTxn runs fn in a transaction on replica sets and directly otherwise.
func (r *NotesRepo) inTxn(ctx context.Context, fn func(ctx context.Context) error) error {
	if !IsReplicaSet() {
		return fn(ctx)
	}

	sess, err := r.notes.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}
