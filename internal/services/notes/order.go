package notes

// CheckReorder validates a reorder batch against the note's current
// positions. Every id must belong to the note, and after the batch is
// applied no two blocks may share an index: a target index held by a block
// left out of the batch is rejected. Stores call it inside the same
// transaction that applies the batch.
func CheckReorder(current, batch []BlockOrder) error {
	moving := make(map[string]struct{}, len(batch))
	for _, o := range batch {
		moving[o.ID] = struct{}{}
	}

	known := make(map[string]struct{}, len(current))
	held := make(map[int]struct{}, len(current))
	for _, c := range current {
		known[c.ID] = struct{}{}
		if _, ok := moving[c.ID]; !ok {
			held[c.OrderIndex] = struct{}{}
		}
	}

	for _, o := range batch {
		if _, ok := known[o.ID]; !ok {
			return ErrBlockNotFound
		}
	}
	for _, o := range batch {
		if _, ok := held[o.OrderIndex]; ok {
			return ErrOrderIndexTaken
		}
		held[o.OrderIndex] = struct{}{}
	}
	return nil
}
