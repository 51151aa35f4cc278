package comment

import "context"

// CommentRepository defines persistence operations for item comments.
type CommentRepository interface {
	Save(ctx context.Context, comment *Comment) (*Comment, error)
	// FindByItemIDs returns comments grouped by item, oldest first.
	FindByItemIDs(ctx context.Context, itemIDs []int64) (map[int64][]*Comment, error)
}
