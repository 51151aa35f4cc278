package comment

import (
	"strings"
	"time"

	"github.com/shareit-platform/service-booking/pkg/domain"
)

// Comment is feedback left on an item by someone who has borrowed it.
type Comment struct {
	id        int64
	itemID    int64
	authorID  int64
	text      string
	createdAt time.Time
}

// NewComment creates a new comment.
func NewComment(itemID, authorID int64, text string, now time.Time) (*Comment, error) {
	if itemID <= 0 {
		return nil, domain.NewValidationError("item ID is required")
	}
	if authorID <= 0 {
		return nil, domain.NewValidationError("author ID is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("comment text is required")
	}
	return &Comment{
		itemID:    itemID,
		authorID:  authorID,
		text:      text,
		createdAt: now.UTC(),
	}, nil
}

// Reconstruct rebuilds a Comment from persistence.
func Reconstruct(id, itemID, authorID int64, text string, createdAt time.Time) *Comment {
	return &Comment{
		id:        id,
		itemID:    itemID,
		authorID:  authorID,
		text:      text,
		createdAt: createdAt,
	}
}

// Getters.
func (c *Comment) ID() int64            { return c.id }
func (c *Comment) ItemID() int64        { return c.itemID }
func (c *Comment) AuthorID() int64      { return c.authorID }
func (c *Comment) Text() string         { return c.text }
func (c *Comment) CreatedAt() time.Time { return c.createdAt }
