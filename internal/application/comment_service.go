package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	commentDomain "github.com/shareit-platform/service-booking/internal/domain/comment"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

// AddCommentRequest is the request DTO for commenting on an item.
type AddCommentRequest struct {
	Text string `json:"text" binding:"required,notblank"`
}

// CommentDTO is the response representation of a comment.
type CommentDTO struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	Created    time.Time `json:"created"`
}

// CommentService handles feedback on items.
type CommentService struct {
	uow    UnitOfWork
	clock  func() time.Time
	logger *zap.Logger
}

// NewCommentService creates a new CommentService. A nil clock means the wall clock.
func NewCommentService(uow UnitOfWork, clock func() time.Time, logger *zap.Logger) *CommentService {
	if clock == nil {
		clock = systemClock
	}
	return &CommentService{uow: uow, clock: clock, logger: logger}
}

// AddComment stores a comment from someone whose approved booking of the item has ended.
func (s *CommentService) AddComment(ctx context.Context, authorID, itemID int64, req AddCommentRequest) (*CommentDTO, error) {
	now := s.clock()
	repos := s.uow.Repos()

	author, err := repos.Users.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := repos.Items.FindByID(ctx, itemID); err != nil {
		return nil, err
	}

	approved, err := repos.Bookings.FindByItemID(ctx, itemID, bookingDomain.StatusApproved)
	if err != nil {
		return nil, err
	}
	if !hasFinishedBooking(approved, authorID, now) {
		return nil, domain.NewValidationError(fmt.Sprintf("user %d has not completed a booking of item %d", authorID, itemID))
	}

	c, err := commentDomain.NewComment(itemID, authorID, req.Text, now)
	if err != nil {
		return nil, err
	}
	saved, err := repos.Comments.Save(ctx, c)
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment added",
		zap.Int64("comment_id", saved.ID()),
		zap.Int64("item_id", itemID),
		zap.Int64("author_id", authorID),
	)
	result := toCommentDTO(saved, author.Name)
	return &result, nil
}

func hasFinishedBooking(approved []*bookingDomain.Booking, bookerID int64, now time.Time) bool {
	for _, bk := range approved {
		if bk.IsBooker(bookerID) && bk.End().Before(now) {
			return true
		}
	}
	return false
}

func toCommentDTO(c *commentDomain.Comment, authorName string) CommentDTO {
	return CommentDTO{
		ID:         c.ID(),
		Text:       c.Text(),
		AuthorName: authorName,
		Created:    c.CreatedAt(),
	}
}
