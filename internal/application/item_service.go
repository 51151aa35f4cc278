package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	commentDomain "github.com/shareit-platform/service-booking/internal/domain/comment"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/internal/repository"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

// CreateItemRequest is the request DTO for listing a new item.
type CreateItemRequest struct {
	Name        string `json:"name" binding:"required,notblank"`
	Description string `json:"description" binding:"required,notblank"`
	Available   *bool  `json:"available" binding:"required"`
	RequestID   *int64 `json:"request_id"`
}

// UpdateItemRequest is the request DTO for a partial item update.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// BookingShortDTO is the compact booking shown on an item.
type BookingShortDTO struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"booker_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// ItemDTO is the API response representation of an item.
type ItemDTO struct {
	ID          int64            `json:"id"`
	OwnerID     int64            `json:"owner_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Available   bool             `json:"available"`
	RequestID   *int64           `json:"request_id,omitempty"`
	LastBooking *BookingShortDTO `json:"last_booking"`
	NextBooking *BookingShortDTO `json:"next_booking"`
	Comments    []CommentDTO     `json:"comments"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ItemService implements use cases for the item catalog.
type ItemService struct {
	uow    UnitOfWork
	clock  func() time.Time
	logger *zap.Logger
}

// NewItemService creates a new ItemService. A nil clock means the wall clock.
func NewItemService(uow UnitOfWork, clock func() time.Time, logger *zap.Logger) *ItemService {
	if clock == nil {
		clock = systemClock
	}
	return &ItemService{uow: uow, clock: clock, logger: logger}
}

// CreateItem lists a new item for ownerID, optionally in answer to an item request.
func (s *ItemService) CreateItem(ctx context.Context, ownerID int64, req CreateItemRequest) (*ItemDTO, error) {
	if req.Available == nil {
		return nil, domain.NewValidationError("available is required")
	}
	it, err := itemDomain.NewItem(ownerID, req.Name, req.Description, *req.Available, s.clock())
	if err != nil {
		return nil, err
	}

	repos := s.uow.Repos()
	if err := requireUser(ctx, repos.Users, ownerID); err != nil {
		return nil, err
	}
	if req.RequestID != nil {
		ir, err := repos.Requests.FindByID(ctx, *req.RequestID)
		if err != nil {
			return nil, err
		}
		if err := it.AnswerRequest(ir.ID()); err != nil {
			return nil, err
		}
	}
	saved, err := repos.Items.Save(ctx, it)
	if err != nil {
		return nil, err
	}

	s.logger.Info("item created", zap.Int64("item_id", saved.ID()), zap.Int64("owner_id", ownerID))
	result := toItemDTO(saved)
	return &result, nil
}

// UpdateItem applies a partial update. Only the owner may change an item.
func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID int64, req UpdateItemRequest) (*ItemDTO, error) {
	var updated *itemDomain.Item
	err := s.uow.WithinTx(ctx, func(tx *repository.Repositories) error {
		it, err := tx.Items.FindByID(ctx, itemID)
		if err != nil {
			return err
		}
		if !it.IsOwnedBy(ownerID) {
			return domain.NewForbiddenError("only the owner can update an item")
		}

		patch := itemDomain.Patch{Name: req.Name, Description: req.Description, Available: req.Available}
		if err := it.Update(patch, s.clock()); err != nil {
			return err
		}
		if err := tx.Items.Update(ctx, it); err != nil {
			return err
		}
		updated = it
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("item updated", zap.Int64("item_id", itemID), zap.Int64("owner_id", ownerID))
	result := toItemDTO(updated)
	return &result, nil
}

// GetItem returns an item with its comments. The owner also sees the last and next
// approved bookings.
func (s *ItemService) GetItem(ctx context.Context, userID, itemID int64) (*ItemDTO, error) {
	repos := s.uow.Repos()
	it, err := repos.Items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	dtos, err := s.enrich(ctx, repos, userID, []*itemDomain.Item{it})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

// ListOwnerItems returns the owner's items ordered by ID.
func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID int64) ([]ItemDTO, error) {
	repos := s.uow.Repos()
	items, err := repos.Items.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, repos, ownerID, items)
}

// SearchItems finds available items by name or description. Blank text finds nothing.
func (s *ItemService) SearchItems(ctx context.Context, text string) ([]ItemDTO, error) {
	if strings.TrimSpace(text) == "" {
		return []ItemDTO{}, nil
	}

	items, err := s.uow.Repos().Items.Search(ctx, text)
	if err != nil {
		return nil, err
	}
	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it)
	}
	return dtos, nil
}

func (s *ItemService) enrich(ctx context.Context, repos *repository.Repositories, viewerID int64, items []*itemDomain.Item) ([]ItemDTO, error) {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID()
	}
	comments, err := repos.Comments.FindByItemIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	authors := map[int64]string{}
	now := s.clock()
	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dto := toItemDTO(it)
		dto.Comments, err = s.commentDTOs(ctx, repos, comments[it.ID()], authors)
		if err != nil {
			return nil, err
		}

		if it.IsOwnedBy(viewerID) {
			approved, err := repos.Bookings.FindByItemID(ctx, it.ID(), bookingDomain.StatusApproved)
			if err != nil {
				return nil, fmt.Errorf("failed to load item bookings: %w", err)
			}
			dto.LastBooking, dto.NextBooking = lastAndNext(approved, now)
		}
		dtos[i] = dto
	}
	return dtos, nil
}

func (s *ItemService) commentDTOs(ctx context.Context, repos *repository.Repositories, comments []*commentDomain.Comment, authors map[int64]string) ([]CommentDTO, error) {
	dtos := make([]CommentDTO, len(comments))
	for i, c := range comments {
		name, ok := authors[c.AuthorID()]
		if !ok {
			u, err := repos.Users.FindByID(ctx, c.AuthorID())
			switch {
			case err == nil:
				name = u.Name
			case !domain.IsKind(err, domain.KindNotFound):
				return nil, err
			}
			authors[c.AuthorID()] = name
		}
		dtos[i] = toCommentDTO(c, name)
	}
	return dtos, nil
}

// lastAndNext picks the latest approved booking that has started and the earliest
// one that has not.
func lastAndNext(approved []*bookingDomain.Booking, now time.Time) (last, next *BookingShortDTO) {
	var lastBk, nextBk *bookingDomain.Booking
	for _, bk := range approved {
		if bk.Start().After(now) {
			if nextBk == nil || bk.Start().Before(nextBk.Start()) {
				nextBk = bk
			}
			continue
		}
		if lastBk == nil || bk.Start().After(lastBk.Start()) {
			lastBk = bk
		}
	}
	return toBookingShortDTO(lastBk), toBookingShortDTO(nextBk)
}

func toBookingShortDTO(bk *bookingDomain.Booking) *BookingShortDTO {
	if bk == nil {
		return nil
	}
	return &BookingShortDTO{ID: bk.ID(), BookerID: bk.BookerID(), Start: bk.Start(), End: bk.End()}
}

func toItemDTO(it *itemDomain.Item) ItemDTO {
	var requestID *int64
	if id := it.RequestID(); id != 0 {
		requestID = &id
	}
	return ItemDTO{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		RequestID:   requestID,
		Comments:    []CommentDTO{},
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	}
}

func systemClock() time.Time { return time.Now().UTC() }
