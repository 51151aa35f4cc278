package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	requestDomain "github.com/shareit-platform/service-booking/internal/domain/request"
	"github.com/shareit-platform/service-booking/internal/repository"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

// CreateItemRequestRequest is the request DTO for asking for an item.
type CreateItemRequestRequest struct {
	Description string `json:"description" binding:"required,notblank"`
}

// RequestItemDTO is an item listed in answer to a request.
type RequestItemDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	OwnerID   int64  `json:"owner_id"`
	Available bool   `json:"available"`
}

// ItemRequestDTO is the response representation of an item request.
type ItemRequestDTO struct {
	ID          int64            `json:"id"`
	Description string           `json:"description"`
	RequesterID int64            `json:"requester_id"`
	Created     time.Time        `json:"created"`
	Items       []RequestItemDTO `json:"items"`
}

// ItemRequestService handles requests for items nobody lists yet.
type ItemRequestService struct {
	uow    UnitOfWork
	clock  func() time.Time
	logger *zap.Logger
}

// NewItemRequestService creates a new ItemRequestService. A nil clock means the wall clock.
func NewItemRequestService(uow UnitOfWork, clock func() time.Time, logger *zap.Logger) *ItemRequestService {
	if clock == nil {
		clock = systemClock
	}
	return &ItemRequestService{uow: uow, clock: clock, logger: logger}
}

// CreateRequest records a new request from requesterID.
func (s *ItemRequestService) CreateRequest(ctx context.Context, requesterID int64, req CreateItemRequestRequest) (*ItemRequestDTO, error) {
	ir, err := requestDomain.NewItemRequest(requesterID, req.Description, s.clock())
	if err != nil {
		return nil, err
	}

	repos := s.uow.Repos()
	if err := requireUser(ctx, repos.Users, requesterID); err != nil {
		return nil, err
	}
	saved, err := repos.Requests.Save(ctx, ir)
	if err != nil {
		return nil, err
	}

	s.logger.Info("item request created", zap.Int64("request_id", saved.ID()), zap.Int64("requester_id", requesterID))
	result := toItemRequestDTO(saved, nil)
	return &result, nil
}

// ListOwnRequests returns the user's requests with their answers, newest first.
func (s *ItemRequestService) ListOwnRequests(ctx context.Context, userID int64) ([]ItemRequestDTO, error) {
	repos := s.uow.Repos()
	if err := requireUser(ctx, repos.Users, userID); err != nil {
		return nil, err
	}

	requests, err := repos.Requests.FindByRequesterID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return withAnswers(ctx, repos, requests)
}

// ListAllRequests returns other users' requests, newest first, skipping from rows and
// returning at most size.
func (s *ItemRequestService) ListAllRequests(ctx context.Context, userID int64, from, size int) ([]ItemRequestDTO, error) {
	if from < 0 {
		return nil, domain.NewValidationError("from must not be negative")
	}
	if size <= 0 {
		return nil, domain.NewValidationError("size must be positive")
	}

	repos := s.uow.Repos()
	if err := requireUser(ctx, repos.Users, userID); err != nil {
		return nil, err
	}

	requests, err := repos.Requests.FindOthers(ctx, userID, from, size)
	if err != nil {
		return nil, err
	}
	return withAnswers(ctx, repos, requests)
}

// GetRequest returns one request with its answers. Any known user may read it.
func (s *ItemRequestService) GetRequest(ctx context.Context, userID, requestID int64) (*ItemRequestDTO, error) {
	repos := s.uow.Repos()
	if err := requireUser(ctx, repos.Users, userID); err != nil {
		return nil, err
	}

	ir, err := repos.Requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	dtos, err := withAnswers(ctx, repos, []*requestDomain.ItemRequest{ir})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

func withAnswers(ctx context.Context, repos *repository.Repositories, requests []*requestDomain.ItemRequest) ([]ItemRequestDTO, error) {
	ids := make([]int64, len(requests))
	for i, ir := range requests {
		ids[i] = ir.ID()
	}
	answers, err := repos.Items.FindByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	dtos := make([]ItemRequestDTO, len(requests))
	for i, ir := range requests {
		dtos[i] = toItemRequestDTO(ir, answers[ir.ID()])
	}
	return dtos, nil
}

func toItemRequestDTO(ir *requestDomain.ItemRequest, items []*itemDomain.Item) ItemRequestDTO {
	dto := ItemRequestDTO{
		ID:          ir.ID(),
		Description: ir.Description(),
		RequesterID: ir.RequesterID(),
		Created:     ir.CreatedAt(),
		Items:       make([]RequestItemDTO, len(items)),
	}
	for i, it := range items {
		dto.Items[i] = RequestItemDTO{ID: it.ID(), Name: it.Name(), OwnerID: it.OwnerID(), Available: it.Available()}
	}
	return dto
}
