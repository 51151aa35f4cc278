package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	requestDomain "github.com/shareit-platform/service-booking/internal/domain/request"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

// ItemRequestModel is the GORM model for the item_requests table.
type ItemRequestModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	RequesterID int64     `gorm:"not null;index"`
	Description string    `gorm:"size:2000;not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (ItemRequestModel) TableName() string { return "item_requests" }

// GormItemRequestRepository implements ItemRequestRepository using GORM.
type GormItemRequestRepository struct {
	db *gorm.DB
}

// NewGormItemRequestRepository creates a new GormItemRequestRepository.
func NewGormItemRequestRepository(db *gorm.DB) *GormItemRequestRepository {
	return &GormItemRequestRepository{db: db}
}

// Save persists a new item request and returns it with its store-issued ID.
func (r *GormItemRequestRepository) Save(ctx context.Context, req *requestDomain.ItemRequest) (*requestDomain.ItemRequest, error) {
	model := toItemRequestModel(req)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, translateError(err, "failed to save item request")
	}
	return toItemRequestDomain(&model), nil
}

// FindByID retrieves an item request by its identifier.
func (r *GormItemRequestRepository) FindByID(ctx context.Context, id int64) (*requestDomain.ItemRequest, error) {
	var model ItemRequestModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("ItemRequest", fmt.Sprint(id))
		}
		return nil, fmt.Errorf("failed to find item request: %w", err)
	}
	return toItemRequestDomain(&model), nil
}

// FindByRequesterID returns the user's own requests, newest first.
func (r *GormItemRequestRepository) FindByRequesterID(ctx context.Context, requesterID int64) ([]*requestDomain.ItemRequest, error) {
	var models []ItemRequestModel
	if err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC, id DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find item requests: %w", err)
	}
	return toItemRequestDomains(models), nil
}

// FindOthers returns one page of requests made by users other than userID, newest first.
func (r *GormItemRequestRepository) FindOthers(ctx context.Context, userID int64, offset, limit int) ([]*requestDomain.ItemRequest, error) {
	var models []ItemRequestModel
	if err := r.db.WithContext(ctx).
		Where("requester_id <> ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list item requests: %w", err)
	}
	return toItemRequestDomains(models), nil
}

func toItemRequestModel(req *requestDomain.ItemRequest) ItemRequestModel {
	return ItemRequestModel{
		ID:          req.ID(),
		RequesterID: req.RequesterID(),
		Description: req.Description(),
		CreatedAt:   req.CreatedAt(),
	}
}

func toItemRequestDomain(m *ItemRequestModel) *requestDomain.ItemRequest {
	return requestDomain.Reconstruct(m.ID, m.RequesterID, m.Description, m.CreatedAt)
}

func toItemRequestDomains(models []ItemRequestModel) []*requestDomain.ItemRequest {
	out := make([]*requestDomain.ItemRequest, len(models))
	for i := range models {
		out[i] = toItemRequestDomain(&models[i])
	}
	return out
}
