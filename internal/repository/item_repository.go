package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit-platform/service-booking/internal/domain/item"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

// ItemModel is the GORM model for the items table.
type ItemModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	OwnerID     int64     `gorm:"not null;index"`
	Name        string    `gorm:"size:255;not null"`
	Description string    `gorm:"size:2000;not null"`
	Available   bool      `gorm:"not null"`
	RequestID   *int64    `gorm:"index"`
	Version     int64     `gorm:"not null;default:1"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (ItemModel) TableName() string { return "items" }

// GormItemRepository implements ItemRepository and the booking engine's ItemLookup.
// A repository created with lockRows takes a row lock on every lookup; it must only
// be used inside a transaction.
type GormItemRepository struct {
	db       *gorm.DB
	lockRows bool
}

// NewGormItemRepository creates a GormItemRepository that takes no row locks.
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// newLockingItemRepository creates a repository for use inside the transaction tx.
func newLockingItemRepository(tx *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: tx, lockRows: true}
}

// FindByID retrieves an item by its ID, locking the row when the repository locks.
func (r *GormItemRepository) FindByID(ctx context.Context, id int64) (*itemDomain.Item, error) {
	var model ItemModel
	if err := r.query(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Item", fmt.Sprint(id))
		}
		return nil, fmt.Errorf("failed to find item by ID: %w", err)
	}
	return toItemDomain(&model), nil
}

// LookupItem resolves the owner and availability of an item.
func (r *GormItemRepository) LookupItem(ctx context.Context, itemID int64) (bookingDomain.ItemRef, error) {
	it, err := r.FindByID(ctx, itemID)
	if err != nil {
		return bookingDomain.ItemRef{}, err
	}
	return bookingDomain.ItemRef{ID: it.ID(), OwnerID: it.OwnerID(), Available: it.Available()}, nil
}

// FindByOwnerID returns the owner's items ordered by ID.
func (r *GormItemRepository) FindByOwnerID(ctx context.Context, ownerID int64) ([]*itemDomain.Item, error) {
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner items: %w", err)
	}
	return toItemDomains(models), nil
}

// Search matches text against name and description of available items, ignoring case.
func (r *GormItemRepository) Search(ctx context.Context, text string) ([]*itemDomain.Item, error) {
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"

	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("available = ?", true).
		Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern).
		Order("id").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return toItemDomains(models), nil
}

// FindByRequestIDs returns items answering the given requests, grouped by request ID.
func (r *GormItemRepository) FindByRequestIDs(ctx context.Context, requestIDs []int64) (map[int64][]*itemDomain.Item, error) {
	result := make(map[int64][]*itemDomain.Item, len(requestIDs))
	if len(requestIDs) == 0 {
		return result, nil
	}

	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("request_id IN ?", requestIDs).
		Order("id").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find items by request: %w", err)
	}
	for _, it := range toItemDomains(models) {
		result[it.RequestID()] = append(result[it.RequestID()], it)
	}
	return result, nil
}

// Save persists a new item and returns it with its store-issued ID.
func (r *GormItemRepository) Save(ctx context.Context, it *itemDomain.Item) (*itemDomain.Item, error) {
	model := toItemModel(it)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, translateError(err, "failed to save item")
	}
	return toItemDomain(model), nil
}

// Update persists an item with optimistic locking on its version.
func (r *GormItemRepository) Update(ctx context.Context, it *itemDomain.Item) error {
	previousVersion := it.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&ItemModel{}).
		Where("id = ? AND version = ?", it.ID(), previousVersion).
		Updates(map[string]interface{}{
			"name":        it.Name(),
			"description": it.Description(),
			"available":   it.Available(),
			"version":     it.Version(),
			"updated_at":  it.UpdatedAt(),
		})

	if result.Error != nil {
		return translateError(result.Error, "failed to update item")
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("item was modified by another transaction")
	}
	return nil
}

func (r *GormItemRepository) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	// SQLite has no row locks; its writers are serialized by the database lock.
	if r.lockRows && q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// --- Conversions ---

func toItemModel(it *itemDomain.Item) *ItemModel {
	var requestID *int64
	if id := it.RequestID(); id != 0 {
		requestID = &id
	}
	return &ItemModel{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		RequestID:   requestID,
		Version:     it.Version(),
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	}
}

func toItemDomain(m *ItemModel) *itemDomain.Item {
	var requestID int64
	if m.RequestID != nil {
		requestID = *m.RequestID
	}
	return itemDomain.Reconstruct(
		m.ID, m.OwnerID,
		m.Name, m.Description,
		m.Available,
		requestID,
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}

func toItemDomains(models []ItemModel) []*itemDomain.Item {
	items := make([]*itemDomain.Item, len(models))
	for i := range models {
		items[i] = toItemDomain(&models[i])
	}
	return items
}
