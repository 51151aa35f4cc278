package item

import (
	"strings"
	"time"

	"github.com/shareit-platform/service-booking/pkg/domain"
)

// Item is the aggregate root for a thing a user lends out.
type Item struct {
	id          int64
	ownerID     int64
	name        string
	description string
	available   bool
	requestID   int64
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewItem creates a new item with validated fields. The ID is issued by the store.
func NewItem(ownerID int64, name, description string, available bool, now time.Time) (*Item, error) {
	if ownerID <= 0 {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("item name is required")
	}
	if strings.TrimSpace(description) == "" {
		return nil, domain.NewValidationError("item description is required")
	}

	now = now.UTC()
	return &Item{
		ownerID:     ownerID,
		name:        strings.TrimSpace(name),
		description: strings.TrimSpace(description),
		available:   available,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds an Item from persistence data (no validation). A zero
// requestID means the item was not listed in answer to a request.
func Reconstruct(
	id, ownerID int64,
	name, description string,
	available bool,
	requestID int64,
	version int64,
	createdAt, updatedAt time.Time,
) *Item {
	return &Item{
		id:          id,
		ownerID:     ownerID,
		name:        name,
		description: description,
		available:   available,
		requestID:   requestID,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (i *Item) ID() int64            { return i.id }
func (i *Item) OwnerID() int64       { return i.ownerID }
func (i *Item) Name() string         { return i.name }
func (i *Item) Description() string  { return i.description }
func (i *Item) Available() bool      { return i.available }
func (i *Item) RequestID() int64     { return i.requestID }
func (i *Item) Version() int64       { return i.version }
func (i *Item) CreatedAt() time.Time { return i.createdAt }
func (i *Item) UpdatedAt() time.Time { return i.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the item belongs to the given user.
func (i *Item) IsOwnedBy(userID int64) bool {
	return i.ownerID == userID
}

// AnswerRequest links the item to the item request it was listed for.
func (i *Item) AnswerRequest(requestID int64) error {
	if requestID <= 0 {
		return domain.NewValidationError("request ID must be positive")
	}
	i.requestID = requestID
	return nil
}

// Patch holds the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Name        *string
	Description *string
	Available   *bool
}

// Update applies a partial update. Names and descriptions are trimmed; blank ones
// are rejected.
func (i *Item) Update(p Patch, now time.Time) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return domain.NewValidationError("item name must not be blank")
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return domain.NewValidationError("item description must not be blank")
	}

	if p.Name != nil {
		i.name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		i.description = strings.TrimSpace(*p.Description)
	}
	if p.Available != nil {
		i.available = *p.Available
	}
	i.version++
	i.updatedAt = now.UTC()
	return nil
}
