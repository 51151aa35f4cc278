// Package request holds item requests: a user describes something they want to
// borrow, and owners may list items in answer.
package request

import (
	"strings"
	"time"

	"github.com/shareit-platform/service-booking/pkg/domain"
)

// ItemRequest is a user's call for an item nobody lists yet.
type ItemRequest struct {
	id          int64
	requesterID int64
	description string
	createdAt   time.Time
}

// NewItemRequest creates a request with a trimmed, non-blank description.
func NewItemRequest(requesterID int64, description string, now time.Time) (*ItemRequest, error) {
	if requesterID <= 0 {
		return nil, domain.NewValidationError("requester ID is required")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, domain.NewValidationError("request description must not be blank")
	}
	return &ItemRequest{
		requesterID: requesterID,
		description: description,
		createdAt:   now.UTC(),
	}, nil
}

// Reconstruct rebuilds an ItemRequest from persistence.
func Reconstruct(id, requesterID int64, description string, createdAt time.Time) *ItemRequest {
	return &ItemRequest{
		id:          id,
		requesterID: requesterID,
		description: description,
		createdAt:   createdAt,
	}
}

func (r *ItemRequest) ID() int64            { return r.id }
func (r *ItemRequest) RequesterID() int64   { return r.requesterID }
func (r *ItemRequest) Description() string  { return r.description }
func (r *ItemRequest) CreatedAt() time.Time { return r.createdAt }

// IsRequestedBy reports whether userID created the request.
func (r *ItemRequest) IsRequestedBy(userID int64) bool {
	return r.requesterID == userID
}
