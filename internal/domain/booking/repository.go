package booking

import (
	"context"
)

// ItemRef is the part of an item the booking engine reads.
type ItemRef struct {
	ID        int64
	OwnerID   int64
	Available bool
}

// IsOwnedBy reports whether userID owns the item.
func (i ItemRef) IsOwnedBy(userID int64) bool {
	return i.OwnerID == userID
}

// ItemLookup resolves items for availability and authorization decisions.
// Implementations bound to a transaction lock the item row until commit.
type ItemLookup interface {
	// LookupItem returns the item or a not-found domain error.
	LookupItem(ctx context.Context, itemID int64) (ItemRef, error)
}

// UserLookup checks that a user is known to the platform.
type UserLookup interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its identifier.
	FindByID(ctx context.Context, id int64) (*Booking, error)

	// FindByItemID retrieves the bookings of an item, optionally only those in the given statuses.
	FindByItemID(ctx context.Context, itemID int64, statuses ...BookingStatus) ([]*Booking, error)

	// FindByBookerID retrieves every booking requested by a user.
	FindByBookerID(ctx context.Context, bookerID int64) ([]*Booking, error)

	// FindByItemOwnerID retrieves every booking on items owned by a user.
	FindByItemOwnerID(ctx context.Context, ownerID int64) ([]*Booking, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking and returns it with its store-issued ID.
	Save(ctx context.Context, booking *Booking) (*Booking, error)

	// UpdateStatus writes the booking's status only if the stored status is still from.
	UpdateStatus(ctx context.Context, booking *Booking, from BookingStatus) error
}
