package booking

import (
	"time"

	"github.com/shareit-platform/service-booking/pkg/domain"
)

// Booking is the aggregate root for the booking domain. Apart from its status
// (and the bookkeeping that goes with it) a booking never changes after creation.
type Booking struct {
	id       int64
	itemID   int64
	bookerID int64
	interval Interval
	status   BookingStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate with status=WAITING. The ID is issued
// by the store when the booking is saved.
func NewBooking(itemID, bookerID int64, interval Interval, now time.Time) (*Booking, error) {
	if itemID <= 0 {
		return nil, domain.NewValidationError("item ID is required")
	}
	if bookerID <= 0 {
		return nil, domain.NewValidationError("booker ID is required")
	}
	if !interval.IsValid() {
		return nil, domain.NewValidationErrorWithCode(domain.CodeInvalidInterval, "booking start must be before its end")
	}

	now = now.UTC()
	return &Booking{
		itemID:    itemID,
		bookerID:  bookerID,
		interval:  interval,
		status:    StatusWaiting,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, itemID, bookerID int64,
	start, end time.Time,
	status BookingStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		itemID:    itemID,
		bookerID:  bookerID,
		interval:  NewInterval(start, end),
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's store-issued identifier, zero before it is saved.
func (b *Booking) ID() int64 { return b.id }

// ItemID returns the booked item's ID.
func (b *Booking) ItemID() int64 { return b.itemID }

// BookerID returns the ID of the user who requested the booking.
func (b *Booking) BookerID() int64 { return b.bookerID }

// Interval returns the booked period.
func (b *Booking) Interval() Interval { return b.interval }

// Start returns the beginning of the booked period.
func (b *Booking) Start() time.Time { return b.interval.Start }

// End returns the (exclusive) end of the booked period.
func (b *Booking) End() time.Time { return b.interval.End }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Version returns the number of committed states of this booking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsBooker reports whether userID requested this booking.
func (b *Booking) IsBooker(userID int64) bool {
	return b.bookerID == userID
}

// Apply moves the booking along action and returns the status it left.
func (b *Booking) Apply(action Action, now time.Time) (BookingStatus, error) {
	from := b.status
	to, err := from.Apply(action)
	if err != nil {
		return from, err
	}
	b.status = to
	b.version++
	b.updatedAt = now.UTC()
	return from, nil
}
