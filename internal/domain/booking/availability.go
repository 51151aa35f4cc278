package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/shareit-platform/service-booking/pkg/domain"
)

// AvailabilityChecker decides whether a new booking may be created. It only reads
// committed state; the caller runs Check and the insert in one transaction.
type AvailabilityChecker struct {
	items    ItemLookup
	bookings BookingRepository
}

// NewAvailabilityChecker creates an AvailabilityChecker.
func NewAvailabilityChecker(items ItemLookup, bookings BookingRepository) *AvailabilityChecker {
	return &AvailabilityChecker{items: items, bookings: bookings}
}

// Check validates, in order: the interval, the item's availability, that the booker
// is not the owner, and that no approved booking on the item overlaps the interval.
func (c *AvailabilityChecker) Check(ctx context.Context, itemID, bookerID int64, interval Interval, now time.Time) error {
	if !interval.IsValid() {
		return domain.NewValidationErrorWithCode(domain.CodeInvalidInterval, "booking start must be before its end")
	}
	if interval.Start.Before(now) {
		return domain.NewValidationErrorWithCode(domain.CodeInvalidInterval, "booking cannot start in the past")
	}

	item, err := c.items.LookupItem(ctx, itemID)
	if err != nil {
		return err
	}
	if !item.Available {
		return domain.NewValidationErrorWithCode(domain.CodeItemUnavailable, fmt.Sprintf("item %d is not available for booking", itemID))
	}

	if item.IsOwnedBy(bookerID) {
		return domain.NewSelfBookingError("owner cannot book their own item")
	}

	approved, err := c.bookings.FindByItemID(ctx, itemID, StatusApproved)
	if err != nil {
		return fmt.Errorf("failed to load approved bookings: %w", err)
	}
	if clash := firstOverlap(approved, interval, 0); clash != nil {
		return domain.NewOverlapError(fmt.Sprintf("item %d is already booked from %s to %s",
			itemID, clash.Start().Format(time.RFC3339), clash.End().Format(time.RFC3339)))
	}
	return nil
}

// firstOverlap returns the first approved booking other than skipID whose interval overlaps interval.
func firstOverlap(bookings []*Booking, interval Interval, skipID int64) *Booking {
	for _, b := range bookings {
		if b.ID() == skipID || b.Status() != StatusApproved {
			continue
		}
		if b.Interval().Overlaps(interval) {
			return b
		}
	}
	return nil
}
