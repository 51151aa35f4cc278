package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/shareit-platform/service-booking/pkg/domain"
)

// StateMachine applies status transitions on behalf of an actor. Owner-only and
// booker-only rules are predicates on the resolved item and booking.
type StateMachine struct {
	bookings BookingRepository
	items    ItemLookup
}

// NewStateMachine creates a StateMachine.
func NewStateMachine(bookings BookingRepository, items ItemLookup) *StateMachine {
	return &StateMachine{bookings: bookings, items: items}
}

// ApproveOrReject lets the item's owner decide on a waiting booking.
func (m *StateMachine) ApproveOrReject(ctx context.Context, bookingID, actorID int64, approve bool, now time.Time) (*Booking, error) {
	bk, err := m.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	item, err := m.items.LookupItem(ctx, bk.ItemID())
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(actorID) {
		return nil, domain.NewForbiddenError("only the item owner can approve or reject a booking")
	}

	action := ActionFor(approve)
	if _, err := bk.Status().Apply(action); err != nil {
		return nil, err
	}

	if approve {
		approved, err := m.bookings.FindByItemID(ctx, bk.ItemID(), StatusApproved)
		if err != nil {
			return nil, fmt.Errorf("failed to load approved bookings: %w", err)
		}
		if clash := firstOverlap(approved, bk.Interval(), bk.ID()); clash != nil {
			return nil, domain.NewOverlapError(fmt.Sprintf("booking %d overlaps approved booking %d", bk.ID(), clash.ID()))
		}
	}

	return m.commit(ctx, bk, action, now)
}

// Cancel lets the booker withdraw a booking that is still waiting.
func (m *StateMachine) Cancel(ctx context.Context, bookingID, actorID int64, now time.Time) (*Booking, error) {
	bk, err := m.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsBooker(actorID) {
		return nil, domain.NewForbiddenError("only the booker can cancel a booking")
	}
	return m.commit(ctx, bk, ActionCancel, now)
}

// Get returns a booking to its booker or to the owner of the booked item.
func (m *StateMachine) Get(ctx context.Context, bookingID, actorID int64) (*Booking, error) {
	bk, err := m.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.IsBooker(actorID) {
		return bk, nil
	}

	item, err := m.items.LookupItem(ctx, bk.ItemID())
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(actorID) {
		return nil, domain.NewForbiddenError("only the booker or the item owner can view a booking")
	}
	return bk, nil
}

func (m *StateMachine) commit(ctx context.Context, bk *Booking, action Action, now time.Time) (*Booking, error) {
	from, err := bk.Apply(action, now)
	if err != nil {
		return nil, err
	}
	if err := m.bookings.UpdateStatus(ctx, bk, from); err != nil {
		return nil, err
	}
	return bk, nil
}
