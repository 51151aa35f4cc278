package booking

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shareit-platform/service-booking/pkg/domain"
)

// Role selects whose bookings are listed.
type Role string

const (
	RoleBooker Role = "BOOKER"
	RoleOwner  Role = "OWNER"
)

// State is a listing filter: a temporal bucket relative to now, or a status.
type State string

const (
	StateAll      State = "ALL"
	StateCurrent  State = "CURRENT"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
)

// ParseState parses a listing filter. The empty string means ALL.
func ParseState(s string) (State, error) {
	if s == "" {
		return StateAll, nil
	}
	state := State(strings.ToUpper(s))
	switch state {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return state, nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("Unknown state: %s", s))
}

// Matches reports whether b falls into the filter at time now.
func (s State) Matches(b *Booking, now time.Time) bool {
	switch s {
	case StateAll:
		return true
	case StateCurrent:
		return b.Interval().Contains(now)
	case StatePast:
		return b.End().Before(now)
	case StateFuture:
		return b.Start().After(now)
	case StateWaiting:
		return b.Status() == StatusWaiting
	case StateRejected:
		return b.Status() == StatusRejected
	}
	return false
}

// QueryEngine answers booking listings for a user.
type QueryEngine struct {
	bookings BookingRepository
}

// NewQueryEngine creates a QueryEngine.
func NewQueryEngine(bookings BookingRepository) *QueryEngine {
	return &QueryEngine{bookings: bookings}
}

// List returns the user's bookings in the given role that match state at now,
// most recent start first.
func (q *QueryEngine) List(ctx context.Context, userID int64, role Role, state State, now time.Time) ([]*Booking, error) {
	var (
		all []*Booking
		err error
	)
	switch role {
	case RoleBooker:
		all, err = q.bookings.FindByBookerID(ctx, userID)
	case RoleOwner:
		all, err = q.bookings.FindByItemOwnerID(ctx, userID)
	default:
		return nil, domain.NewValidationError(fmt.Sprintf("unknown role: %s", role))
	}
	if err != nil {
		return nil, err
	}

	result := make([]*Booking, 0, len(all))
	for _, b := range all {
		if state.Matches(b, now) {
			result = append(result, b)
		}
	}
	SortByStartDesc(result)
	return result, nil
}

// SortByStartDesc orders bookings by start descending, then by ID descending.
func SortByStartDesc(bookings []*Booking) {
	slices.SortFunc(bookings, func(a, b *Booking) int {
		if c := b.Start().Compare(a.Start()); c != 0 {
			return c
		}
		return cmp.Compare(b.ID(), a.ID())
	})
}
