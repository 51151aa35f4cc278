package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingDomain "github.com/shareit-platform/service-booking/internal/domain/booking"
	"github.com/shareit-platform/service-booking/internal/testutil"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

func TestBookingService_CreateAndApprove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.bookings.CreateBooking(ctx, booker, f.request(2, 3))
	require.NoError(t, err)
	assert.Equal(t, "WAITING", created.Status)
	assert.Positive(t, created.ID)
	assert.Equal(t, booker, created.BookerID)

	approved, err := f.bookings.SetApproval(ctx, owner, created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", approved.Status)

	assert.Equal(t, []string{BookingCreated, BookingApproved}, f.publisher.types())
	assert.Equal(t, "1", f.publisher.events[0].Subject)
}

func TestBookingService_OverlapWithApprovedIsConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.bookings.CreateBooking(ctx, booker, f.request(2, 3))
	require.NoError(t, err)
	_, err = f.bookings.SetApproval(ctx, owner, a.ID, true)
	require.NoError(t, err)

	_, err = f.bookings.CreateBooking(ctx, other, f.request(2.5, 3.5))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.Equal(t, domain.CodeOverlapConflict, domain.CodeOf(err))

	// adjacent interval is free
	_, err = f.bookings.CreateBooking(ctx, other, f.request(3, 4))
	assert.NoError(t, err)
}

func TestBookingService_CancelTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.bookings.CreateBooking(ctx, booker, f.request(2, 3))
	require.NoError(t, err)

	canceled, err := f.bookings.CancelBooking(ctx, booker, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELED", canceled.Status)

	_, err = f.bookings.CancelBooking(ctx, booker, a.ID)
	assert.True(t, domain.IsKind(err, domain.KindInvalidState))

	_, err = f.bookings.SetApproval(ctx, owner, a.ID, true)
	assert.Equal(t, domain.CodeAlreadyProcessed, domain.CodeOf(err))
}

func TestBookingService_ListAfterIntervalElapsed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.bookings.CreateBooking(ctx, booker, f.request(2, 3))
	require.NoError(t, err)
	_, err = f.bookings.SetApproval(ctx, owner, a.ID, true)
	require.NoError(t, err)

	future, err := f.bookings.ListBookings(ctx, booker, bookingDomain.RoleBooker, "FUTURE")
	require.NoError(t, err)
	require.Len(t, future, 1)

	f.clock.Set(clockAt(4))

	past, err := f.bookings.ListBookings(ctx, booker, bookingDomain.RoleBooker, "PAST")
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, a.ID, past[0].ID)

	future, err = f.bookings.ListBookings(ctx, booker, bookingDomain.RoleBooker, "FUTURE")
	require.NoError(t, err)
	assert.Empty(t, future)

	owned, err := f.bookings.ListBookings(ctx, owner, bookingDomain.RoleOwner, "")
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	_, err = f.bookings.ListBookings(ctx, booker, bookingDomain.RoleBooker, "UNSUPPORTED_STATUS")
	require.Error(t, err)
	assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", err.Error())

	_, err = f.bookings.ListBookings(ctx, 404, bookingDomain.RoleBooker, "ALL")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestBookingService_ApproveThenReject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.bookings.CreateBooking(ctx, booker, f.request(2, 3))
	require.NoError(t, err)

	_, err = f.bookings.SetApproval(ctx, owner, a.ID, true)
	require.NoError(t, err)
	_, err = f.bookings.SetApproval(ctx, owner, a.ID, false)
	assert.Equal(t, domain.CodeAlreadyProcessed, domain.CodeOf(err))

	got, err := f.bookings.GetBooking(ctx, booker, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", got.Status)
}

func TestBookingService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	unavailable := testutil.SeedItem(t, f.db, owner, "Broken bike", false)

	cases := []struct {
		name  string
		actor int64
		req   CreateBookingRequest
		kind  domain.ErrorKind
		code  string
	}{
		{"end before start", booker, f.request(3, 2), domain.KindValidation, domain.CodeInvalidInterval},
		{"empty interval", booker, f.request(3, 3), domain.KindValidation, domain.CodeInvalidInterval},
		{"start in the past", booker, f.request(-1, 3), domain.KindValidation, domain.CodeInvalidInterval},
		{"unavailable item", booker, CreateBookingRequest{ItemID: unavailable, Start: clockAt(2), End: clockAt(3)}, domain.KindValidation, domain.CodeItemUnavailable},
		{"unknown item", booker, CreateBookingRequest{ItemID: 999, Start: clockAt(2), End: clockAt(3)}, domain.KindNotFound, domain.CodeNotFound},
		{"unknown booker", 404, f.request(2, 3), domain.KindNotFound, domain.CodeNotFound},
		{"unknown booker with inverted interval", 404, f.request(3, 2), domain.KindValidation, domain.CodeInvalidInterval},
		{"unknown booker with empty interval on unknown item", 404, CreateBookingRequest{ItemID: 999, Start: clockAt(3), End: clockAt(3)}, domain.KindValidation, domain.CodeInvalidInterval},
		{"owner books own item", owner, f.request(2, 3), domain.KindSelfBooking, domain.CodeSelfBooking},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.bookings.CreateBooking(ctx, tc.actor, tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.kind, domain.KindOf(err))
			assert.Equal(t, tc.code, domain.CodeOf(err))
		})
	}
	assert.Empty(t, f.publisher.types())
}

func TestBookingService_Authorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.bookings.CreateBooking(ctx, booker, f.request(2, 3))
	require.NoError(t, err)

	_, err = f.bookings.SetApproval(ctx, booker, a.ID, true)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	_, err = f.bookings.CancelBooking(ctx, owner, a.ID)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	_, err = f.bookings.GetBooking(ctx, other, a.ID)
	assert.True(t, domain.IsKind(err, domain.KindForbidden))

	_, err = f.bookings.GetBooking(ctx, owner, a.ID)
	assert.NoError(t, err)

	_, err = f.bookings.SetApproval(ctx, owner, 999, true)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestBookingService_PublishFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.publisher.fail = true

	created, err := f.bookings.CreateBooking(context.Background(), booker, f.request(2, 3))
	require.NoError(t, err)
	assert.Equal(t, "WAITING", created.Status)
}

func TestBookingService_ConcurrentDecisionsSingleWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.bookings.CreateBooking(ctx, booker, f.request(2, 3))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = f.bookings.SetApproval(ctx, owner, a.ID, true)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = f.bookings.CancelBooking(ctx, booker, a.ID)
	}()
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, domain.CodeAlreadyProcessed, domain.CodeOf(err))
	}
	assert.Equal(t, 1, succeeded)
}

func TestBookingService_ConcurrentOverlappingApprovals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const n = 4
	ids := make([]int64, n)
	for i := range ids {
		b, err := f.bookings.CreateBooking(ctx, booker, f.request(2+float64(i)*0.25, 3+float64(i)*0.25))
		require.NoError(t, err)
		ids[i] = b.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			_, errs[i] = f.bookings.SetApproval(ctx, owner, id, true)
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, domain.CodeOverlapConflict, domain.CodeOf(err))
	}
	assert.Equal(t, 1, succeeded)
	assertNoApprovedOverlap(t, f)
}

func TestBookingService_ConcurrentCreateAndApprove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.bookings.CreateBooking(ctx, booker, f.request(2, 3))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var createErr, approveErr error
	var createdID int64
	wg.Add(2)
	go func() {
		defer wg.Done()
		b, err := f.bookings.CreateBooking(ctx, other, f.request(2.5, 3.5))
		createErr = err
		if err == nil {
			createdID = b.ID
		}
	}()
	go func() {
		defer wg.Done()
		_, approveErr = f.bookings.SetApproval(ctx, owner, a.ID, true)
	}()
	wg.Wait()

	require.NoError(t, approveErr)
	if createErr != nil {
		assert.Equal(t, domain.CodeOverlapConflict, domain.CodeOf(createErr))
		return
	}
	// the creation won the item lock; its booking can never be approved now
	_, err = f.bookings.SetApproval(ctx, owner, createdID, true)
	assert.Equal(t, domain.CodeOverlapConflict, domain.CodeOf(err))
	assertNoApprovedOverlap(t, f)
}

func TestBookingService_ConcurrentOverlappingCreationsBothWait(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var wg sync.WaitGroup
	results := make([]*BookingDTO, 2)
	errs := make([]error, 2)
	for i, actor := range []int64{booker, other} {
		wg.Add(1)
		go func(i int, actor int64) {
			defer wg.Done()
			results[i], errs[i] = f.bookings.CreateBooking(ctx, actor, f.request(2, 4))
		}(i, actor)
	}
	wg.Wait()

	// only approved bookings block creation
	for i := range errs {
		require.NoError(t, errs[i])
		assert.Equal(t, "WAITING", results[i].Status)
	}

	_, err := f.bookings.SetApproval(ctx, owner, results[0].ID, true)
	require.NoError(t, err)
	_, err = f.bookings.SetApproval(ctx, owner, results[1].ID, true)
	assert.Equal(t, domain.CodeOverlapConflict, domain.CodeOf(err))
	assertNoApprovedOverlap(t, f)
}

func TestBookingService_AdminViews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.bookings.CreateBooking(ctx, booker, f.request(2, 3))
	require.NoError(t, err)
	_, err = f.bookings.CreateBooking(ctx, other, f.request(5, 6))
	require.NoError(t, err)
	_, err = f.bookings.SetApproval(ctx, owner, a.ID, false)
	require.NoError(t, err)

	page, err := f.bookings.ListAllBookings(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Greater(t, page.Items[0].ID, page.Items[1].ID)

	second, err := f.bookings.ListAllBookings(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, second.TotalPages)
	require.Len(t, second.Items, 1)
	assert.Equal(t, a.ID, second.Items[0].ID)

	stats, err := f.bookings.GetBookingStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.ByStatus["REJECTED"])
	assert.Equal(t, int64(1), stats.ByStatus["WAITING"])
}

func assertNoApprovedOverlap(t *testing.T, f *fixture) {
	t.Helper()
	approved, err := f.store.Repos().Bookings.FindByItemID(context.Background(), f.itemID, bookingDomain.StatusApproved)
	require.NoError(t, err)
	for i := range approved {
		for j := i + 1; j < len(approved); j++ {
			assert.False(t, approved[i].Interval().Overlaps(approved[j].Interval()),
				"approved bookings %d and %d overlap", approved[i].ID(), approved[j].ID())
		}
	}
}
