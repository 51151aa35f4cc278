package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shareit-platform/service-booking/internal/repository"
	"github.com/shareit-platform/service-booking/internal/testutil"
	"github.com/shareit-platform/service-booking/pkg/kafka"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock { return &fakeClock{now: now} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	fail   bool
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

const (
	owner  int64 = 1
	booker int64 = 2
	other  int64 = 3
)

// 2030-05-01 08:00 UTC, two hours before the scenario bookings start.
var start = time.Date(2030, time.May, 1, 8, 0, 0, 0, time.UTC)

func clockAt(h float64) time.Time { return start.Add(time.Duration(h * float64(time.Hour))) }

type fixture struct {
	db        *gorm.DB
	store     *repository.Store
	clock     *fakeClock
	publisher *recordingPublisher
	bookings  *BookingService
	items     *ItemService
	comments  *CommentService
	requests  *ItemRequestService
	itemID    int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	for _, id := range []int64{owner, booker, other} {
		testutil.SeedUser(t, db, id)
	}

	store := repository.NewStore(db)
	clock := newFakeClock(start)
	pub := &recordingPublisher{}
	log := zap.NewNop()

	return &fixture{
		db:        db,
		store:     store,
		clock:     clock,
		publisher: pub,
		bookings:  NewBookingService(store, pub, log, WithClock(clock.Now)),
		items:     NewItemService(store, clock.Now, log),
		comments:  NewCommentService(store, clock.Now, log),
		requests:  NewItemRequestService(store, clock.Now, log),
		itemID:    testutil.SeedItem(t, db, owner, "Camping tent", true),
	}
}

func (f *fixture) request(fromHour, toHour float64) CreateBookingRequest {
	return CreateBookingRequest{ItemID: f.itemID, Start: clockAt(fromHour), End: clockAt(toHour)}
}
