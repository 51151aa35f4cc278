package booking

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shareit-platform/service-booking/pkg/domain"
)

type fakeItems map[int64]ItemRef

func (f fakeItems) LookupItem(_ context.Context, itemID int64) (ItemRef, error) {
	item, ok := f[itemID]
	if !ok {
		return ItemRef{}, domain.NewNotFoundError("Item", strconv.FormatInt(itemID, 10))
	}
	return item, nil
}

type memoryBookings struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*Booking
	owners map[int64]int64 // item ID -> owner ID
}

func newMemoryBookings(items fakeItems) *memoryBookings {
	owners := make(map[int64]int64, len(items))
	for id, it := range items {
		owners[id] = it.OwnerID
	}
	return &memoryBookings{rows: map[int64]*Booking{}, owners: owners}
}

func clone(b *Booking) *Booking {
	c := *b
	return &c
}

func (m *memoryBookings) FindByID(_ context.Context, id int64) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, newBookingNotFoundError(id)
	}
	return clone(b), nil
}

func (m *memoryBookings) filter(keep func(*Booking) bool) []*Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Booking
	for _, b := range m.rows {
		if keep(b) {
			out = append(out, clone(b))
		}
	}
	return out
}

func (m *memoryBookings) FindByItemID(_ context.Context, itemID int64, statuses ...BookingStatus) ([]*Booking, error) {
	return m.filter(func(b *Booking) bool {
		if b.ItemID() != itemID {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if b.Status() == s {
				return true
			}
		}
		return false
	}), nil
}

func (m *memoryBookings) FindByBookerID(_ context.Context, bookerID int64) ([]*Booking, error) {
	return m.filter(func(b *Booking) bool { return b.BookerID() == bookerID }), nil
}

func (m *memoryBookings) FindByItemOwnerID(_ context.Context, ownerID int64) ([]*Booking, error) {
	return m.filter(func(b *Booking) bool { return m.owners[b.ItemID()] == ownerID }), nil
}

func (m *memoryBookings) ListAll(_ context.Context, _, _ int) ([]*Booking, int64, error) {
	all := m.filter(func(*Booking) bool { return true })
	return all, int64(len(all)), nil
}

func (m *memoryBookings) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, b := range m.filter(func(*Booking) bool { return true }) {
		counts[b.Status().String()]++
	}
	return counts, nil
}

func (m *memoryBookings) Save(_ context.Context, b *Booking) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	saved := ReconstructBooking(m.nextID, b.ItemID(), b.BookerID(), b.Start(), b.End(), b.Status(), b.Version(), b.CreatedAt(), b.UpdatedAt())
	m.rows[saved.ID()] = clone(saved)
	return saved, nil
}

func (m *memoryBookings) UpdateStatus(_ context.Context, b *Booking, from BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[b.ID()]
	if !ok {
		return newBookingNotFoundError(b.ID())
	}
	if cur.Status() != from {
		return newAlreadyProcessedError(cur.Status(), "update")
	}
	m.rows[b.ID()] = clone(b)
	return nil
}

// seed stores a booking directly in the given status.
func (m *memoryBookings) seed(itemID, bookerID int64, start, end time.Time, status BookingStatus) *Booking {
	b, err := m.Save(context.Background(), ReconstructBooking(0, itemID, bookerID, start, end, status, 1, start, start))
	if err != nil {
		panic(err)
	}
	return b
}

var base = time.Date(2030, time.March, 1, 10, 0, 0, 0, time.UTC)

func at(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }
