package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups the repositories that share one database handle.
type Repositories struct {
	Bookings *GormBookingRepository
	Items    *GormItemRepository
	Comments *GormCommentRepository
	Users    *GormUserRepository
	Requests *GormItemRequestRepository
}

func newRepositories(db *gorm.DB, lockItems bool) *Repositories {
	items := NewGormItemRepository(db)
	if lockItems {
		items = newLockingItemRepository(db)
	}
	return &Repositories{
		Bookings: NewGormBookingRepository(db),
		Items:    items,
		Comments: NewGormCommentRepository(db),
		Users:    NewGormUserRepository(db),
		Requests: NewGormItemRequestRepository(db),
	}
}

// Store is the single transactional entry point to persistence.
type Store struct {
	db    *gorm.DB
	repos *Repositories
}

// NewStore creates a Store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, repos: newRepositories(db, false)}
}

// Repos returns repositories that run each call in its own implicit transaction.
// Use them for reads that tolerate slightly stale data.
func (s *Store) Repos() *Repositories {
	return s.repos
}

// WithinTx runs fn in a transaction. Item lookups made through the supplied
// repositories lock the item row until the transaction ends, which serializes
// writers per item. The transaction commits only if fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(tx *Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx, true))
	})
}

// AutoMigrate creates or updates the tables for all models. Production schemas are
// managed by SQL migrations; this is used in development and tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserModel{}, &ItemRequestModel{}, &ItemModel{}, &BookingModel{}, &CommentModel{})
}
