// Package user holds the local projection of platform users. Accounts are owned
// by the account service; this service only learns about them from its events.
package user

import (
	"context"
	"time"
)

// User is a projected account.
type User struct {
	ID        int64
	Name      string
	Email     string
	UpdatedAt time.Time
}

// Repository stores the projection.
type Repository interface {
	Upsert(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
}
