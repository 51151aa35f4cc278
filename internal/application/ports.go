package application

import (
	"context"

	"github.com/shareit-platform/service-booking/internal/repository"
	"github.com/shareit-platform/service-booking/pkg/kafka"
)

// UnitOfWork hands out repositories, either bound to one transaction or not.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx *repository.Repositories) error) error
	Repos() *repository.Repositories
}

// EventPublisher delivers CloudEvents to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

const serviceName = "service-booking"

// Topics and event types produced and consumed by this service.
const (
	TopicBookingEvents = "booking.events"
	TopicUserEvents    = "user.events"

	BookingCreated  = "booking.created"
	BookingApproved = "booking.approved"
	BookingRejected = "booking.rejected"
	BookingCanceled = "booking.canceled"

	UserRegistered = "user.registered"
	UserUpdated    = "user.updated"
)
