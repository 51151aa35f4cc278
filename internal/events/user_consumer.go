package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shareit-platform/service-booking/internal/application"
	"github.com/shareit-platform/service-booking/pkg/domain"
	"github.com/shareit-platform/service-booking/pkg/kafka"
)

// UserProjector applies user events to the local projection.
type UserProjector interface {
	ApplyUserEvent(ctx context.Context, data application.UserEventData) error
}

// UserEventConsumer listens to account events and keeps the user projection current.
type UserEventConsumer struct {
	consumer *kafka.Consumer
	users    UserProjector
	logger   *zap.Logger
}

// NewUserEventConsumer creates a new UserEventConsumer.
func NewUserEventConsumer(
	brokers []string,
	groupID string,
	users UserProjector,
	logger *zap.Logger,
) *UserEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, application.TopicUserEvents, logger)
	return &UserEventConsumer{
		consumer: consumer,
		users:    users,
		logger:   logger,
	}
}

// Start begins consuming user events. This blocks until the context is cancelled.
func (c *UserEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *UserEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *UserEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from user topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case application.UserRegistered, application.UserUpdated:
		return c.handleUserChanged(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled user event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *UserEventConsumer) handleUserChanged(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var data application.UserEventData
	if err := cloudEvent.ParseData(&data); err != nil {
		c.logger.Error("failed to parse user event data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil
	}

	if err := c.users.ApplyUserEvent(ctx, data); err != nil {
		if domain.IsKind(err, domain.KindValidation) {
			c.logger.Warn("skipping invalid user event",
				zap.String("event_id", cloudEvent.ID),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to project user",
			zap.Int64("user_id", data.UserID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
