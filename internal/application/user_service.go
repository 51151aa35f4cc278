package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	userDomain "github.com/shareit-platform/service-booking/internal/domain/user"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

// UserEventData is the payload of user.* events from the account service.
type UserEventData struct {
	UserID     int64     `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserService maintains the local user projection.
type UserService struct {
	repo   userDomain.Repository
	logger *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(repo userDomain.Repository, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// ApplyUserEvent upserts the user described by a registration or profile update.
func (s *UserService) ApplyUserEvent(ctx context.Context, data UserEventData) error {
	if data.UserID <= 0 {
		return domain.NewValidationError("user event without user_id")
	}

	updatedAt := data.OccurredAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	u := &userDomain.User{
		ID:        data.UserID,
		Name:      data.Name,
		Email:     data.Email,
		UpdatedAt: updatedAt.UTC(),
	}
	if err := s.repo.Upsert(ctx, u); err != nil {
		return err
	}

	s.logger.Debug("user projected", zap.Int64("user_id", data.UserID))
	return nil
}
