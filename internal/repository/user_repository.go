package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	userDomain "github.com/shareit-platform/service-booking/internal/domain/user"
	"github.com/shareit-platform/service-booking/pkg/domain"
)

// UserModel is the GORM model for the users projection table. IDs come from the
// account service, so they are not generated here.
type UserModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	Email     string    `gorm:"size:512"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (UserModel) TableName() string { return "users" }

// GormUserRepository implements the user projection repository.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Upsert inserts the user or overwrites the projected fields.
func (r *GormUserRepository) Upsert(ctx context.Context, u *userDomain.User) error {
	model := UserModel{ID: u.ID, Name: u.Name, Email: u.Email, UpdatedAt: u.UpdatedAt}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&model).Error
	return translateError(err, "failed to upsert user")
}

// FindByID retrieves a projected user by ID.
func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*userDomain.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", fmt.Sprint(id))
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &userDomain.User{ID: model.ID, Name: model.Name, Email: model.Email, UpdatedAt: model.UpdatedAt}, nil
}

// UserExists reports whether the projection knows the user.
func (r *GormUserRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}
