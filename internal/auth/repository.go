package auth

import (
	"context"
	"errors"

	"beatsbook/internal/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles persistence for user accounts.
type Repository interface {
	Create(ctx context.Context, user *users.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*users.User, error)
	GetByEmail(ctx context.Context, email string) (*users.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, user *users.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new auth repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *users.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var user users.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	var user users.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ExistsByEmailOrUsername reports whether another account already uses the
// given email or username. excludeID skips the caller's own row on updates.
func (r *repository) ExistsByEmailOrUsername(ctx context.Context, email, username string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&users.User{}).
		Where("email = ? OR username = ?", email, username)
	if excludeID != uuid.Nil {
		query = query.Where("id != ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Update(ctx context.Context, user *users.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&users.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
