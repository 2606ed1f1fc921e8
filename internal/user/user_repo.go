package user

import (
	"errors"

	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/pkg/apperr"
)

// UserRepository exposes the user reads and preference writes this core needs.
type UserRepository interface {
	GetByID(id uint) (*User, error)
	UpdatePreferences(id uint, autoApprove bool, timeoutMinutes int, notify bool) (*User, error)
}

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *GormUserRepository) GetByID(id uint) (*User, error) {
	var u User
	if err := r.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "user not found")
		}
		return nil, err
	}
	return &u, nil
}

// UpdatePreferences stores a captain's approval preferences.
func (r *GormUserRepository) UpdatePreferences(id uint, autoApprove bool, timeoutMinutes int, notify bool) (*User, error) {
	if timeoutMinutes < TimeoutMinutesMin || timeoutMinutes > TimeoutMinutesMax {
		return nil, apperr.Wrapf(apperr.ErrValidation, "timeout_minutes must be between %d and %d", TimeoutMinutesMin, TimeoutMinutesMax)
	}

	u, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	err = r.db.Model(u).Updates(map[string]interface{}{
		"auto_approve_enabled":   autoApprove,
		"timeout_minutes":        timeoutMinutes,
		"notify_on_auto_approve": notify,
	}).Error
	if err != nil {
		return nil, err
	}
	return u, nil
}
