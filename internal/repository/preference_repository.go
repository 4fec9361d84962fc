package repository

import (
	"context"
	"errors"

	"github.com/chachabrian/homefix-backend/internal/models"
	"gorm.io/gorm"
)

type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns the user's preferences, creating the defaults on first access.
func (r *PreferenceRepository) Get(ctx context.Context, userID uint) (*models.NotificationPreference, error) {
	var prefs models.NotificationPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&prefs).Error
	if err == nil {
		return &prefs, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	defaults := models.DefaultPreferences(userID)
	if err := r.db.WithContext(ctx).Create(defaults).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.Get(ctx, userID)
		}
		return nil, err
	}
	return defaults, nil
}

func (r *PreferenceRepository) Save(ctx context.Context, prefs *models.NotificationPreference) error {
	return r.db.WithContext(ctx).Save(prefs).Error
}
