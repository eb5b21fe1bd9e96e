package repository

import (
	"context"
	"errors"
	"time"

	"paypalexpress/internal/domain"

	"gorm.io/gorm"
)

const settingsRowID = 1

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the stored settings row, or nil when none was ever saved.
func (r *SettingsRepository) Get(ctx context.Context) (*domain.PayPalSettings, error) {
	var s domain.PayPalSettings
	err := r.db.WithContext(ctx).First(&s, settingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s *domain.PayPalSettings) error {
	s.ID = settingsRowID
	s.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(s).Error
}
