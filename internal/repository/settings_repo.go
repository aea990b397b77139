package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"caixapos/internal/model"
)

type SettingsRepository interface {
	// FindByStore returns (nil, nil) when the store never saved settings;
	// callers fall back to defaults.
	FindByStore(ctx context.Context, storeID uuid.UUID) (*model.StoreSettings, error)
	Upsert(ctx context.Context, settings *model.StoreSettings) error
	ListPaymentMethods(ctx context.Context, storeID uuid.UUID) ([]model.PaymentMethod, error)
}

type settingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) FindByStore(ctx context.Context, storeID uuid.UUID) (*model.StoreSettings, error) {
	var settings model.StoreSettings
	err := r.db.WithContext(ctx).First(&settings, "store_id = ?", storeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, settings *model.StoreSettings) error {
	settings.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"pending_active", "preparing_active", "perishable_control", "updated_at"}),
		}).
		Create(settings).Error
}

func (r *settingsRepo) ListPaymentMethods(ctx context.Context, storeID uuid.UUID) ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND active = true", storeID).
		Order("name ASC").
		Find(&methods).Error
	if err != nil {
		return nil, err
	}
	return methods, nil
}
