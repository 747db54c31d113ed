package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/marchal/traiteur/internal/domain"
)

type SettingsRepo struct{ db *gorm.DB }

func NewSettingsRepo(db *gorm.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var s domain.Setting
	if err := r.db.WithContext(ctx).First(&s, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return s.Value, true, nil
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Setting
		err := tx.First(&existing, "key = ?", key).Error
		if err == nil {
			return tx.Model(&existing).Update("value", value).Error
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&domain.Setting{Key: key, Value: value}).Error
		}
		return err
	})
}
