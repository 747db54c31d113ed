package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/marchal/traiteur/internal/domain"
)

type ZoneRepo struct{ db *gorm.DB }

func NewZoneRepo(db *gorm.DB) *ZoneRepo { return &ZoneRepo{db: db} }

func (r *ZoneRepo) List(ctx context.Context) ([]domain.DeliveryZone, error) {
	var list []domain.DeliveryZone
	if err := r.db.WithContext(ctx).Order("min_km asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ZoneRepo) Replace(ctx context.Context, zones []domain.DeliveryZone) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.DeliveryZone{}).Error; err != nil {
			return err
		}
		if len(zones) == 0 {
			return nil
		}
		return tx.Create(&zones).Error
	})
}
