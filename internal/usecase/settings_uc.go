package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/marchal/traiteur/internal/domain"
)

// SettingsUC maintains pricing configuration and the delivery zone table.
type SettingsUC struct {
	Settings domain.SettingsRepo
	Zones    domain.ZoneRepo
}

func (uc *SettingsUC) Get(ctx context.Context, key string) (string, bool, error) {
	return uc.Settings.Get(ctx, key)
}

func (uc *SettingsUC) Set(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("setting key")
	}
	return uc.Settings.Set(ctx, key, value)
}

func (uc *SettingsUC) ListZones(ctx context.Context) ([]domain.DeliveryZone, error) {
	return uc.Zones.List(ctx)
}

// ReplaceZones swaps the whole zone table. The new table must cover [0, max]
// without gaps or overlaps, otherwise distance resolution would be ambiguous.
func (uc *SettingsUC) ReplaceZones(ctx context.Context, zones []domain.DeliveryZone) error {
	if err := domain.ValidateZoneCoverage(zones); err != nil {
		return err
	}
	for i := range zones {
		if zones[i].ID == uuid.Nil {
			zones[i].ID = uuid.New()
		}
		zones[i].Position = i
	}
	return uc.Zones.Replace(ctx, zones)
}
