package domain

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
)

// Setting keys consumed by the pricing engine. Values are stored as text and
// parsed on read.
const (
	SettingBasePriceRestaurant     = "base_price_restaurant"
	SettingBasePriceTrailer        = "base_price_trailer"
	SettingIncludedHoursRestaurant = "included_hours_restaurant"
	SettingIncludedHoursTrailer    = "included_hours_trailer"
	SettingHourlyRateRestaurant    = "hourly_rate_restaurant"
	SettingHourlyRateTrailer       = "hourly_rate_trailer"
	SettingGuestThreshold          = "guest_supplement_threshold"
	SettingGuestSupplement         = "guest_supplement_price"
	SettingTapRentalPrice          = "tap_rental_price"
	SettingGamesBasePrice          = "games_base_price"
)

const DefaultGuestThreshold = 50

func BasePriceKey(m ServiceMode) string {
	if m == ModeTrailer {
		return SettingBasePriceTrailer
	}
	return SettingBasePriceRestaurant
}

func IncludedHoursKey(m ServiceMode) string {
	if m == ModeTrailer {
		return SettingIncludedHoursTrailer
	}
	return SettingIncludedHoursRestaurant
}

func HourlyRateKey(m ServiceMode) string {
	if m == ModeTrailer {
		return SettingHourlyRateTrailer
	}
	return SettingHourlyRateRestaurant
}

type Setting struct {
	Key   string `gorm:"primaryKey;size:80"`
	Value string `gorm:"type:text"`
}

// SettingValues wraps the raw settings port with typed accessors. Required
// reads fail with MissingSettingError; Or variants fall back to a default.
type SettingValues struct {
	Repo SettingsRepo
}

func (s SettingValues) Decimal(ctx context.Context, key string) (decimal.Decimal, error) {
	raw, ok, err := s.Repo.Get(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok {
		return decimal.Zero, MissingSettingError{Key: key}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, MissingSettingError{Key: key}
	}
	return d, nil
}

func (s SettingValues) DecimalOr(ctx context.Context, key string, def decimal.Decimal) (decimal.Decimal, error) {
	raw, ok, err := s.Repo.Get(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok || raw == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return def, nil
	}
	return d, nil
}

func (s SettingValues) Float64(ctx context.Context, key string) (float64, error) {
	raw, ok, err := s.Repo.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, MissingSettingError{Key: key}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, MissingSettingError{Key: key}
	}
	return f, nil
}

func (s SettingValues) IntOr(ctx context.Context, key string, def int) (int, error) {
	raw, ok, err := s.Repo.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, nil
	}
	return n, nil
}
