package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryZone is one distance bracket with a flat delivery price. Brackets are
// inclusive on both ends; the set must cover [0, max] without gaps.
type DeliveryZone struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Label     string          `gorm:"size:60"`
	MinKm     float64         `gorm:"type:decimal(7,2)"`
	MaxKm     float64         `gorm:"type:decimal(7,2)"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2)"`
	Position  int             `gorm:"default:0"`
	CreatedAt time.Time
}

// ResolveZone picks the bracket containing km. On a shared boundary the nearer
// bracket wins. Beyond the last bracket it fails with DeliveryOutOfRangeError.
func ResolveZone(zones []DeliveryZone, km float64) (*DeliveryZone, error) {
	sorted := make([]DeliveryZone, len(zones))
	copy(sorted, zones)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinKm < sorted[j].MinKm })

	maxKm := 0.0
	for i := range sorted {
		if sorted[i].MinKm <= km && km <= sorted[i].MaxKm {
			z := sorted[i]
			return &z, nil
		}
		if sorted[i].MaxKm > maxKm {
			maxKm = sorted[i].MaxKm
		}
	}
	return nil, DeliveryOutOfRangeError{DistanceKm: km, MaxKm: maxKm}
}

// ValidateZoneCoverage rejects zone tables with gaps, overlaps or a hole at 0,
// so that every distance up to the configured max resolves deterministically.
func ValidateZoneCoverage(zones []DeliveryZone) error {
	if len(zones) == 0 {
		return fmt.Errorf("empty zone table")
	}
	sorted := make([]DeliveryZone, len(zones))
	copy(sorted, zones)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinKm < sorted[j].MinKm })

	if sorted[0].MinKm != 0 {
		return fmt.Errorf("zone table must start at 0 km, starts at %.1f", sorted[0].MinKm)
	}
	for i, z := range sorted {
		if z.MaxKm < z.MinKm {
			return fmt.Errorf("zone %q: max %.1f below min %.1f", z.Label, z.MaxKm, z.MinKm)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if z.MinKm > prev.MaxKm {
			return fmt.Errorf("gap between %.1f and %.1f km", prev.MaxKm, z.MinKm)
		}
		if z.MinKm < prev.MaxKm {
			return fmt.Errorf("zones %q and %q overlap", prev.Label, z.Label)
		}
	}
	return nil
}
