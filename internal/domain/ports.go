package domain

import (
	"context"

	"github.com/google/uuid"
)

// CatalogRepo is the read/write port over categories, products, options and
// sizes. Reads used by pricing are plain synchronous lookups; callers may cache.
type CatalogRepo interface {
	CategoriesForMode(ctx context.Context, mode ServiceMode) ([]Category, error)
	FindCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	FindSize(ctx context.Context, id uuid.UUID) (*SizedVariant, error)

	SaveCategory(ctx context.Context, c *Category) error
	SaveProduct(ctx context.Context, p *Product) error
	SaveOption(ctx context.Context, o *Option) error
	SaveSubOption(ctx context.Context, s *SubOption) error
	SaveSize(ctx context.Context, v *SizedVariant) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type SettingsRepo interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

type ZoneRepo interface {
	List(ctx context.Context) ([]DeliveryZone, error)
	Replace(ctx context.Context, zones []DeliveryZone) error
}

type QuoteRepo interface {
	Save(ctx context.Context, q *Quote) error
	FindByNumber(ctx context.Context, number string) (*Quote, error)
	List(ctx context.Context, f QuoteFilter) ([]Quote, int64, error)
	// NextNumber atomically reserves the next sequence number for the year.
	// Two concurrent calls must never receive the same value.
	NextNumber(ctx context.Context, year int) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status QuoteStatus) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error
	// ReplaceBreakdown swaps lines, totals and warnings in one transaction,
	// leaving number, selection and metadata untouched.
	ReplaceBreakdown(ctx context.Context, q *Quote) error
}

type CustomerRepo interface {
	UpsertByEmail(ctx context.Context, c *Customer) error
	FindByEmail(ctx context.Context, email string) (*Customer, error)
}

// DistanceResolver maps a destination to road distance. Implementations sit in
// front of an external routing provider and may time out; the pricing engine
// degrades to a warning when they do.
type DistanceResolver interface {
	ResolveKm(ctx context.Context, location string) (float64, error)
}
