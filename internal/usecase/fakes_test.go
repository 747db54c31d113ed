package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/marchal/traiteur/internal/domain"
)

// in-memory ports used across the usecase tests

type fakeCatalog struct {
	categories []domain.Category
}

func (f *fakeCatalog) CategoriesForMode(_ context.Context, mode domain.ServiceMode) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range f.categories {
		if c.Scope.Includes(mode) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindCategory(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			return &f.categories[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalog) FindProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	for ci := range f.categories {
		for pi := range f.categories[ci].Products {
			if f.categories[ci].Products[pi].ID == id {
				return &f.categories[ci].Products[pi], nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalog) FindSize(_ context.Context, id uuid.UUID) (*domain.SizedVariant, error) {
	for ci := range f.categories {
		for pi := range f.categories[ci].Products {
			for si := range f.categories[ci].Products[pi].SizeList {
				if f.categories[ci].Products[pi].SizeList[si].ID == id {
					return &f.categories[ci].Products[pi].SizeList[si], nil
				}
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCatalog) SaveCategory(context.Context, *domain.Category) error   { return nil }
func (f *fakeCatalog) SaveProduct(context.Context, *domain.Product) error     { return nil }
func (f *fakeCatalog) SaveOption(context.Context, *domain.Option) error       { return nil }
func (f *fakeCatalog) SaveSubOption(context.Context, *domain.SubOption) error { return nil }
func (f *fakeCatalog) SaveSize(context.Context, *domain.SizedVariant) error   { return nil }
func (f *fakeCatalog) DeleteProduct(context.Context, uuid.UUID) error         { return nil }

type fakeSettings struct {
	values map[string]string
}

func (f *fakeSettings) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeSettings) Set(_ context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

type fakeZones struct {
	zones []domain.DeliveryZone
}

func (f *fakeZones) List(context.Context) ([]domain.DeliveryZone, error) { return f.zones, nil }
func (f *fakeZones) Replace(_ context.Context, zones []domain.DeliveryZone) error {
	f.zones = zones
	return nil
}

type fakeDistance struct {
	km  float64
	err error
}

func (f *fakeDistance) ResolveKm(context.Context, string) (float64, error) { return f.km, f.err }

type fakeQuotes struct {
	mu       sync.Mutex
	saved    []*domain.Quote
	counters map[int]int
}

func (f *fakeQuotes) Save(_ context.Context, q *domain.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, q)
	return nil
}

func (f *fakeQuotes) FindByNumber(_ context.Context, number string) (*domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.saved {
		if q.Number == number {
			return q, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeQuotes) List(_ context.Context, _ domain.QuoteFilter) ([]domain.Quote, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Quote, 0, len(f.saved))
	for _, q := range f.saved {
		out = append(out, *q)
	}
	return out, int64(len(out)), nil
}

func (f *fakeQuotes) NextNumber(_ context.Context, year int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counters == nil {
		f.counters = map[int]int{}
	}
	f.counters[year]++
	return f.counters[year], nil
}

func (f *fakeQuotes) UpdateStatus(_ context.Context, id uuid.UUID, status domain.QuoteStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.saved {
		if q.ID == id {
			q.Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeQuotes) UpdateNotes(_ context.Context, id uuid.UUID, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.saved {
		if q.ID == id {
			q.Notes = notes
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeQuotes) ReplaceBreakdown(_ context.Context, q *domain.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.saved {
		if existing.ID == q.ID {
			f.saved[i] = q
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeCustomers struct {
	upserts []*domain.Customer
	err     error
}

func (f *fakeCustomers) UpsertByEmail(_ context.Context, c *domain.Customer) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, c)
	return nil
}

func (f *fakeCustomers) FindByEmail(_ context.Context, email string) (*domain.Customer, error) {
	for _, c := range f.upserts {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

var errResolverDown = errors.New("routing provider unreachable")
