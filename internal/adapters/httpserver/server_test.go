package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marchal/traiteur/internal/domain"
	"github.com/marchal/traiteur/internal/usecase"
)

type memCatalog struct {
	categories []domain.Category
}

func (m *memCatalog) CategoriesForMode(_ context.Context, mode domain.ServiceMode) ([]domain.Category, error) {
	var out []domain.Category
	for _, c := range m.categories {
		if c.Scope.Includes(mode) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCatalog) FindCategory(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	for i := range m.categories {
		if m.categories[i].ID == id {
			return &m.categories[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCatalog) FindProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	for ci := range m.categories {
		for pi := range m.categories[ci].Products {
			if m.categories[ci].Products[pi].ID == id {
				return &m.categories[ci].Products[pi], nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCatalog) FindSize(_ context.Context, id uuid.UUID) (*domain.SizedVariant, error) {
	for ci := range m.categories {
		for pi := range m.categories[ci].Products {
			for si := range m.categories[ci].Products[pi].SizeList {
				if m.categories[ci].Products[pi].SizeList[si].ID == id {
					return &m.categories[ci].Products[pi].SizeList[si], nil
				}
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCatalog) SaveCategory(context.Context, *domain.Category) error   { return nil }
func (m *memCatalog) SaveProduct(context.Context, *domain.Product) error     { return nil }
func (m *memCatalog) SaveOption(context.Context, *domain.Option) error       { return nil }
func (m *memCatalog) SaveSubOption(context.Context, *domain.SubOption) error { return nil }
func (m *memCatalog) SaveSize(context.Context, *domain.SizedVariant) error   { return nil }
func (m *memCatalog) DeleteProduct(context.Context, uuid.UUID) error         { return nil }

type memSettings struct{ values map[string]string }

func (m *memSettings) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}
func (m *memSettings) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

type memZones struct{ zones []domain.DeliveryZone }

func (m *memZones) List(context.Context) ([]domain.DeliveryZone, error) { return m.zones, nil }
func (m *memZones) Replace(_ context.Context, z []domain.DeliveryZone) error {
	m.zones = z
	return nil
}

type memQuotes struct {
	mu      sync.Mutex
	quotes  []*domain.Quote
	counter int
}

func (m *memQuotes) Save(_ context.Context, q *domain.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes = append(m.quotes, q)
	return nil
}

func (m *memQuotes) FindByNumber(_ context.Context, number string) (*domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.quotes {
		if q.Number == number {
			return q, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memQuotes) List(_ context.Context, _ domain.QuoteFilter) ([]domain.Quote, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Quote, 0, len(m.quotes))
	for _, q := range m.quotes {
		out = append(out, *q)
	}
	return out, int64(len(out)), nil
}

func (m *memQuotes) NextNumber(_ context.Context, _ int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return m.counter, nil
}

func (m *memQuotes) UpdateStatus(_ context.Context, id uuid.UUID, status domain.QuoteStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.quotes {
		if q.ID == id {
			q.Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memQuotes) UpdateNotes(_ context.Context, id uuid.UUID, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.quotes {
		if q.ID == id {
			q.Notes = notes
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memQuotes) ReplaceBreakdown(_ context.Context, q *domain.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.quotes {
		if m.quotes[i].ID == q.ID {
			m.quotes[i] = q
			return nil
		}
	}
	return domain.ErrNotFound
}

func newTestHandler(t *testing.T) (http.Handler, uuid.UUID) {
	t.Helper()
	t.Setenv("ADMIN_ALLOWED_EMAILS", "owner@example.com")
	t.Setenv("JWT_ADMIN_SECRET", "test-secret")
	t.Setenv("ADMIN_API_KEY", "test-api-key")

	productID := uuid.New()
	catalog := &memCatalog{categories: []domain.Category{{
		ID: uuid.New(), Name: "Buffet", Scope: domain.ScopeBoth,
		Products: []domain.Product{{
			ID: productID, Name: "Mini quiches", Slug: "mini-quiches",
			Description: "Bite-sized quiches baked to order.",
			BasePrice: decimal.RequireFromString("4.50"), Active: true,
		}},
	}}}
	settings := &memSettings{values: map[string]string{
		domain.SettingBasePriceRestaurant:     "300",
		domain.SettingBasePriceTrailer:        "400",
		domain.SettingIncludedHoursRestaurant: "2",
		domain.SettingIncludedHoursTrailer:    "3",
		domain.SettingHourlyRateRestaurant:    "50",
		domain.SettingHourlyRateTrailer:       "60",
	}}
	zones := &memZones{zones: []domain.DeliveryZone{
		{ID: uuid.New(), Label: "0-20 km", MinKm: 0, MaxKm: 20, Price: decimal.RequireFromString("40")},
	}}
	quotes := &memQuotes{}

	quoteUC := &usecase.QuoteUC{
		Quotes:    quotes,
		Validator: &usecase.SelectionValidator{Catalog: catalog},
		Pricer: &usecase.PricingEngine{
			Settings: domain.SettingValues{Repo: settings},
			Zones:    zones,
		},
	}
	catalogUC := &usecase.CatalogUC{Catalog: catalog}
	settingsUC := &usecase.SettingsUC{Settings: settings, Zones: zones}

	return New(quoteUC, catalogUC, settingsUC, nil), productID
}

func TestHealthz(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, 200, rec.Code)
}

func TestCatalogEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog?mode=restaurant", nil))
	require.Equal(t, 200, rec.Code)
	var cats []domain.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	require.Len(t, cats, 1)
	assert.Equal(t, "Buffet", cats[0].Name)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog?mode=drone", nil))
	assert.Equal(t, 400, rec.Code)
}

func quoteBody(productID uuid.UUID, qty int) string {
	return fmt.Sprintf(`{
		"mode": "restaurant",
		"event_date": "2026-07-04",
		"guest_count": 10,
		"duration_hours": 3,
		"selection": {"items": [{"product_id": %q, "quantity": %d}]},
		"customer": {"name": "Claire Marchal", "email": "claire@example.com"}
	}`, productID, qty)
}

func TestPricePreview(t *testing.T) {
	h, productID := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/quotes/price", strings.NewReader(quoteBody(productID, 10)))
	h.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code, rec.Body.String())

	var b domain.Breakdown
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	// base 300 + 1 extra hour at 50 + 10 quiches at 4.50
	assert.Equal(t, "395.00", b.GrandTotal.StringFixed(2))
}

func TestPricePreviewValidationIssues(t *testing.T) {
	h, productID := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/quotes/price", strings.NewReader(quoteBody(productID, -2)))
	h.ServeHTTP(rec, req)
	require.Equal(t, 422, rec.Code)

	var resp struct {
		Error  string                   `json:"error"`
		Issues []domain.ValidationIssue `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation", resp.Error)
	assert.NotEmpty(t, resp.Issues)
}

func TestCreateQuote(t *testing.T) {
	h, productID := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(quoteBody(productID, 10)))
	h.ServeHTTP(rec, req)
	require.Equal(t, 201, rec.Code, rec.Body.String())

	var q domain.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Regexp(t, `^\d{4}-001$`, q.Number)
	assert.Equal(t, domain.QuoteStatusDraft, q.Status)

	// numbers are guessable, so fetching back needs the id as access key
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quotes/"+q.Number, nil))
	assert.Equal(t, 404, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quotes/"+q.Number+"?key="+q.ID.String(), nil))
	assert.Equal(t, 200, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quotes/"+q.Number+"?key="+uuid.New().String(), nil))
	assert.Equal(t, 404, rec.Code)
}

func TestCreateQuoteBadJSON(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader("{nope"))
	h.ServeHTTP(rec, req)
	assert.Equal(t, 400, rec.Code)
}

func TestListQuotesRequiresAdmin(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quotes", nil))
	assert.Equal(t, 401, rec.Code)
}

func TestAdminLoginAndList(t *testing.T) {
	h, productID := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(quoteBody(productID, 10)))
	h.ServeHTTP(rec, req)
	require.Equal(t, 201, rec.Code)

	rec = httptest.NewRecorder()
	login := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"email":"owner@example.com"}`))
	login.Header.Set("X-Admin-Key", "test-api-key")
	h.ServeHTTP(rec, login)
	require.Equal(t, 200, rec.Code, rec.Body.String())

	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.Token)

	rec = httptest.NewRecorder()
	list := httptest.NewRequest(http.MethodGet, "/api/quotes", nil)
	list.Header.Set("Authorization", "Bearer "+auth.Token)
	h.ServeHTTP(rec, list)
	require.Equal(t, 200, rec.Code)

	var resp struct {
		Quotes []domain.Quote `json:"quotes"`
		Total  int64          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)

	// admins read quotes by number without the access key
	rec = httptest.NewRecorder()
	get := httptest.NewRequest(http.MethodGet, "/api/quotes/"+resp.Quotes[0].Number, nil)
	get.Header.Set("Authorization", "Bearer "+auth.Token)
	h.ServeHTTP(rec, get)
	assert.Equal(t, 200, rec.Code)
}

func adminToken(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	login := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"email":"owner@example.com"}`))
	login.Header.Set("X-Admin-Key", "test-api-key")
	h.ServeHTTP(rec, login)
	require.Equal(t, 200, rec.Code, rec.Body.String())
	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auth))
	return auth.Token
}

func TestAdminDescribe(t *testing.T) {
	h, _ := newTestHandler(t)
	token := adminToken(t, h)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/products/describe", nil))
	assert.Equal(t, 405, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/products/describe", nil))
	assert.Equal(t, 401, rec.Code)

	// API key missing
	t.Setenv("OPENAI_API_KEY", "")
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/products/describe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rec, req)
	assert.Equal(t, 500, rec.Code)

	// every product already carries copy, nothing to generate
	t.Setenv("OPENAI_API_KEY", "test-openai-key")
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/admin/products/describe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code, rec.Body.String())
	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp["updated"])
}

func TestAdminLoginWrongKey(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	login := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{}`))
	login.Header.Set("X-Admin-Key", "wrong")
	h.ServeHTTP(rec, login)
	assert.Equal(t, 401, rec.Code)
}
