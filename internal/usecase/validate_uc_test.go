package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marchal/traiteur/internal/domain"
)

func intPtr(n int) *int { return &n }

// testCatalog builds a small two-category catalog: a required buffet category
// with a per-guest minimum and a drinks category with sized bottles.
func testCatalog() (*fakeCatalog, map[string]uuid.UUID) {
	ids := map[string]uuid.UUID{
		"quiche": uuid.New(), "salad": uuid.New(), "inactive": uuid.New(),
		"cremant": uuid.New(), "size75": uuid.New(), "keg20": uuid.New(),
		"optCheese": uuid.New(), "optOff": uuid.New(), "subThyme": uuid.New(),
		"optStray": uuid.New(),
	}

	buffet := domain.Category{
		ID: uuid.New(), Name: "Buffet", Scope: domain.ScopeBoth,
		Required: true, MinSelection: 1, MaxSelection: intPtr(2), MinPerPerson: true,
		Products: []domain.Product{
			{
				ID: ids["quiche"], Name: "Mini quiches", BasePrice: dec("4.50"),
				Active: true, MinQty: 2, MaxQty: 100, Kind: domain.ExtensionOptions,
				OptionList: []domain.Option{
					{
						ID: ids["optCheese"], Name: "Extra cheese", Price: dec("1.00"), Active: true,
						SubOptions: []domain.SubOption{{ID: ids["subThyme"], Name: "Thyme", Active: true}},
					},
					{ID: ids["optOff"], Name: "Seasonal", Active: false},
				},
			},
			{
				// legacy row kept an option although the product has no
				// options shape
				ID: ids["salad"], Name: "Salad bowls", BasePrice: dec("3.00"), Active: true,
				OptionList: []domain.Option{
					{ID: ids["optStray"], Name: "Croutons", Price: dec("0.50"), Active: true},
				},
			},
			{ID: ids["inactive"], Name: "Old special", BasePrice: dec("5.00"), Active: false},
		},
	}
	drinks := domain.Category{
		ID: uuid.New(), Name: "Drinks", Scope: domain.ScopeBoth,
		Products: []domain.Product{
			{
				ID: ids["cremant"], Name: "Cremant", BasePrice: dec("12.00"),
				Active: true, Kind: domain.ExtensionSizes,
				SizeList: []domain.SizedVariant{
					{ID: ids["size75"], Label: "75 cl", Price: dec("18.00"), Active: true},
					{ID: ids["keg20"], Label: "20 l keg", Price: dec("95.00"), Active: true, Keg: true},
				},
			},
		},
	}
	return &fakeCatalog{categories: []domain.Category{buffet, drinks}}, ids
}

func TestValidateHappyPath(t *testing.T) {
	catalog, ids := testCatalog()
	v := &SelectionValidator{Catalog: catalog}
	size := ids["size75"]

	req := domain.QuoteRequest{
		Mode: domain.ModeRestaurant, GuestCount: 10, DurationHours: 3,
		Selection: domain.Selection{Items: []domain.SelectionItem{
			{ProductID: ids["quiche"], Quantity: 10, Options: []domain.SelectedOption{
				{OptionID: ids["optCheese"], Quantity: 4, SubOptions: []domain.SelectedSubOption{
					{SubOptionID: ids["subThyme"], Quantity: 4},
				}},
			}},
			{ProductID: ids["cremant"], Quantity: 2, SizeID: &size},
		}},
	}

	sel, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, sel.Items, 2)
	assert.Equal(t, "Mini quiches", sel.Items[0].Product.Name)
	require.Len(t, sel.Items[0].Options, 1)
	require.Len(t, sel.Items[0].Options[0].SubOptions, 1)
	require.NotNil(t, sel.Items[1].Size)
	assert.Equal(t, "75 cl", sel.Items[1].Size.Label)
}

func TestValidateBadArguments(t *testing.T) {
	catalog, _ := testCatalog()
	v := &SelectionValidator{Catalog: catalog}

	tests := []struct {
		name string
		req  domain.QuoteRequest
	}{
		{"invalid mode", domain.QuoteRequest{Mode: "food_truck", GuestCount: 10, DurationHours: 3}},
		{"zero guests", domain.QuoteRequest{Mode: domain.ModeRestaurant, GuestCount: 0, DurationHours: 3}},
		{"zero duration", domain.QuoteRequest{Mode: domain.ModeRestaurant, GuestCount: 10, DurationHours: 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Validate(context.Background(), tc.req)
			assert.Error(t, err)
		})
	}
}

func TestValidateUnknownProductIsFatal(t *testing.T) {
	catalog, _ := testCatalog()
	v := &SelectionValidator{Catalog: catalog}
	ghost := uuid.New()

	req := domain.QuoteRequest{
		Mode: domain.ModeRestaurant, GuestCount: 10, DurationHours: 3,
		Selection: domain.Selection{Items: []domain.SelectionItem{{ProductID: ghost, Quantity: 1}}},
	}

	_, err := v.Validate(context.Background(), req)
	var unknown domain.UnknownProductError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, ghost, unknown.ID)
}

func TestValidateUnknownSizeIsFatal(t *testing.T) {
	catalog, ids := testCatalog()
	v := &SelectionValidator{Catalog: catalog}
	ghost := uuid.New()

	req := domain.QuoteRequest{
		Mode: domain.ModeRestaurant, GuestCount: 10, DurationHours: 3,
		Selection: domain.Selection{Items: []domain.SelectionItem{
			{ProductID: ids["cremant"], Quantity: 1, SizeID: &ghost},
		}},
	}

	_, err := v.Validate(context.Background(), req)
	var unknown domain.UnknownSizeError
	require.ErrorAs(t, err, &unknown)
}

func TestValidateCollectsAllIssues(t *testing.T) {
	catalog, ids := testCatalog()
	v := &SelectionValidator{Catalog: catalog}

	// inactive product, quantity below the product minimum, option over the
	// item quantity and a per-guest shortfall, all reported in one pass
	req := domain.QuoteRequest{
		Mode: domain.ModeRestaurant, GuestCount: 20, DurationHours: 3,
		Selection: domain.Selection{Items: []domain.SelectionItem{
			{ProductID: ids["inactive"], Quantity: 1},
			{ProductID: ids["quiche"], Quantity: 1, Options: []domain.SelectedOption{
				{OptionID: ids["optOff"], Quantity: 3},
			}},
		}},
	}

	_, err := v.Validate(context.Background(), req)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	codes := issueCodes(verr)
	assert.Contains(t, codes, domain.IssueInactiveProduct)
	assert.Contains(t, codes, domain.IssueBelowMinQuantity)
	assert.Contains(t, codes, domain.IssueInactiveOption)
	assert.Contains(t, codes, domain.IssueOptionExceedsProduct)
	assert.Contains(t, codes, domain.IssueBelowPerGuestMinimum)
}

func TestValidatePerGuestShortfall(t *testing.T) {
	catalog, ids := testCatalog()
	v := &SelectionValidator{Catalog: catalog}

	req := domain.QuoteRequest{
		Mode: domain.ModeRestaurant, GuestCount: 15, DurationHours: 3,
		Selection: domain.Selection{Items: []domain.SelectionItem{
			{ProductID: ids["quiche"], Quantity: 6},
			{ProductID: ids["salad"], Quantity: 4},
		}},
	}

	_, err := v.Validate(context.Background(), req)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, domain.IssueBelowPerGuestMinimum, verr.Issues[0].Code)
	assert.Equal(t, "Buffet", verr.Issues[0].Category)
	assert.Equal(t, 5, verr.Issues[0].Shortfall)
}

func TestValidateEmptySelectionReportsRequiredCategory(t *testing.T) {
	catalog, _ := testCatalog()
	v := &SelectionValidator{Catalog: catalog}

	req := domain.QuoteRequest{Mode: domain.ModeRestaurant, GuestCount: 10, DurationHours: 3}

	_, err := v.Validate(context.Background(), req)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	codes := issueCodes(verr)
	assert.Contains(t, codes, domain.IssueSelectionRequired)
	assert.Contains(t, codes, domain.IssueBelowMinSelections)
	assert.Contains(t, codes, domain.IssueBelowPerGuestMinimum)
}

func TestValidateAboveMaxSelections(t *testing.T) {
	catalog, ids := testCatalog()
	v := &SelectionValidator{Catalog: catalog}

	req := domain.QuoteRequest{
		Mode: domain.ModeRestaurant, GuestCount: 4, DurationHours: 3,
		Selection: domain.Selection{Items: []domain.SelectionItem{
			{ProductID: ids["quiche"], Quantity: 2},
			{ProductID: ids["salad"], Quantity: 2},
			{ProductID: ids["inactive"], Quantity: 1},
		}},
	}

	_, err := v.Validate(context.Background(), req)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, issueCodes(verr), domain.IssueAboveMaxSelections)
}

func TestValidateSizeOnWrongKind(t *testing.T) {
	catalog, ids := testCatalog()
	v := &SelectionValidator{Catalog: catalog}
	size := ids["size75"]

	// salad has no sizes, so referencing one is an unknown size
	req := domain.QuoteRequest{
		Mode: domain.ModeRestaurant, GuestCount: 10, DurationHours: 3,
		Selection: domain.Selection{Items: []domain.SelectionItem{
			{ProductID: ids["salad"], Quantity: 10, SizeID: &size},
		}},
	}

	_, err := v.Validate(context.Background(), req)
	var unknown domain.UnknownSizeError
	require.ErrorAs(t, err, &unknown)
}

func TestValidateOptionOnWrongKind(t *testing.T) {
	catalog, ids := testCatalog()
	v := &SelectionValidator{Catalog: catalog}

	req := domain.QuoteRequest{
		Mode: domain.ModeRestaurant, GuestCount: 10, DurationHours: 3,
		Selection: domain.Selection{Items: []domain.SelectionItem{
			{ProductID: ids["quiche"], Quantity: 6},
			{ProductID: ids["salad"], Quantity: 4, Options: []domain.SelectedOption{
				{OptionID: ids["optStray"], Quantity: 2},
			}},
		}},
	}

	_, err := v.Validate(context.Background(), req)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, domain.IssueOptionNotAvailable, verr.Issues[0].Code)
	assert.Equal(t, "Salad bowls", verr.Issues[0].Product)
}

func TestValidateTapKegMustBeKegSize(t *testing.T) {
	catalog, ids := testCatalog()
	v := &SelectionValidator{Catalog: catalog}

	req := domain.QuoteRequest{
		Mode: domain.ModeTrailer, GuestCount: 10, DurationHours: 3,
		Selection: domain.Selection{
			Items: []domain.SelectionItem{
				{ProductID: ids["quiche"], Quantity: 10},
			},
			TapRental:     true,
			TapKegSizeIDs: []uuid.UUID{ids["size75"]},
		},
	}

	_, err := v.Validate(context.Background(), req)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, domain.IssueNotAKeg, verr.Issues[0].Code)
	assert.Equal(t, "75 cl", verr.Issues[0].Detail)
}

func TestValidateResolvesTapKegSizes(t *testing.T) {
	catalog, ids := testCatalog()
	v := &SelectionValidator{Catalog: catalog}

	req := domain.QuoteRequest{
		Mode: domain.ModeTrailer, GuestCount: 10, DurationHours: 3,
		Selection: domain.Selection{
			Items: []domain.SelectionItem{
				{ProductID: ids["quiche"], Quantity: 10},
			},
			TapRental:     true,
			TapKegSizeIDs: []uuid.UUID{ids["keg20"]},
		},
	}

	sel, err := v.Validate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, sel.TapRental)
	require.Len(t, sel.TapKegSizes, 1)
	assert.Equal(t, "20 l keg", sel.TapKegSizes[0].Label)
}

func TestValidateUnknownTapKegSize(t *testing.T) {
	catalog, ids := testCatalog()
	v := &SelectionValidator{Catalog: catalog}

	req := domain.QuoteRequest{
		Mode: domain.ModeTrailer, GuestCount: 10, DurationHours: 3,
		Selection: domain.Selection{
			Items: []domain.SelectionItem{
				{ProductID: ids["quiche"], Quantity: 10},
			},
			TapRental:     true,
			TapKegSizeIDs: []uuid.UUID{uuid.New()},
		},
	}

	_, err := v.Validate(context.Background(), req)
	var unknown domain.UnknownSizeError
	require.ErrorAs(t, err, &unknown)
}

func issueCodes(verr *domain.ValidationError) []domain.IssueCode {
	codes := make([]domain.IssueCode, 0, len(verr.Issues))
	for _, i := range verr.Issues {
		codes = append(codes, i.Code)
	}
	return codes
}
