package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/marchal/traiteur/internal/domain"
)

// ResolvedSelection is the validated selection with every catalog reference
// already resolved, ready for pricing without further lookups.
type ResolvedSelection struct {
	Items       []ResolvedItem
	TapRental   bool
	TapKegSizes []domain.SizedVariant
	Games       bool
	GameItems   []domain.GameItem
}

type ResolvedItem struct {
	Product        *domain.Product
	Category       *domain.Category
	Quantity       int
	Size           *domain.SizedVariant
	WithSupplement bool
	Options        []ResolvedOption
}

type ResolvedOption struct {
	Option     *domain.Option
	Quantity   int
	SubOptions []ResolvedSubOption
}

type ResolvedSubOption struct {
	SubOption *domain.SubOption
	Quantity  int
}

type SelectionValidator struct {
	Catalog domain.CatalogRepo
}

// Validate resolves every reference in the request against the catalog and
// checks all selection rules. Rule violations are collected into a single
// ValidationError; unknown ids abort immediately since nothing downstream can
// price them.
func (v *SelectionValidator) Validate(ctx context.Context, req domain.QuoteRequest) (*ResolvedSelection, error) {
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("invalid service mode %q", req.Mode)
	}
	if req.GuestCount <= 0 {
		return nil, errors.New("guest count must be positive")
	}
	if req.DurationHours <= 0 {
		return nil, errors.New("duration must be positive")
	}

	categories, err := v.Catalog.CategoriesForMode(ctx, req.Mode)
	if err != nil {
		return nil, err
	}

	type catRef struct {
		category *domain.Category
		product  *domain.Product
	}
	byProduct := map[uuid.UUID]catRef{}
	for ci := range categories {
		for pi := range categories[ci].Products {
			p := &categories[ci].Products[pi]
			byProduct[p.ID] = catRef{category: &categories[ci], product: p}
		}
	}

	var issues []domain.ValidationIssue
	resolved := &ResolvedSelection{
		TapRental: req.Selection.TapRental,
		Games:     req.Selection.Games,
		GameItems: req.Selection.GameItems,
	}

	for _, item := range req.Selection.Items {
		ref, ok := byProduct[item.ProductID]
		if !ok {
			return nil, domain.UnknownProductError{ID: item.ProductID}
		}
		p := ref.product

		if item.Quantity < 0 {
			issues = append(issues, domain.ValidationIssue{Code: domain.IssueNegativeQuantity, Product: p.Name})
		}
		if !p.Active {
			issues = append(issues, domain.ValidationIssue{Code: domain.IssueInactiveProduct, Product: p.Name})
		}
		if item.Quantity > 0 && p.MinQty > 0 && item.Quantity < p.MinQty {
			issues = append(issues, domain.ValidationIssue{
				Code: domain.IssueBelowMinQuantity, Product: p.Name,
				Detail: fmt.Sprintf("minimum %d", p.MinQty),
			})
		}
		if p.MaxQty > 0 && item.Quantity > p.MaxQty {
			issues = append(issues, domain.ValidationIssue{
				Code: domain.IssueAboveMaxQuantity, Product: p.Name,
				Detail: fmt.Sprintf("maximum %d", p.MaxQty),
			})
		}

		ri := ResolvedItem{
			Product:        p,
			Category:       ref.category,
			Quantity:       item.Quantity,
			WithSupplement: item.WithSupplement,
		}

		if item.SizeID != nil {
			size := p.FindSize(*item.SizeID)
			if size == nil {
				return nil, domain.UnknownSizeError{ProductID: p.ID, SizeID: *item.SizeID}
			}
			if !size.Active || p.Kind != domain.ExtensionSizes {
				issues = append(issues, domain.ValidationIssue{
					Code: domain.IssueSizeNotAvailable, Product: p.Name, Detail: size.Label,
				})
			}
			ri.Size = size
		}

		for _, so := range item.Options {
			opt := p.FindOption(so.OptionID)
			if opt == nil {
				return nil, domain.UnknownOptionError{ProductID: p.ID, OptionID: so.OptionID}
			}
			if !opt.Active {
				issues = append(issues, domain.ValidationIssue{
					Code: domain.IssueInactiveOption, Product: p.Name, Detail: opt.Name,
				})
			}
			if p.Kind != domain.ExtensionOptions {
				issues = append(issues, domain.ValidationIssue{
					Code: domain.IssueOptionNotAvailable, Product: p.Name, Detail: opt.Name,
				})
			}
			if so.Quantity > item.Quantity {
				issues = append(issues, domain.ValidationIssue{
					Code: domain.IssueOptionExceedsProduct, Product: p.Name,
					Detail: fmt.Sprintf("%s: %d > %d", opt.Name, so.Quantity, item.Quantity),
				})
			}
			ro := ResolvedOption{Option: opt, Quantity: so.Quantity}
			for _, ss := range so.SubOptions {
				sub := opt.FindSubOption(ss.SubOptionID)
				if sub == nil {
					return nil, domain.UnknownOptionError{ProductID: p.ID, OptionID: ss.SubOptionID}
				}
				ro.SubOptions = append(ro.SubOptions, ResolvedSubOption{SubOption: sub, Quantity: ss.Quantity})
			}
			ri.Options = append(ri.Options, ro)
		}

		resolved.Items = append(resolved.Items, ri)
	}

	for _, id := range req.Selection.TapKegSizeIDs {
		size, err := v.Catalog.FindSize(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.UnknownSizeError{SizeID: id}
			}
			return nil, err
		}
		if !size.Active {
			issues = append(issues, domain.ValidationIssue{
				Code: domain.IssueSizeNotAvailable, Detail: size.Label,
			})
		}
		if !size.Keg {
			issues = append(issues, domain.ValidationIssue{
				Code: domain.IssueNotAKeg, Detail: size.Label,
			})
		}
		resolved.TapKegSizes = append(resolved.TapKegSizes, *size)
	}

	issues = append(issues, categoryIssues(categories, req)...)

	if len(issues) > 0 {
		return resolved, &domain.ValidationError{Issues: issues}
	}
	return resolved, nil
}

// categoryIssues checks the cardinality rules of every in-scope category
// against what the selection actually picked.
func categoryIssues(categories []domain.Category, req domain.QuoteRequest) []domain.ValidationIssue {
	selected := map[uuid.UUID]int{} // product id -> quantity
	for _, it := range req.Selection.Items {
		if it.Quantity > 0 {
			selected[it.ProductID] += it.Quantity
		}
	}

	var issues []domain.ValidationIssue
	for ci := range categories {
		c := &categories[ci]
		distinct := 0
		qtySum := 0
		for pi := range c.Products {
			if q, ok := selected[c.Products[pi].ID]; ok {
				distinct++
				qtySum += q
			}
		}

		if c.Required && distinct == 0 {
			issues = append(issues, domain.ValidationIssue{Code: domain.IssueSelectionRequired, Category: c.Name})
		}
		if c.MinSelection > 0 && distinct < c.MinSelection {
			issues = append(issues, domain.ValidationIssue{
				Code: domain.IssueBelowMinSelections, Category: c.Name,
				Detail: fmt.Sprintf("%d of %d", distinct, c.MinSelection),
			})
		}
		if c.MaxSelection != nil && distinct > *c.MaxSelection {
			issues = append(issues, domain.ValidationIssue{
				Code: domain.IssueAboveMaxSelections, Category: c.Name,
				Detail: fmt.Sprintf("%d of %d", distinct, *c.MaxSelection),
			})
		}
		if c.MinPerPerson && qtySum < req.GuestCount {
			issues = append(issues, domain.ValidationIssue{
				Code: domain.IssueBelowPerGuestMinimum, Category: c.Name,
				Shortfall: req.GuestCount - qtySum,
			})
		}
	}
	return issues
}
