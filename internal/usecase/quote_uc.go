package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/marchal/traiteur/internal/domain"
)

var ErrIllegalTransition = errors.New("illegal status transition")

// QuoteUC drives the validate -> price -> record pipeline and the quote
// lifecycle. The selection snapshot and breakdown are written once at
// creation; afterwards only status and notes move, unless an explicit
// recalculation is requested.
type QuoteUC struct {
	Quotes    domain.QuoteRepo
	Customers domain.CustomerRepo
	Validator *SelectionValidator
	Pricer    *PricingEngine

	// overridable clock for tests
	Now func() time.Time
}

func (uc *QuoteUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

// Preview validates and prices without persisting anything.
func (uc *QuoteUC) Preview(ctx context.Context, req domain.QuoteRequest) (*domain.Breakdown, error) {
	sel, err := uc.Validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}
	return uc.Pricer.Price(ctx, req, sel)
}

// Create runs the full pipeline and persists a draft quote under a freshly
// reserved YYYY-NNN number.
func (uc *QuoteUC) Create(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error) {
	sel, err := uc.Validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}
	breakdown, err := uc.Pricer.Price(ctx, req, sel)
	if err != nil {
		return nil, err
	}

	year := uc.now().Year()
	seq, err := uc.Quotes.NextNumber(ctx, year)
	if err != nil {
		return nil, err
	}

	q := &domain.Quote{
		ID:               uuid.New(),
		Number:           domain.FormatQuoteNumber(year, seq),
		Mode:             req.Mode,
		Status:           domain.QuoteStatusDraft,
		EventDate:        req.EventDate,
		GuestCount:       req.GuestCount,
		DurationHours:    req.DurationHours,
		DeliveryLocation: strings.TrimSpace(req.DeliveryLocation),
		CustomerName:     strings.TrimSpace(req.Customer.Name),
		CustomerEmail:    strings.ToLower(strings.TrimSpace(req.Customer.Email)),
		CustomerPhone:    strings.TrimSpace(req.Customer.Phone),
		Notes:            req.Notes,
		Selection:        req.Selection,
	}
	applyBreakdown(q, breakdown)

	if err := uc.Quotes.Save(ctx, q); err != nil {
		return nil, err
	}

	if uc.Customers != nil && q.CustomerEmail != "" {
		c := &domain.Customer{ID: uuid.New(), Email: q.CustomerEmail, Name: q.CustomerName, Phone: q.CustomerPhone}
		if err := uc.Customers.UpsertByEmail(ctx, c); err != nil {
			log.Warn().Err(err).Str("email", q.CustomerEmail).Msg("customer upsert failed")
		}
	}
	return q, nil
}

func (uc *QuoteUC) Get(ctx context.Context, number string) (*domain.Quote, error) {
	return uc.Quotes.FindByNumber(ctx, number)
}

func (uc *QuoteUC) List(ctx context.Context, f domain.QuoteFilter) ([]domain.Quote, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	return uc.Quotes.List(ctx, f)
}

// Transition moves a quote along draft -> sent -> confirmed, or cancels it.
func (uc *QuoteUC) Transition(ctx context.Context, number string, to domain.QuoteStatus) (*domain.Quote, error) {
	q, err := uc.Quotes.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !q.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, q.Status, to)
	}
	if err := uc.Quotes.UpdateStatus(ctx, q.ID, to); err != nil {
		return nil, err
	}
	q.Status = to
	return q, nil
}

func (uc *QuoteUC) SetNotes(ctx context.Context, number, notes string) error {
	q, err := uc.Quotes.FindByNumber(ctx, number)
	if err != nil {
		return err
	}
	return uc.Quotes.UpdateNotes(ctx, q.ID, notes)
}

// Reprice recomputes the breakdown of an existing quote from its stored
// selection against the current catalog and settings. The quote number and
// metadata are preserved; only lines, totals and warnings are replaced.
func (uc *QuoteUC) Reprice(ctx context.Context, number string) (*domain.Quote, error) {
	q, err := uc.Quotes.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	req := domain.QuoteRequest{
		Mode:             q.Mode,
		EventDate:        q.EventDate,
		GuestCount:       q.GuestCount,
		DurationHours:    q.DurationHours,
		DeliveryLocation: q.DeliveryLocation,
		ClientDistanceKm: q.DistanceKm,
		Selection:        q.Selection,
	}
	sel, err := uc.Validator.Validate(ctx, req)
	if err != nil {
		return nil, err
	}
	breakdown, err := uc.Pricer.Price(ctx, req, sel)
	if err != nil {
		return nil, err
	}
	applyBreakdown(q, breakdown)
	if err := uc.Quotes.ReplaceBreakdown(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func applyBreakdown(q *domain.Quote, b *domain.Breakdown) {
	q.BasePrice = b.BasePrice
	q.SupplementsTotal = b.SupplementsTotal
	q.ProductsTotal = b.ProductsTotal
	q.Total = b.GrandTotal
	q.DistanceKm = b.DistanceKm
	q.Warnings = b.Warnings
	q.Lines = q.Lines[:0]
	for i, l := range b.Lines {
		q.Lines = append(q.Lines, domain.QuoteLine{
			ID:       uuid.New(),
			QuoteID:  q.ID,
			Position: i,
			Label:    l.Label,
			Amount:   l.Amount,
			Detail:   l.Detail,
		})
	}
}
