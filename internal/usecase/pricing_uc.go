package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/marchal/traiteur/internal/domain"
)

// PricingEngine turns a validated selection plus event parameters into an
// ordered breakdown. Line order is fixed: base, duration, guest, delivery,
// then one block per selected product, then the trailer flat extras. All
// arithmetic is decimal; the grand total is rounded once at the end.
type PricingEngine struct {
	Settings domain.SettingValues
	Zones    domain.ZoneRepo
	Distance domain.DistanceResolver
}

var errNoResolver = errors.New("no distance resolver configured")

func (e *PricingEngine) Price(ctx context.Context, req domain.QuoteRequest, sel *ResolvedSelection) (*domain.Breakdown, error) {
	b := &domain.Breakdown{}
	sum := decimal.Zero

	// 1. base package
	base, err := e.Settings.Decimal(ctx, domain.BasePriceKey(req.Mode))
	if err != nil {
		return nil, err
	}
	b.BasePrice = base
	b.Lines = append(b.Lines, domain.BreakdownLine{
		Label:  "Base package",
		Amount: base,
		Detail: string(req.Mode),
	})
	sum = sum.Add(base)

	supplements := decimal.Zero

	// 2. duration supplement
	included, err := e.Settings.Float64(ctx, domain.IncludedHoursKey(req.Mode))
	if err != nil {
		return nil, err
	}
	rate, err := e.Settings.Decimal(ctx, domain.HourlyRateKey(req.Mode))
	if err != nil {
		return nil, err
	}
	if extra := req.DurationHours - included; extra > 0 {
		amount := rate.Mul(decimal.NewFromFloat(extra))
		b.Lines = append(b.Lines, domain.BreakdownLine{
			Label:  "Extra hours",
			Amount: amount,
			Detail: fmt.Sprintf("%.1f h x %s/h", extra, rate.StringFixed(2)),
		})
		supplements = supplements.Add(amount)
		sum = sum.Add(amount)
	}

	// 3. guest supplement, trailer only
	if req.Mode == domain.ModeTrailer {
		threshold, err := e.Settings.IntOr(ctx, domain.SettingGuestThreshold, domain.DefaultGuestThreshold)
		if err != nil {
			return nil, err
		}
		if req.GuestCount > threshold {
			amount, err := e.Settings.DecimalOr(ctx, domain.SettingGuestSupplement, decimal.Zero)
			if err != nil {
				return nil, err
			}
			if amount.IsPositive() {
				b.Lines = append(b.Lines, domain.BreakdownLine{
					Label:  "Guest supplement",
					Amount: amount,
					Detail: fmt.Sprintf("%d guests, threshold %d", req.GuestCount, threshold),
				})
				supplements = supplements.Add(amount)
				sum = sum.Add(amount)
			}
		}
	}

	// 4. distance supplement, trailer only
	if req.Mode == domain.ModeTrailer && strings.TrimSpace(req.DeliveryLocation) != "" {
		line, km, err := e.deliveryLine(ctx, req, b)
		if err != nil {
			return nil, err
		}
		if line != nil {
			b.Lines = append(b.Lines, *line)
			supplements = supplements.Add(line.Amount)
			sum = sum.Add(line.Amount)
		}
		b.DistanceKm = km
	}

	// 5-6. product, supplement, option and sub-option lines
	products := decimal.Zero
	for _, item := range sel.Items {
		if item.Quantity <= 0 {
			continue
		}
		qty := decimal.NewFromInt(int64(item.Quantity))

		unit := item.Product.BasePrice
		detail := fmt.Sprintf("%d x %s", item.Quantity, unit.StringFixed(2))
		if item.Size != nil {
			unit = item.Size.Price
			detail = fmt.Sprintf("%d x %s (%s)", item.Quantity, unit.StringFixed(2), item.Size.Label)
		}
		amount := unit.Mul(qty)
		b.Lines = append(b.Lines, domain.BreakdownLine{Label: item.Product.Name, Amount: amount, Detail: detail})
		products = products.Add(amount)
		sum = sum.Add(amount)

		if name, price, ok := item.Product.FlatSupplement(); ok && item.WithSupplement {
			supAmount := price.Mul(qty)
			b.Lines = append(b.Lines, domain.BreakdownLine{
				Label:  item.Product.Name + " - " + name,
				Amount: supAmount,
				Detail: fmt.Sprintf("%d x %s", item.Quantity, price.StringFixed(2)),
			})
			products = products.Add(supAmount)
			sum = sum.Add(supAmount)
		}

		for _, ro := range item.Options {
			if ro.Quantity > 0 && !ro.Option.Price.IsZero() {
				optAmount := ro.Option.Price.Mul(decimal.NewFromInt(int64(ro.Quantity)))
				b.Lines = append(b.Lines, domain.BreakdownLine{
					Label:  item.Product.Name + ": " + ro.Option.Name,
					Amount: optAmount,
					Detail: fmt.Sprintf("%d x %s", ro.Quantity, ro.Option.Price.StringFixed(2)),
				})
				products = products.Add(optAmount)
				sum = sum.Add(optAmount)
			}
			for _, rs := range ro.SubOptions {
				if rs.Quantity <= 0 || rs.SubOption.Price.IsZero() {
					// free choice, recorded on the selection but not priced
					continue
				}
				subAmount := rs.SubOption.Price.Mul(decimal.NewFromInt(int64(rs.Quantity)))
				b.Lines = append(b.Lines, domain.BreakdownLine{
					Label:  item.Product.Name + ": " + ro.Option.Name + " / " + rs.SubOption.Name,
					Amount: subAmount,
					Detail: fmt.Sprintf("%d x %s", rs.Quantity, rs.SubOption.Price.StringFixed(2)),
				})
				products = products.Add(subAmount)
				sum = sum.Add(subAmount)
			}
		}
	}

	// 7. trailer flat extras
	if req.Mode == domain.ModeTrailer {
		if sel.TapRental {
			amount, err := e.Settings.DecimalOr(ctx, domain.SettingTapRentalPrice, decimal.Zero)
			if err != nil {
				return nil, err
			}
			labels := make([]string, 0, len(sel.TapKegSizes))
			for _, keg := range sel.TapKegSizes {
				amount = amount.Add(keg.Price)
				labels = append(labels, keg.Label)
			}
			b.Lines = append(b.Lines, domain.BreakdownLine{
				Label:  "Tap rental",
				Amount: amount,
				Detail: strings.Join(labels, ", "),
			})
			supplements = supplements.Add(amount)
			sum = sum.Add(amount)
		}
		if sel.Games {
			if len(sel.GameItems) > 0 {
				for _, g := range sel.GameItems {
					b.Lines = append(b.Lines, domain.BreakdownLine{Label: "Entertainment: " + g.Label, Amount: g.Price})
					supplements = supplements.Add(g.Price)
					sum = sum.Add(g.Price)
				}
			} else {
				amount, err := e.Settings.DecimalOr(ctx, domain.SettingGamesBasePrice, decimal.Zero)
				if err != nil {
					return nil, err
				}
				b.Lines = append(b.Lines, domain.BreakdownLine{Label: "Entertainment", Amount: amount, Detail: "flat"})
				supplements = supplements.Add(amount)
				sum = sum.Add(amount)
			}
		}
	}

	// 8. terminal rounding only
	b.SupplementsTotal = domain.RoundMoney(supplements)
	b.ProductsTotal = domain.RoundMoney(products)
	b.GrandTotal = domain.RoundMoney(sum)
	return b, nil
}

// deliveryLine resolves distance and zone. The server-side resolver is
// authoritative; a client-supplied distance is only trusted when the resolver
// fails, and a total outage degrades to a zero line with a warning so the
// quote can still be produced.
func (e *PricingEngine) deliveryLine(ctx context.Context, req domain.QuoteRequest, b *domain.Breakdown) (*domain.BreakdownLine, *float64, error) {
	km, err := e.resolveKm(ctx, req.DeliveryLocation)
	source := "resolved"
	if err != nil {
		if req.ClientDistanceKm != nil && *req.ClientDistanceKm >= 0 {
			km = *req.ClientDistanceKm
			source = "client-supplied"
			b.Warnings = append(b.Warnings, "distance resolver unavailable, used client-supplied distance")
			log.Warn().Err(err).Str("location", req.DeliveryLocation).Msg("distance resolver failed, falling back to client distance")
		} else {
			b.Warnings = append(b.Warnings, "distance resolver unavailable, no delivery supplement applied")
			log.Warn().Err(err).Str("location", req.DeliveryLocation).Msg("distance resolver failed, skipping delivery supplement")
			return &domain.BreakdownLine{Label: "Delivery", Amount: decimal.Zero, Detail: "distance unavailable"}, nil, nil
		}
	}

	zones, err := e.Zones.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	zone, err := domain.ResolveZone(zones, km)
	if err != nil {
		return nil, nil, err
	}
	return &domain.BreakdownLine{
		Label:  "Delivery",
		Amount: zone.Price,
		Detail: fmt.Sprintf("%.1f km, zone %s (%s)", km, zone.Label, source),
	}, &km, nil
}

func (e *PricingEngine) resolveKm(ctx context.Context, location string) (float64, error) {
	if e.Distance == nil {
		return 0, errNoResolver
	}
	return e.Distance.ResolveKm(ctx, location)
}
