package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusSent      QuoteStatus = "sent"
	QuoteStatusConfirmed QuoteStatus = "confirmed"
	QuoteStatusCancelled QuoteStatus = "cancelled"
)

// CanTransition reports whether the lifecycle step is legal:
// draft -> sent -> confirmed, and any non-terminal state may cancel.
func (s QuoteStatus) CanTransition(to QuoteStatus) bool {
	switch s {
	case QuoteStatusDraft:
		return to == QuoteStatusSent || to == QuoteStatusCancelled
	case QuoteStatusSent:
		return to == QuoteStatusConfirmed || to == QuoteStatusCancelled
	default:
		return false
	}
}

// Selection is the full snapshot of what the customer picked. It is persisted
// as-is on the quote and is sufficient, together with the event parameters, to
// reproduce the breakdown.
type Selection struct {
	Items []SelectionItem `json:"items"`

	// trailer-only flat extras
	TapRental     bool        `json:"tap_rental,omitempty"`
	TapKegSizeIDs []uuid.UUID `json:"tap_keg_size_ids,omitempty"`
	Games         bool        `json:"games,omitempty"`
	GameItems     []GameItem  `json:"game_items,omitempty"`
}

type SelectionItem struct {
	ProductID      uuid.UUID        `json:"product_id"`
	Quantity       int              `json:"quantity"`
	SizeID         *uuid.UUID       `json:"size_id,omitempty"`
	WithSupplement bool             `json:"with_supplement,omitempty"`
	Options        []SelectedOption `json:"options,omitempty"`
}

type SelectedOption struct {
	OptionID   uuid.UUID           `json:"option_id"`
	Quantity   int                 `json:"quantity"`
	SubOptions []SelectedSubOption `json:"sub_options,omitempty"`
}

type SelectedSubOption struct {
	SubOptionID uuid.UUID `json:"sub_option_id"`
	Quantity    int       `json:"quantity"`
}

// GameItem is an itemized entertainment line entered by the back office.
type GameItem struct {
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// QuoteRequest is the input of the validate -> price -> record pipeline.
type QuoteRequest struct {
	Mode             ServiceMode
	EventDate        time.Time
	GuestCount       int
	DurationHours    float64
	DeliveryLocation string
	// fallback only; the server-side resolver is authoritative when it answers
	ClientDistanceKm *float64
	Selection        Selection
	Customer         CustomerInfo
	Notes            string
}

type BreakdownLine struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Detail string          `json:"detail,omitempty"`
}

// Breakdown is the ordered, reproducible pricing result.
type Breakdown struct {
	Lines            []BreakdownLine `json:"lines"`
	BasePrice        decimal.Decimal `json:"base_price"`
	SupplementsTotal decimal.Decimal `json:"supplements_total"`
	ProductsTotal    decimal.Decimal `json:"products_total"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
	DistanceKm       *float64        `json:"distance_km,omitempty"`
	Warnings         []string        `json:"warnings,omitempty"`
}

type Quote struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// YYYY-NNN, sequential per year; the sequence pads to three digits and
	// widens past 999 rather than rejecting the quote
	Number           string      `gorm:"uniqueIndex;size:12"`
	Mode             ServiceMode `gorm:"type:varchar(12);index"`
	Status           QuoteStatus `gorm:"type:varchar(12);index"`
	EventDate        time.Time
	GuestCount       int     `gorm:"not null"`
	DurationHours    float64 `gorm:"type:decimal(5,2)"`
	DeliveryLocation string  `gorm:"size:255"`
	DistanceKm       *float64
	CustomerName     string `gorm:"size:140"`
	CustomerEmail    string `gorm:"size:140;index"`
	CustomerPhone    string `gorm:"size:60"`
	Notes            string `gorm:"type:text"`

	Selection Selection `gorm:"type:jsonb;serializer:json"`
	Lines     []QuoteLine
	Warnings  []string `gorm:"type:jsonb;serializer:json"`

	BasePrice        decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	SupplementsTotal decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	ProductsTotal    decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	Total            decimal.Decimal `gorm:"type:decimal(12,2)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Quote) Breakdown() Breakdown {
	b := Breakdown{
		BasePrice:        q.BasePrice,
		SupplementsTotal: q.SupplementsTotal,
		ProductsTotal:    q.ProductsTotal,
		GrandTotal:       q.Total,
		DistanceKm:       q.DistanceKm,
		Warnings:         q.Warnings,
	}
	for _, l := range q.Lines {
		b.Lines = append(b.Lines, BreakdownLine{Label: l.Label, Amount: l.Amount, Detail: l.Detail})
	}
	return b
}

type QuoteLine struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	QuoteID  uuid.UUID       `gorm:"type:uuid;index"`
	Position int             `gorm:"not null"`
	Label    string          `gorm:"size:255"`
	Amount   decimal.Decimal `gorm:"type:decimal(12,2)"`
	Detail   string          `gorm:"size:255"`
}

// QuoteCounter backs the atomic reserve-next-number-per-year operation.
type QuoteCounter struct {
	Year int `gorm:"primaryKey"`
	Last int `gorm:"not null;default:0"`
}

// FormatQuoteNumber renders YYYY-NNN. Three digits is a minimum pad, not a
// cap; sequence 1000 and up keeps allocating with a wider number so a busy
// year never stalls.
func FormatQuoteNumber(year, seq int) string {
	return fmt.Sprintf("%04d-%03d", year, seq)
}

type QuoteFilter struct {
	Year     int
	Status   QuoteStatus
	Mode     ServiceMode
	Page     int
	PageSize int
}
