package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type UnknownProductError struct{ ID uuid.UUID }

func (e UnknownProductError) Error() string { return "unknown product " + e.ID.String() }

type UnknownOptionError struct{ ProductID, OptionID uuid.UUID }

func (e UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown option %s on product %s", e.OptionID, e.ProductID)
}

type UnknownSizeError struct{ ProductID, SizeID uuid.UUID }

func (e UnknownSizeError) Error() string {
	return fmt.Sprintf("unknown size %s on product %s", e.SizeID, e.ProductID)
}

type DeliveryOutOfRangeError struct {
	DistanceKm float64
	MaxKm      float64
}

func (e DeliveryOutOfRangeError) Error() string {
	return fmt.Sprintf("delivery distance %.1f km exceeds last zone (%.1f km)", e.DistanceKm, e.MaxKm)
}

type MissingSettingError struct{ Key string }

func (e MissingSettingError) Error() string { return "missing required setting " + e.Key }

type IssueCode string

const (
	IssueSelectionRequired    IssueCode = "selection_required"
	IssueBelowMinSelections   IssueCode = "below_min_selections"
	IssueAboveMaxSelections   IssueCode = "above_max_selections"
	IssueBelowPerGuestMinimum IssueCode = "below_per_guest_minimum"
	IssueBelowMinQuantity     IssueCode = "below_min_quantity"
	IssueAboveMaxQuantity     IssueCode = "above_max_quantity"
	IssueNegativeQuantity     IssueCode = "negative_quantity"
	IssueOptionExceedsProduct IssueCode = "option_quantity_exceeds_product"
	IssueInactiveProduct      IssueCode = "inactive_product"
	IssueInactiveOption       IssueCode = "inactive_option"
	IssueSizeNotAvailable     IssueCode = "size_not_available"
	IssueOptionNotAvailable   IssueCode = "option_not_available"
	IssueNotAKeg              IssueCode = "not_a_keg_size"
)

// ValidationIssue is one broken selection rule; requests report every issue at
// once rather than stopping at the first.
type ValidationIssue struct {
	Code      IssueCode `json:"code"`
	Category  string    `json:"category,omitempty"`
	Product   string    `json:"product,omitempty"`
	Shortfall int       `json:"shortfall,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

func (i ValidationIssue) String() string {
	parts := []string{string(i.Code)}
	if i.Category != "" {
		parts = append(parts, "category="+i.Category)
	}
	if i.Product != "" {
		parts = append(parts, "product="+i.Product)
	}
	if i.Shortfall > 0 {
		parts = append(parts, fmt.Sprintf("shortfall=%d", i.Shortfall))
	}
	return strings.Join(parts, " ")
}

type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		msgs = append(msgs, i.String())
	}
	return "invalid selection: " + strings.Join(msgs, "; ")
}
