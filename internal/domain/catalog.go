package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ServiceMode string

const (
	ModeRestaurant ServiceMode = "restaurant"
	ModeTrailer    ServiceMode = "trailer"
)

func (m ServiceMode) Valid() bool {
	return m == ModeRestaurant || m == ModeTrailer
}

// CategoryScope says which service modes a category applies to.
type CategoryScope string

const (
	ScopeRestaurant CategoryScope = "restaurant"
	ScopeTrailer    CategoryScope = "trailer"
	ScopeBoth       CategoryScope = "both"
)

func (s CategoryScope) Includes(m ServiceMode) bool {
	return s == ScopeBoth || string(s) == string(m)
}

type Category struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey"`
	Slug         string        `gorm:"uniqueIndex;size:140"`
	Name         string        `gorm:"size:140"`
	Scope        CategoryScope `gorm:"type:varchar(12);index"`
	Required     bool          `gorm:"default:false"`
	MinSelection int           `gorm:"default:0"`
	// nil means unbounded
	MaxSelection *int
	// each guest must be covered by at least one unit across the category
	MinPerPerson bool `gorm:"default:false"`
	Position     int  `gorm:"default:0"`
	Products     []Product
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PriceUnit is the unit semantics of a product's base price.
type PriceUnit string

const (
	UnitPiece    PriceUnit = "piece"
	UnitKg       PriceUnit = "kg"
	UnitPortion6 PriceUnit = "portion6" // serves 6 people per unit
	UnitLiter    PriceUnit = "liter"
)

// ExtensionKind discriminates the one extension shape a product may carry.
// The legacy schema let the three column groups overlap; the kind is now explicit
// and the accessors below ignore data belonging to another shape.
type ExtensionKind string

const (
	ExtensionNone    ExtensionKind = "none"
	ExtensionFlat    ExtensionKind = "flat"
	ExtensionSizes   ExtensionKind = "sizes"
	ExtensionOptions ExtensionKind = "options"
)

type Product struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID       `gorm:"type:uuid;index"`
	Slug       string          `gorm:"uniqueIndex;size:140"`
	Name       string          `gorm:"size:180"`
	// short menu copy shown on the public catalog; may be generated
	Description string          `gorm:"type:text"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(12,2)"`
	Unit        PriceUnit       `gorm:"type:varchar(20);default:'piece'"`
	MinQty      int             `gorm:"default:0"`
	// 0 means unbounded
	MaxQty   int           `gorm:"default:0"`
	Active   bool          `gorm:"default:true;index"`
	Position int           `gorm:"default:0"`
	Kind     ExtensionKind `gorm:"type:varchar(10);default:'none'"`

	// flat supplement shape
	SupplementName  string          `gorm:"size:140"`
	SupplementPrice decimal.Decimal `gorm:"type:decimal(12,2);default:0"`

	OptionList []Option       `gorm:"foreignKey:ProductID"`
	SizeList   []SizedVariant `gorm:"foreignKey:ProductID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FlatSupplement returns the optional supplement, or ok=false when the product
// does not carry that shape.
func (p *Product) FlatSupplement() (name string, price decimal.Decimal, ok bool) {
	if p.Kind != ExtensionFlat || p.SupplementName == "" {
		return "", decimal.Zero, false
	}
	return p.SupplementName, p.SupplementPrice, true
}

func (p *Product) Sizes() []SizedVariant {
	if p.Kind != ExtensionSizes {
		return nil
	}
	return p.SizeList
}

func (p *Product) Options() []Option {
	if p.Kind != ExtensionOptions {
		return nil
	}
	return p.OptionList
}

func (p *Product) FindSize(id uuid.UUID) *SizedVariant {
	for i := range p.SizeList {
		if p.SizeList[i].ID == id {
			return &p.SizeList[i]
		}
	}
	return nil
}

func (p *Product) FindOption(id uuid.UUID) *Option {
	for i := range p.OptionList {
		if p.OptionList[i].ID == id {
			return &p.OptionList[i]
		}
	}
	return nil
}

type Option struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID  uuid.UUID       `gorm:"type:uuid;index"`
	Name       string          `gorm:"size:180"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	Active     bool            `gorm:"default:true"`
	Position   int             `gorm:"default:0"`
	SubOptions []SubOption     `gorm:"foreignKey:OptionID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (o *Option) FindSubOption(id uuid.UUID) *SubOption {
	for i := range o.SubOptions {
		if o.SubOptions[i].ID == id {
			return &o.SubOptions[i]
		}
	}
	return nil
}

// SubOption records a free choice one level under an option; price is usually zero.
type SubOption struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OptionID  uuid.UUID       `gorm:"type:uuid;index"`
	Name      string          `gorm:"size:180"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	Active    bool            `gorm:"default:true"`
	Position  int             `gorm:"default:0"`
	CreatedAt time.Time
}

type SizedVariant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_sizes_product_label"`
	Label     string    `gorm:"size:60;uniqueIndex:idx_sizes_product_label"`
	// physical size in centiliters
	SizeCl   float64         `gorm:"type:decimal(8,2);default:0"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2)"`
	Active   bool            `gorm:"default:true"`
	Featured bool            `gorm:"default:false"`
	// keg sizes feed the trailer tap-rental line
	Keg       bool `gorm:"default:false"`
	CreatedAt time.Time
}
