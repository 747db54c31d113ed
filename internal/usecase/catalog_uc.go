package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/marchal/traiteur/internal/domain"
)

// CatalogUC is the back-office surface over categories, products, options and
// sizes.
type CatalogUC struct {
	Catalog domain.CatalogRepo
}

func (uc *CatalogUC) ForMode(ctx context.Context, mode domain.ServiceMode) ([]domain.Category, error) {
	if !mode.Valid() {
		return nil, errors.New("invalid mode")
	}
	return uc.Catalog.CategoriesForMode(ctx, mode)
}

func (uc *CatalogUC) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if id == uuid.Nil {
		return nil, errors.New("product id")
	}
	return uc.Catalog.FindProduct(ctx, id)
}

func (uc *CatalogUC) SaveCategory(ctx context.Context, c *domain.Category) error {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return errors.New("category name")
	}
	if c.MinSelection < 0 {
		return errors.New("min selection must be >= 0")
	}
	if c.MaxSelection != nil && *c.MaxSelection < c.MinSelection {
		return errors.New("max selection below min selection")
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Slug == "" {
		c.Slug = slugify(c.Name)
	}
	return uc.Catalog.SaveCategory(ctx, c)
}

func (uc *CatalogUC) SaveProduct(ctx context.Context, p *domain.Product) error {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return errors.New("product name")
	}
	if p.CategoryID == uuid.Nil {
		return errors.New("product category")
	}
	if p.BasePrice.IsNegative() {
		return errors.New("negative base price")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Slug == "" {
		p.Slug = slugify(p.Name)
	}
	if p.Kind == "" {
		p.Kind = domain.ExtensionNone
	}
	return uc.Catalog.SaveProduct(ctx, p)
}

func (uc *CatalogUC) SaveOption(ctx context.Context, o *domain.Option) error {
	if o == nil || o.ProductID == uuid.Nil {
		return errors.New("option product")
	}
	if o.Price.IsNegative() {
		return errors.New("negative option price")
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return uc.Catalog.SaveOption(ctx, o)
}

func (uc *CatalogUC) SaveSubOption(ctx context.Context, s *domain.SubOption) error {
	if s == nil || s.OptionID == uuid.Nil {
		return errors.New("sub-option option")
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return uc.Catalog.SaveSubOption(ctx, s)
}

func (uc *CatalogUC) SaveSize(ctx context.Context, v *domain.SizedVariant) error {
	if v == nil || v.ProductID == uuid.Nil {
		return errors.New("size product")
	}
	if strings.TrimSpace(v.Label) == "" {
		return errors.New("size label")
	}
	if v.Price.IsNegative() {
		return errors.New("negative size price")
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return uc.Catalog.SaveSize(ctx, v)
}

func (uc *CatalogUC) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.New("product id")
	}
	return uc.Catalog.DeleteProduct(ctx, id)
}

func slugify(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}
