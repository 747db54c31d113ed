package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marchal/traiteur/internal/domain"
)

type CatalogRepo struct{ db *gorm.DB }

func NewCatalogRepo(db *gorm.DB) *CatalogRepo { return &CatalogRepo{db: db} }

func (r *CatalogRepo) CategoriesForMode(ctx context.Context, mode domain.ServiceMode) ([]domain.Category, error) {
	var list []domain.Category
	err := r.db.WithContext(ctx).
		Where("scope = ? OR scope = ?", mode, domain.ScopeBoth).
		Order("position asc").
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Products.OptionList", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Products.OptionList.SubOptions", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Products.SizeList", func(db *gorm.DB) *gorm.DB { return db.Order("size_cl asc") }).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *CatalogRepo) FindCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).Preload("Products").First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CatalogRepo) FindProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Preload("OptionList", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("OptionList.SubOptions", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("SizeList", func(db *gorm.DB) *gorm.DB { return db.Order("size_cl asc") }).
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepo) FindSize(ctx context.Context, id uuid.UUID) (*domain.SizedVariant, error) {
	var v domain.SizedVariant
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *CatalogRepo) SaveCategory(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CatalogRepo) SaveProduct(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Omit("OptionList", "SizeList").Save(p).Error
}

func (r *CatalogRepo) SaveOption(ctx context.Context, o *domain.Option) error {
	return r.db.WithContext(ctx).Omit("SubOptions").Save(o).Error
}

func (r *CatalogRepo) SaveSubOption(ctx context.Context, s *domain.SubOption) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *CatalogRepo) SaveSize(ctx context.Context, v *domain.SizedVariant) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *CatalogRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("option_id IN (?)",
			tx.Model(&domain.Option{}).Select("id").Where("product_id = ?", id),
		).Delete(&domain.SubOption{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.Option{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.SizedVariant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Product{}, "id = ?", id).Error
	})
}
