package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marchal/traiteur/internal/domain"
)

type QuoteRepo struct{ db *gorm.DB }

func NewQuoteRepo(db *gorm.DB) *QuoteRepo { return &QuoteRepo{db: db} }

func (r *QuoteRepo) Save(ctx context.Context, q *domain.Quote) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *QuoteRepo) FindByNumber(ctx context.Context, number string) (*domain.Quote, error) {
	var q domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&q, "number = ?", number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *QuoteRepo) List(ctx context.Context, f domain.QuoteFilter) ([]domain.Quote, int64, error) {
	var list []domain.Quote
	q := r.db.WithContext(ctx).Model(&domain.Quote{})
	if f.Year > 0 {
		q = q.Where("number LIKE ?", fmt.Sprintf("%04d-%%", f.Year))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Mode != "" {
		q = q.Where("mode = ?", f.Mode)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	offset := (f.Page - 1) * f.PageSize
	err := q.Order("number desc").Offset(offset).Limit(f.PageSize).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// NextNumber reserves the next sequence for the year with a single atomic
// UPDATE ... RETURNING, so concurrent creations can never share a number.
func (r *QuoteRepo) NextNumber(ctx context.Context, year int) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"INSERT INTO quote_counters (year, last) VALUES (?, 0) ON CONFLICT (year) DO NOTHING", year,
		).Error; err != nil {
			return err
		}
		return tx.Raw(
			"UPDATE quote_counters SET last = last + 1 WHERE year = ? RETURNING last", year,
		).Scan(&next).Error
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *QuoteRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Quote{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()}).Error
}

func (r *QuoteRepo) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	return r.db.WithContext(ctx).Model(&domain.Quote{}).Where("id = ?", id).
		Updates(map[string]any{"notes": notes, "updated_at": time.Now()}).Error
}

func (r *QuoteRepo) ReplaceBreakdown(ctx context.Context, q *domain.Quote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", q.ID).Delete(&domain.QuoteLine{}).Error; err != nil {
			return err
		}
		if len(q.Lines) > 0 {
			if err := tx.Create(&q.Lines).Error; err != nil {
				return err
			}
		}
		q.UpdatedAt = time.Now()
		return tx.Model(q).
			Select("base_price", "supplements_total", "products_total", "total", "distance_km", "warnings", "updated_at").
			Updates(q).Error
	})
}
