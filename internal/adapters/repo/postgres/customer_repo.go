package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/marchal/traiteur/internal/domain"
)

type CustomerRepo struct{ db *gorm.DB }

func NewCustomerRepo(db *gorm.DB) *CustomerRepo { return &CustomerRepo{db: db} }

func (r *CustomerRepo) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var c domain.Customer
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return nil, errors.New("empty email")
	}
	if err := r.db.WithContext(ctx).First(&c, "LOWER(email) = ?", e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepo) UpsertByEmail(ctx context.Context, c *domain.Customer) error {
	if c.Email == "" {
		return errors.New("empty email")
	}
	c.Email = strings.ToLower(c.Email)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Customer
		err := tx.First(&existing, "LOWER(email) = ?", c.Email).Error
		if err == nil {
			updates := map[string]any{}
			if c.Name != "" {
				updates["name"] = c.Name
			}
			if c.Phone != "" {
				updates["phone"] = c.Phone
			}
			if len(updates) == 0 {
				return nil
			}
			return tx.Model(&existing).Updates(updates).Error
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(c).Error
		}
		return err
	})
}
