package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bazarsur/panel/internal/domain"
)

type SaleRepo struct{ db *gorm.DB }

func NewSaleRepo(db *gorm.DB) *SaleRepo { return &SaleRepo{db: db} }

func (r *SaleRepo) Save(ctx context.Context, s *domain.Sale) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// ReplaceItems persiste la venta borrando y recreando sus renglones en una
// transacción, para que una edición nunca deje renglones viejos colgando.
func (r *SaleRepo) ReplaceItems(ctx context.Context, s *domain.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", s.ID).Delete(&domain.SaleItem{}).Error; err != nil {
			return err
		}
		for i := range s.Items {
			s.Items[i].SaleID = s.ID
		}
		return tx.Save(s).Error
	})
}

func (r *SaleRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	var s domain.Sale
	if err := r.db.WithContext(ctx).Preload("Items").First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SaleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", id).Delete(&domain.SaleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Sale{}, "id = ?", id).Error
	})
}

func (r *SaleRepo) List(ctx context.Context, f domain.SaleFilter) ([]domain.Sale, error) {
	var list []domain.Sale
	q := r.db.WithContext(ctx).Model(&domain.Sale{})
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date <= ?", *f.To)
	}
	if f.PaymentMethod != "" {
		q = q.Where("payment_method = ?", f.PaymentMethod)
	}
	if f.Channel != "" {
		q = q.Where("channel = ?", f.Channel)
	}
	if f.ProductID != nil {
		q = q.Where("id IN (?)", r.db.Model(&domain.SaleItem{}).Select("sale_id").Where("product_id = ?", *f.ProductID))
	}
	if err := q.Order("date desc").Preload("Items").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *SaleRepo) Recent(ctx context.Context, limit int) ([]domain.Sale, error) {
	var list []domain.Sale
	if err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Preload("Items").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
