package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/bazarsur/panel/internal/domain"
)

type fakeProductRepo struct {
	products map[uuid.UUID]*domain.Product

	saveError    error
	reserveError error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*domain.Product)}
}

func (f *fakeProductRepo) add(p domain.Product) *domain.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := p
	f.products[cp.ID] = &cp
	ret := cp
	return &ret
}

func (f *fakeProductRepo) Save(ctx context.Context, p *domain.Product) error {
	if f.saveError != nil {
		return f.saveError
	}
	cp := *p
	f.products[cp.ID] = &cp
	return nil
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	for _, p := range f.products {
		if p.SKU == strings.TrimSpace(sku) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProductRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range f.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) ReserveStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	if f.reserveError != nil {
		return false, f.reserveError
	}
	p, ok := f.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (f *fakeProductRepo) RestoreStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	p, ok := f.products[id]
	if !ok {
		return false, nil
	}
	p.Stock += qty
	return true, nil
}

func (f *fakeProductRepo) DeductStockClamped(ctx context.Context, id uuid.UUID, qty int) error {
	p, ok := f.products[id]
	if !ok {
		return nil
	}
	p.Stock -= qty
	if p.Stock < 0 {
		p.Stock = 0
	}
	return nil
}

func (f *fakeProductRepo) stockOf(id uuid.UUID) int {
	if p, ok := f.products[id]; ok {
		return p.Stock
	}
	return -1
}

type fakeSaleRepo struct {
	sales map[uuid.UUID]*domain.Sale

	saveError error
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]*domain.Sale)}
}

func (f *fakeSaleRepo) Save(ctx context.Context, s *domain.Sale) error {
	if f.saveError != nil {
		return f.saveError
	}
	cp := *s
	cp.Items = append([]domain.SaleItem(nil), s.Items...)
	f.sales[cp.ID] = &cp
	return nil
}

func (f *fakeSaleRepo) ReplaceItems(ctx context.Context, s *domain.Sale) error {
	return f.Save(ctx, s)
}

func (f *fakeSaleRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	s, ok := f.sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	cp.Items = append([]domain.SaleItem(nil), s.Items...)
	return &cp, nil
}

func (f *fakeSaleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.sales, id)
	return nil
}

func (f *fakeSaleRepo) List(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	var out []domain.Sale
	for _, s := range f.sales {
		if filter.From != nil && s.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && s.Date.After(*filter.To) {
			continue
		}
		if filter.PaymentMethod != "" && s.PaymentMethod != filter.PaymentMethod {
			continue
		}
		if filter.Channel != "" && s.Channel != filter.Channel {
			continue
		}
		if filter.ProductID != nil {
			found := false
			for _, it := range s.Items {
				if it.ProductID == *filter.ProductID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		cp := *s
		cp.Items = append([]domain.SaleItem(nil), s.Items...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeSaleRepo) Recent(ctx context.Context, limit int) ([]domain.Sale, error) {
	out, _ := f.List(ctx, domain.SaleFilter{})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
