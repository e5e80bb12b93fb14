package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/bazarsur/panel/internal/domain"
)

type ProductUC struct {
	Products  domain.ProductRepo
	Publisher domain.CatalogPublisher
}

type CreateProductInput struct {
	SKU         string
	Name        string
	Category    string
	Distributor string
	Image       string
	CostPrice   float64
	PublicPrice float64
	Stock       int
	MinStock    *int
	Type        string
	Sizes       []domain.SizeStock
}

type UpdateProductInput struct {
	Name        *string
	Category    *string
	Distributor *string
	Image       *string
	CostPrice   *float64
	PublicPrice *float64
	Stock       *int
	MinStock    *int
	Status      *domain.ProductStatus
	Type        *string
	Sizes       []domain.SizeStock
}

func (uc *ProductUC) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" || strings.TrimSpace(in.Name) == "" {
		return nil, &domain.ValidationError{Msg: "sku y nombre son obligatorios"}
	}
	if _, err := uc.Products.FindBySKU(ctx, sku); err == nil {
		return nil, &domain.ValidationError{Msg: "ya existe un producto con el SKU " + sku}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	p := &domain.Product{
		ID:          uuid.New(),
		SKU:         sku,
		Name:        strings.TrimSpace(in.Name),
		Category:    in.Category,
		Distributor: in.Distributor,
		Image:       in.Image,
		CostPrice:   in.CostPrice,
		PublicPrice: in.PublicPrice,
		Stock:       in.Stock,
		MinStock:    5,
		Status:      domain.ProductActive,
		Type:        strings.ToLower(strings.TrimSpace(in.Type)),
		Sizes:       in.Sizes,
	}
	if in.MinStock != nil {
		p.MinStock = *in.MinStock
	}
	p.Normalize()
	if err := uc.Products.Save(ctx, p); err != nil {
		return nil, err
	}
	uc.publish(p)
	return p, nil
}

// Update mergea campo por campo: lo presente pisa, lo ausente se conserva.
// El SKU es inmutable una vez asignado, por eso no figura en el input.
func (uc *ProductUC) Update(ctx context.Context, id uuid.UUID, in UpdateProductInput) (*domain.Product, error) {
	p, err := uc.Products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.ProductNotFoundError{Ref: id.String()}
		}
		return nil, err
	}
	if in.Name != nil && *in.Name != "" {
		p.Name = *in.Name
	}
	if in.Category != nil && *in.Category != "" {
		p.Category = *in.Category
	}
	if in.Distributor != nil {
		p.Distributor = *in.Distributor
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	if in.CostPrice != nil {
		p.CostPrice = *in.CostPrice
	}
	if in.PublicPrice != nil {
		p.PublicPrice = *in.PublicPrice
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.MinStock != nil {
		p.MinStock = *in.MinStock
	}
	if in.Status != nil && *in.Status != "" {
		p.Status = *in.Status
	}
	if in.Type != nil {
		p.Type = strings.ToLower(strings.TrimSpace(*in.Type))
	}
	if in.Sizes != nil {
		p.Sizes = in.Sizes
	}
	p.Normalize()
	if err := uc.Products.Save(ctx, p); err != nil {
		return nil, err
	}
	uc.publish(p)
	return p, nil
}

func (uc *ProductUC) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, err := uc.Products.FindByID(ctx, id)
	if err != nil && errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.ProductNotFoundError{Ref: id.String()}
	}
	return p, err
}

func (uc *ProductUC) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	return uc.Products.List(ctx, f)
}

// Delete es una acción administrativa exclusiva del panel; el camino de
// sincronización nunca borra productos.
func (uc *ProductUC) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := uc.Products.FindByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.ProductNotFoundError{Ref: id.String()}
		}
		return err
	}
	return uc.Products.Delete(ctx, id)
}

// publish dispara el fan-out hacia las tiendas sin bloquear la request que lo
// originó. La request puede terminar antes que el push, por eso el contexto
// propio.
func (uc *ProductUC) publish(p *domain.Product) {
	if uc.Publisher == nil {
		return
	}
	snapshot := *p
	go uc.Publisher.Publish(context.Background(), &snapshot)
}
