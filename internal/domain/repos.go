package domain

import (
	"context"

	"github.com/google/uuid"
)

type ProductRepo interface {
	Save(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ReserveStock descuenta qty en una sola sentencia condicional
	// (stock >= qty); devuelve ErrInsufficient como rows-affected-cero para
	// que ventas concurrentes no pierdan actualizaciones.
	ReserveStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	// RestoreStock incrementa qty; devuelve false si el producto ya no existe.
	RestoreStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	// DeductStockClamped descuenta sin dejar el stock negativo (camino de
	// ingesta remota).
	DeductStockClamped(ctx context.Context, id uuid.UUID, qty int) error
}

type SaleRepo interface {
	Save(ctx context.Context, s *Sale) error
	// ReplaceItems persiste la venta y reemplaza sus renglones en una
	// transacción.
	ReplaceItems(ctx context.Context, s *Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f SaleFilter) ([]Sale, error)
	Recent(ctx context.Context, limit int) ([]Sale, error)
}

// CatalogPublisher propaga snapshots de producto hacia las tiendas externas.
// La entrega es best-effort: el publisher loguea fallas y nunca las propaga
// al camino de escritura que lo disparó.
type CatalogPublisher interface {
	Publish(ctx context.Context, p *Product)
}
