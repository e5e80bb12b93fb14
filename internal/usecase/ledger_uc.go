package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bazarsur/panel/internal/domain"
)

// LedgerUC es el libro de stock: toda reserva y restauración pasa por acá.
// Las primitivas del repo son sentencias atómicas, así que dos ventas
// concurrentes sobre el mismo producto no pueden pisarse el contador.
type LedgerUC struct {
	Products domain.ProductRepo
}

// Reserve descuenta qty del stock de p. Falla con InsufficientStockError
// (nombrando al producto) si no alcanza; la verificación y el descuento son
// una única sentencia, no un check-then-act.
func (uc *LedgerUC) Reserve(ctx context.Context, p *domain.Product, qty int) error {
	if qty < 1 {
		return &domain.ValidationError{Msg: "cantidad inválida"}
	}
	ok, err := uc.Products.ReserveStock(ctx, p.ID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.InsufficientStockError{Product: p.Name}
	}
	p.Stock -= qty
	return nil
}

// Restore devuelve qty al stock del producto. Si el producto ya no existe es
// un no-op con warning: la entidad desaparecida no puede bloquear una
// corrección que protege al resto del estado.
func (uc *LedgerUC) Restore(ctx context.Context, productID uuid.UUID, qty int) {
	ok, err := uc.Products.RestoreStock(ctx, productID, qty)
	if err != nil {
		log.Error().Err(err).Str("product_id", productID.String()).Int("qty", qty).Msg("restaurar stock")
		return
	}
	if !ok {
		log.Warn().Str("product_id", productID.String()).Int("qty", qty).Msg("restauración sobre producto inexistente, se omite")
	}
}

// ReserveBySKU es la variante de la ingesta remota: busca por SKU y descuenta
// clampeando en cero en vez de fallar, porque rechazar la venta entera
// desincronizaría tienda y panel más que un descuento recortado.
func (uc *LedgerUC) ReserveBySKU(ctx context.Context, sku string, qty int) (*domain.Product, error) {
	p, err := uc.Products.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.ProductNotFoundError{Ref: sku}
		}
		return nil, err
	}
	if err := uc.Products.DeductStockClamped(ctx, p.ID, qty); err != nil {
		return nil, err
	}
	if p.Stock < qty {
		p.Stock = 0
	} else {
		p.Stock -= qty
	}
	return p, nil
}
