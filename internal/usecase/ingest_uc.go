package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bazarsur/panel/internal/domain"
)

// WebSaleItem es un renglón tal como lo manda la tienda: identificado por SKU
// porque el catálogo remoto no conoce los IDs locales.
type WebSaleItem struct {
	SKU      string
	Quantity int
	Price    float64
}

type WebSaleInput struct {
	OrderID       string
	Items         []WebSaleItem
	TotalAmount   float64
	PaymentMethod string
	CustomerName  string
	CustomerEmail string
	Origin        string
}

type IngestUC struct {
	Sales  domain.SaleRepo
	Ledger *LedgerUC
}

// Ingest replica una venta originada en una tienda externa. SKUs desconocidos
// se omiten con warning (procesamiento parcial, no rechazo); el descuento de
// stock se clampea en cero. Devuelve la venta creada y los SKUs omitidos.
func (uc *IngestUC) Ingest(ctx context.Context, in WebSaleInput) (*domain.Sale, []string, error) {
	var skipped []string
	items := make([]domain.SaleItem, 0, len(in.Items))

	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, nil, &domain.ValidationError{Msg: "cantidad mínima 1 por renglón"}
		}
		p, err := uc.Ledger.ReserveBySKU(ctx, it.SKU, it.Quantity)
		if err != nil {
			var nf *domain.ProductNotFoundError
			if errors.As(err, &nf) || errors.Is(err, domain.ErrNotFound) {
				log.Warn().Str("sku", it.SKU).Str("order_id", in.OrderID).Msg("SKU desconocido en venta remota, se omite el renglón")
				skipped = append(skipped, it.SKU)
				continue
			}
			return nil, nil, err
		}
		items = append(items, domain.SaleItem{
			ID:          uuid.New(),
			ProductID:   p.ID,
			ProductSKU:  p.SKU,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.Price,
			UnitCost:    p.CostPrice,
		})
	}

	sale := &domain.Sale{
		ID:              uuid.New(),
		Items:           items,
		PaymentMethod:   in.PaymentMethod,
		Channel:         in.Origin,
		CustomerName:    in.CustomerName,
		CustomerContact: in.CustomerEmail,
		Date:            time.Now(),
	}
	if sale.PaymentMethod == "" {
		sale.PaymentMethod = "Online"
	}
	if sale.Channel == "" {
		sale.Channel = "Online Store"
	}
	if sale.CustomerName == "" {
		sale.CustomerName = "Online Customer"
	}
	sale.Recalculate()
	// El total del caller es autoritativo si viene: tolera redondeos o manejo
	// de moneda distinto del lado remoto sin rechazar la transacción.
	if in.TotalAmount > 0 {
		sale.TotalAmount = in.TotalAmount
	}

	if err := uc.Sales.Save(ctx, sale); err != nil {
		return nil, nil, err
	}
	if len(skipped) > 0 {
		log.Warn().Str("sale_id", sale.ID.String()).Strs("skus", skipped).Msg("ingesta parcial: la venta se registró sin los SKUs no resueltos")
	}
	return sale, skipped, nil
}
