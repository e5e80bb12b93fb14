package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bazarsur/panel/internal/domain"
)

// SaleLine es la representación canónica de un renglón de venta. Las formas
// sueltas del borde HTTP (producto como id pelado o como objeto embebido) se
// normalizan a esto antes de entrar al motor.
type SaleLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice float64
}

type CustomerInput struct {
	Name    string
	Contact string
}

type CreateSaleInput struct {
	Items         []SaleLine
	PaymentMethod string
	Channel       string
	Customer      *CustomerInput
	CreatedBy     string
}

type UpdateSaleInput struct {
	// Items nil significa "no tocar renglones"; no-nil reemplaza el set
	// completo.
	Items         []SaleLine
	PaymentMethod *string
	Channel       *string
	Customer      *CustomerInput
}

type SaleUC struct {
	Sales    domain.SaleRepo
	Products domain.ProductRepo
	Ledger   *LedgerUC
}

// Create procesa los renglones secuencialmente en el orden recibido. Si un
// renglón falla después de que otros ya reservaron stock, esas reservas
// quedan aplicadas: no hay rollback automático (limitación aceptada, no es un
// sistema de two-phase commit).
func (uc *SaleUC) Create(ctx context.Context, in CreateSaleInput) (*domain.Sale, error) {
	if len(in.Items) == 0 {
		return nil, &domain.ValidationError{Msg: "la venta no tiene renglones"}
	}
	items, err := uc.buildItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	sale := &domain.Sale{
		ID:            uuid.New(),
		Items:         items,
		PaymentMethod: in.PaymentMethod,
		Channel:       in.Channel,
		Date:          time.Now(),
		CreatedBy:     in.CreatedBy,
	}
	if in.Customer != nil {
		sale.CustomerName = in.Customer.Name
		sale.CustomerContact = in.Customer.Contact
	}
	sale.Recalculate()
	if err := uc.Sales.Save(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// buildItems valida y reserva renglón por renglón. El orden importa: ante una
// falla a mitad de camino, sobreviven exactamente las reservas de los
// renglones anteriores.
func (uc *SaleUC) buildItems(ctx context.Context, lines []SaleLine) ([]domain.SaleItem, error) {
	items := make([]domain.SaleItem, 0, len(lines))
	for _, ln := range lines {
		if ln.Quantity < 1 {
			return nil, &domain.ValidationError{Msg: "cantidad mínima 1 por renglón"}
		}
		p, err := uc.Products.FindByID(ctx, ln.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, &domain.ProductNotFoundError{Ref: ln.ProductID.String()}
			}
			return nil, err
		}
		if p.Stock < ln.Quantity {
			return nil, &domain.InsufficientStockError{Product: p.Name}
		}
		if err := uc.Ledger.Reserve(ctx, p, ln.Quantity); err != nil {
			return nil, err
		}
		items = append(items, domain.SaleItem{
			ID:          uuid.New(),
			ProductID:   p.ID,
			ProductSKU:  p.SKU,
			ProductName: p.Name,
			Quantity:    ln.Quantity,
			UnitPrice:   ln.UnitPrice,
			UnitCost:    p.CostPrice,
		})
	}
	return items, nil
}

// Update reemplaza renglones en dos fases: primero restaura el stock de todos
// los renglones actuales, después valida y reserva el set nuevo. Si la fase 2
// falla a mitad de camino el stock queda en estado "restaurado" (disponible),
// que es el más seguro de los dos desenlaces inconsistentes posibles.
func (uc *SaleUC) Update(ctx context.Context, id uuid.UUID, in UpdateSaleInput) (*domain.Sale, error) {
	sale, err := uc.Sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.SaleNotFoundError{ID: id.String()}
		}
		return nil, err
	}

	itemsChanged := in.Items != nil
	if itemsChanged {
		for _, it := range sale.Items {
			uc.Ledger.Restore(ctx, it.ProductID, it.Quantity)
		}
		newItems, err := uc.buildItems(ctx, in.Items)
		if err != nil {
			return nil, err
		}
		sale.Items = newItems
		sale.Recalculate()
	}

	if in.PaymentMethod != nil && *in.PaymentMethod != "" {
		sale.PaymentMethod = *in.PaymentMethod
	}
	if in.Channel != nil && *in.Channel != "" {
		sale.Channel = *in.Channel
	}
	if in.Customer != nil {
		if in.Customer.Name != "" {
			sale.CustomerName = in.Customer.Name
		}
		if in.Customer.Contact != "" {
			sale.CustomerContact = in.Customer.Contact
		}
	}

	if itemsChanged {
		err = uc.Sales.ReplaceItems(ctx, sale)
	} else {
		err = uc.Sales.Save(ctx, sale)
	}
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (uc *SaleUC) Get(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	sale, err := uc.Sales.FindByID(ctx, id)
	if err != nil && errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.SaleNotFoundError{ID: id.String()}
	}
	return sale, err
}

// Void restaura el stock de cada renglón (ignorando productos ya borrados) y
// elimina la venta en forma permanente.
func (uc *SaleUC) Void(ctx context.Context, id uuid.UUID) error {
	sale, err := uc.Sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.SaleNotFoundError{ID: id.String()}
		}
		return err
	}
	for _, it := range sale.Items {
		uc.Ledger.Restore(ctx, it.ProductID, it.Quantity)
	}
	if err := uc.Sales.Delete(ctx, sale.ID); err != nil {
		return err
	}
	log.Info().Str("sale_id", sale.ID.String()).Msg("venta anulada y stock restaurado")
	return nil
}

// List aplica los filtros del panel. El fin de rango es inclusivo hasta el
// final del día.
func (uc *SaleUC) List(ctx context.Context, f domain.SaleFilter) ([]domain.Sale, error) {
	if f.To != nil {
		end := endOfDay(*f.To)
		f.To = &end
	}
	return uc.Sales.List(ctx, f)
}

// ByProduct agrupa renglones de todas las ventas del rango por producto,
// ordenado por facturación descendente. Nombre y SKU salen del snapshot del
// renglón; la imagen se completa desde el catálogo si el producto sigue vivo.
func (uc *SaleUC) ByProduct(ctx context.Context, from, to *time.Time) ([]domain.ProductSalesRow, error) {
	f := domain.SaleFilter{From: from}
	if to != nil {
		end := endOfDay(*to)
		f.To = &end
	}
	sales, err := uc.Sales.List(ctx, f)
	if err != nil {
		return nil, err
	}

	rows := map[uuid.UUID]*domain.ProductSalesRow{}
	for _, s := range sales {
		for _, it := range s.Items {
			row, ok := rows[it.ProductID]
			if !ok {
				row = &domain.ProductSalesRow{ProductID: it.ProductID, ProductName: it.ProductName, SKU: it.ProductSKU}
				rows[it.ProductID] = row
			}
			row.TotalQuantity += it.Quantity
			row.TotalRevenue += it.Subtotal
			row.TotalProfit += it.Subtotal - float64(it.Quantity)*it.UnitCost
			if s.Date.After(row.LastSaleDate) {
				row.LastSaleDate = s.Date
			}
		}
	}

	out := make([]domain.ProductSalesRow, 0, len(rows))
	for id, row := range rows {
		if p, err := uc.Products.FindByID(ctx, id); err == nil {
			row.Image = p.Image
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalRevenue > out[j].TotalRevenue })
	return out, nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
