package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarsur/panel/internal/domain"
)

func TestDashboardSummaryTotalesYStock(t *testing.T) {
	products := newFakeProductRepo()
	sales := newFakeSaleRepo()
	p1 := products.add(domain.Product{SKU: "D-1", Name: "Acolchado", Category: "Blanquería", CostPrice: 100, Stock: 4, MinStock: 5})
	products.add(domain.Product{SKU: "D-2", Name: "Cortina", Category: "Deco", CostPrice: 50, Stock: 10, MinStock: 5})

	s := &domain.Sale{
		ID:            uuid.New(),
		PaymentMethod: "Efectivo",
		Date:          time.Now(),
		Items: []domain.SaleItem{
			{ID: uuid.New(), ProductID: p1.ID, Quantity: 1, UnitPrice: 200, UnitCost: 100},
		},
	}
	s.Recalculate()
	require.NoError(t, sales.Save(context.Background(), s))

	uc := &DashboardUC{Sales: sales, Products: products}
	sum, err := uc.Summary(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 200.0, sum.TotalSales)
	assert.Equal(t, 100.0, sum.TotalProfit)
	assert.Equal(t, 900.0, sum.StockValue, "4x100 + 10x50")
	assert.Equal(t, 1, sum.LowStockCount)
	require.Len(t, sum.SalesByPaymentMethod, 1)
	assert.Equal(t, "Efectivo", sum.SalesByPaymentMethod[0].Label)
	require.Len(t, sum.SalesByCategory, 1)
	assert.Equal(t, "Blanquería", sum.SalesByCategory[0].Label)
	require.Len(t, sum.RecentActivity, 1)
}

func TestDashboardTrendRellenaDiasSinVentas(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	sales := []domain.Sale{
		{ID: uuid.New(), TotalAmount: 100, Date: now.AddDate(0, 0, -1)},
		{ID: uuid.New(), TotalAmount: 50, Date: now.AddDate(0, 0, -1)},
		{ID: uuid.New(), TotalAmount: 999, Date: now.AddDate(0, 0, -30)},
	}

	points := trailingTrend(sales, 7, now)
	require.Len(t, points, 8, "7 días hacia atrás más hoy")

	var withSales, total float64
	for _, pt := range points {
		total += pt.Sales
		if pt.Sales > 0 {
			withSales = pt.Sales
		}
	}
	assert.Equal(t, 150.0, withSales)
	assert.Equal(t, 150.0, total, "la venta vieja queda fuera de la ventana")
	assert.Equal(t, "2026-08-30", points[6].Date)
	assert.Equal(t, "Dom", points[6].Day)
}

func TestDashboardActividadRecienteLimitadaACinco(t *testing.T) {
	products := newFakeProductRepo()
	sales := newFakeSaleRepo()
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		s := &domain.Sale{ID: uuid.New(), TotalAmount: 10, Date: base.AddDate(0, 0, i)}
		require.NoError(t, sales.Save(context.Background(), s))
	}

	uc := &DashboardUC{Sales: sales, Products: products}
	sum, err := uc.Summary(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, sum.RecentActivity, 5)
	assert.Equal(t, base.AddDate(0, 0, 6), sum.RecentActivity[0].Date, "la más nueva primero")
}

func TestDashboardFacetaPorTipo(t *testing.T) {
	products := newFakeProductRepo()
	sales := newFakeSaleRepo()
	hogar := products.add(domain.Product{SKU: "H-1", Name: "Mantel", Type: "hogar", CostPrice: 10, Stock: 3, MinStock: 5})
	calzado := products.add(domain.Product{SKU: "C-1", Name: "Bota", Type: "calzado", CostPrice: 80, Stock: 20, MinStock: 5})

	mk := func(p *domain.Product, price float64) {
		s := &domain.Sale{
			ID:   uuid.New(),
			Date: time.Now(),
			Items: []domain.SaleItem{
				{ID: uuid.New(), ProductID: p.ID, Quantity: 1, UnitPrice: price, UnitCost: p.CostPrice},
			},
		}
		s.Recalculate()
		require.NoError(t, sales.Save(context.Background(), s))
	}
	mk(hogar, 40)
	mk(calzado, 150)

	uc := &DashboardUC{Sales: sales, Products: products}
	sum, err := uc.Summary(context.Background(), "hogar")
	require.NoError(t, err)

	assert.Equal(t, 40.0, sum.TotalSales, "la venta de calzado queda fuera de la faceta")
	assert.Equal(t, 30.0, sum.StockValue)
	assert.Equal(t, 1, sum.LowStockCount)
}
