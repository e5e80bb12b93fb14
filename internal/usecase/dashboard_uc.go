package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bazarsur/panel/internal/domain"
)

type DashboardUC struct {
	Sales    domain.SaleRepo
	Products domain.ProductRepo
}

type TrendPoint struct {
	Day   string  `json:"day"`
	Date  string  `json:"fullDate"`
	Sales float64 `json:"sales"`
}

type BreakdownRow struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type DashboardSummary struct {
	TotalSales           float64        `json:"totalSales"`
	TotalProfit          float64        `json:"totalProfit"`
	StockValue           float64        `json:"stockValue"`
	LowStockCount        int            `json:"lowStockCount"`
	RecentActivity       []domain.Sale  `json:"recentActivity"`
	SalesTrend           []TrendPoint   `json:"salesTrend"`
	SalesByPaymentMethod []BreakdownRow `json:"salesByPaymentMethod"`
	SalesByCategory      []BreakdownRow `json:"salesByCategory"`
}

var dayNames = []string{"Dom", "Lun", "Mar", "Mie", "Jue", "Vie", "Sab"}

// Summary arma las estadísticas del tablero en una pasada sobre ventas y
// catálogo. Con typeFacet restringe las métricas de productos a ese tipo y
// las de ventas a las que contienen al menos un producto del tipo.
func (uc *DashboardUC) Summary(ctx context.Context, typeFacet string) (*DashboardSummary, error) {
	products, err := uc.Products.List(ctx, domain.ProductFilter{Type: typeFacet})
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.Product, len(products))
	sum := &DashboardSummary{}
	for i := range products {
		p := &products[i]
		byID[p.ID] = p
		sum.StockValue += p.CostPrice * float64(p.Stock)
		if p.LowStock() {
			sum.LowStockCount++
		}
	}

	sales, err := uc.Sales.List(ctx, domain.SaleFilter{})
	if err != nil {
		return nil, err
	}
	if typeFacet != "" {
		sales = filterSalesByProducts(sales, byID)
	}

	byPayment := map[string]float64{}
	byCategory := map[string]float64{}
	for _, s := range sales {
		sum.TotalSales += s.TotalAmount
		sum.TotalProfit += s.TotalProfit
		byPayment[s.PaymentMethod] += s.TotalAmount
		for _, it := range s.Items {
			if p, ok := byID[it.ProductID]; ok {
				byCategory[p.Category] += it.Subtotal
			}
		}
	}

	// Sin faceta la actividad reciente sale directo del repo; con faceta hay
	// que recortar sobre el set ya filtrado por tipo.
	if typeFacet == "" {
		recent, err := uc.Sales.Recent(ctx, 5)
		if err != nil {
			return nil, err
		}
		sum.RecentActivity = recent
	} else {
		sum.RecentActivity = recentSales(sales, 5)
	}
	sum.SalesTrend = trailingTrend(sales, 7, time.Now())
	sum.SalesByPaymentMethod = toBreakdown(byPayment)
	sum.SalesByCategory = toBreakdown(byCategory)
	return sum, nil
}

func filterSalesByProducts(sales []domain.Sale, byID map[uuid.UUID]*domain.Product) []domain.Sale {
	out := make([]domain.Sale, 0, len(sales))
	for _, s := range sales {
		for _, it := range s.Items {
			if _, ok := byID[it.ProductID]; ok {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func recentSales(sales []domain.Sale, n int) []domain.Sale {
	sorted := make([]domain.Sale, len(sales))
	copy(sorted, sales)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// trailingTrend bucketiza por día calendario los últimos n días, incluyendo
// días sin ventas para que el gráfico no tenga huecos.
func trailingTrend(sales []domain.Sale, n int, now time.Time) []TrendPoint {
	start := now.AddDate(0, 0, -n)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	perDay := map[string]float64{}
	for _, s := range sales {
		if s.Date.Before(start) {
			continue
		}
		perDay[s.Date.Format("2006-01-02")] += s.TotalAmount
	}

	points := make([]TrendPoint, 0, n+1)
	for d := start; !d.After(now); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		points = append(points, TrendPoint{
			Day:   dayNames[int(d.Weekday())],
			Date:  key,
			Sales: perDay[key],
		})
	}
	return points
}

func toBreakdown(m map[string]float64) []BreakdownRow {
	rows := make([]BreakdownRow, 0, len(m))
	for k, v := range m {
		rows = append(rows, BreakdownRow{Label: k, Value: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })
	return rows
}
