package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRecalculaMargen(t *testing.T) {
	p := Product{CostPrice: 60, PublicPrice: 100}
	p.Normalize()
	assert.Equal(t, 40.0, p.MarginAmt)
	assert.Equal(t, 40.0, p.MarginPct)
	assert.Equal(t, ProductActive, p.Status)
}

func TestNormalizeSinPrecioPublicoAnulaMargen(t *testing.T) {
	p := Product{CostPrice: 60, PublicPrice: 0, MarginAmt: 99, MarginPct: 99}
	p.Normalize()
	assert.Zero(t, p.MarginAmt)
	assert.Zero(t, p.MarginPct)
}

func TestNormalizeDerivaStockDesdeTalles(t *testing.T) {
	p := Product{
		Stock: 42,
		Sizes: []SizeStock{{Size: "38", Stock: 1}, {Size: "39", Stock: 2}, {Size: "40", Stock: 0}},
	}
	p.Normalize()
	assert.Equal(t, 3, p.Stock)
}

func TestNormalizeSinTallesConservaStock(t *testing.T) {
	p := Product{Stock: 7}
	p.Normalize()
	assert.Equal(t, 7, p.Stock)
}

func TestLowStock(t *testing.T) {
	assert.True(t, (&Product{Stock: 4, MinStock: 5}).LowStock())
	assert.False(t, (&Product{Stock: 5, MinStock: 5}).LowStock())
}

func TestRecalculateDerivaSubtotalesYAgregados(t *testing.T) {
	s := Sale{Items: []SaleItem{
		{Quantity: 3, UnitPrice: 100, UnitCost: 50},
		{Quantity: 1, UnitPrice: 40, UnitCost: 40},
	}}
	// el caller no puede imponer totales
	s.TotalAmount = 9999
	s.Recalculate()

	assert.Equal(t, 300.0, s.Items[0].Subtotal)
	assert.Equal(t, 40.0, s.Items[1].Subtotal)
	assert.Equal(t, 340.0, s.TotalAmount)
	assert.Equal(t, 150.0, s.TotalProfit)
}

func TestKnownType(t *testing.T) {
	assert.True(t, KnownType(TypeHogar))
	assert.True(t, KnownType(TypeCalzado))
	assert.False(t, KnownType("juguetes"))
	assert.False(t, KnownType(""))
}
