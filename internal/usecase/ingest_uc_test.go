package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarsur/panel/internal/domain"
)

func newIngestUC(products *fakeProductRepo, sales *fakeSaleRepo) *IngestUC {
	return &IngestUC{Sales: sales, Ledger: &LedgerUC{Products: products}}
}

func TestIngestRegistraVentaYDescuentaStock(t *testing.T) {
	products := newFakeProductRepo()
	sales := newFakeSaleRepo()
	p := products.add(domain.Product{SKU: "WEB-A", Name: "Silla", CostPrice: 40, Stock: 10})
	uc := newIngestUC(products, sales)

	sale, skipped, err := uc.Ingest(context.Background(), WebSaleInput{
		OrderID:       "ord-100",
		Items:         []WebSaleItem{{SKU: "WEB-A", Quantity: 2, Price: 90}},
		PaymentMethod: "MercadoPago",
		CustomerName:  "Ana",
		Origin:        "tienda-hogar",
	})
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, 8, products.stockOf(p.ID))
	assert.Equal(t, 180.0, sale.TotalAmount)
	assert.Equal(t, 100.0, sale.TotalProfit)
	assert.Equal(t, "tienda-hogar", sale.Channel)
	assert.Equal(t, "Ana", sale.CustomerName)
}

func TestIngestOmiteSKUsDesconocidosYRegistraElResto(t *testing.T) {
	products := newFakeProductRepo()
	sales := newFakeSaleRepo()
	products.add(domain.Product{SKU: "WEB-B", Name: "Mesa", Stock: 5})
	uc := newIngestUC(products, sales)

	sale, skipped, err := uc.Ingest(context.Background(), WebSaleInput{
		Items: []WebSaleItem{
			{SKU: "FANTASMA", Quantity: 1, Price: 10},
			{SKU: "WEB-B", Quantity: 1, Price: 200},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"FANTASMA"}, skipped)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "WEB-B", sale.Items[0].ProductSKU)
}

func TestIngestTotalDelCallerEsAutoritativo(t *testing.T) {
	products := newFakeProductRepo()
	sales := newFakeSaleRepo()
	products.add(domain.Product{SKU: "WEB-C", Name: "Banco", CostPrice: 10, Stock: 5})
	uc := newIngestUC(products, sales)

	sale, _, err := uc.Ingest(context.Background(), WebSaleInput{
		Items:       []WebSaleItem{{SKU: "WEB-C", Quantity: 1, Price: 100}},
		TotalAmount: 95.5,
	})
	require.NoError(t, err)
	// Redondeos o moneda del lado remoto: el total declarado pisa al derivado,
	// la ganancia sigue saliendo de los renglones.
	assert.Equal(t, 95.5, sale.TotalAmount)
	assert.Equal(t, 90.0, sale.TotalProfit)
}

func TestIngestDefaultsDeCanalYCliente(t *testing.T) {
	products := newFakeProductRepo()
	sales := newFakeSaleRepo()
	products.add(domain.Product{SKU: "WEB-D", Name: "Repisa", Stock: 3})
	uc := newIngestUC(products, sales)

	sale, _, err := uc.Ingest(context.Background(), WebSaleInput{
		Items: []WebSaleItem{{SKU: "WEB-D", Quantity: 1, Price: 50}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Online", sale.PaymentMethod)
	assert.Equal(t, "Online Store", sale.Channel)
	assert.Equal(t, "Online Customer", sale.CustomerName)
}

func TestIngestCantidadInvalidaRechazaTodo(t *testing.T) {
	products := newFakeProductRepo()
	sales := newFakeSaleRepo()
	products.add(domain.Product{SKU: "WEB-E", Name: "Percha", Stock: 3})
	uc := newIngestUC(products, sales)

	_, _, err := uc.Ingest(context.Background(), WebSaleInput{
		Items: []WebSaleItem{{SKU: "WEB-E", Quantity: 0, Price: 50}},
	})
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Empty(t, sales.sales)
}
