package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazarsur/panel/internal/domain"
)

func TestLedgerReserveDescuentaYActualizaLocal(t *testing.T) {
	products := newFakeProductRepo()
	p := products.add(domain.Product{SKU: "L-1", Name: "Almohadón", Stock: 6})
	uc := &LedgerUC{Products: products}

	require.NoError(t, uc.Reserve(context.Background(), p, 4))
	assert.Equal(t, 2, p.Stock)
	assert.Equal(t, 2, products.stockOf(p.ID))
}

func TestLedgerReserveCantidadInvalida(t *testing.T) {
	products := newFakeProductRepo()
	p := products.add(domain.Product{SKU: "L-2", Name: "Manta", Stock: 6})
	uc := &LedgerUC{Products: products}

	var valErr *domain.ValidationError
	require.ErrorAs(t, uc.Reserve(context.Background(), p, 0), &valErr)
	assert.Equal(t, 6, products.stockOf(p.ID))
}

func TestLedgerReserveInsuficiente(t *testing.T) {
	products := newFakeProductRepo()
	p := products.add(domain.Product{SKU: "L-3", Name: "Espejo", Stock: 1})
	uc := &LedgerUC{Products: products}

	err := uc.Reserve(context.Background(), p, 2)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Espejo", stockErr.Product)
	assert.Equal(t, 1, products.stockOf(p.ID))
}

func TestLedgerRestoreSobreProductoInexistenteEsNoOp(t *testing.T) {
	products := newFakeProductRepo()
	uc := &LedgerUC{Products: products}
	// no panic, no error visible
	uc.Restore(context.Background(), uuid.New(), 3)
}

func TestLedgerReserveBySKUClampaEnCero(t *testing.T) {
	products := newFakeProductRepo()
	p := products.add(domain.Product{SKU: "WEB-1", Name: "Lámpara", Stock: 2})
	uc := &LedgerUC{Products: products}

	got, err := uc.ReserveBySKU(context.Background(), "WEB-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	assert.Equal(t, 0, products.stockOf(p.ID), "la ingesta descuenta clampeando, nunca deja negativo")
}

func TestLedgerReserveBySKUDesconocido(t *testing.T) {
	uc := &LedgerUC{Products: newFakeProductRepo()}
	_, err := uc.ReserveBySKU(context.Background(), "NO-EXISTE", 1)
	var nf *domain.ProductNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "NO-EXISTE", nf.Ref)
}
