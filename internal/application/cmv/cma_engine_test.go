package cmv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/entity"
)

var (
	testCmaStock     = []string{"employee-food-kitchen", "employee-food-drinks"}
	testCmaPurchases = []string{"Alimentação Funcionários"}
)

func newTestCma(snaps *fakeSnapshots, purchases ...entity.PurchaseLedgerEntry) *CmaEngine {
	_, agg := newTestPurchases(purchases...)
	return NewCmaEngine(NewSnapshotResolver(snaps, 60), agg, testCmaStock, testCmaPurchases)
}

func TestCma_Completo(t *testing.T) {
	snaps := &fakeSnapshots{}
	snaps.add(1, "employee-food-kitchen", "2024-03-04", "100")
	snaps.add(1, "employee-food-drinks", "2024-03-04", "20")
	snaps.add(1, "employee-food-kitchen", "2024-03-13", "50") // lunes 11 sin conteo

	e := newTestCma(snaps,
		entity.PurchaseLedgerEntry{VenueID: 1, Date: day("2024-03-06"), CategoryName: "alimentacao funcionarios", Amount: dec("-300")},
		entity.PurchaseLedgerEntry{VenueID: 1, Date: day("2024-03-06"), CategoryName: "Alimentos", Amount: dec("5000")},
	)
	res, err := e.Compute(context.Background(), 1, day("2024-03-04"), day("2024-03-10"), entity.PurchaseDateCompetency)
	require.NoError(t, err)

	assert.True(t, res.StockInitialEmployee.Equal(dec("120")))
	assert.True(t, res.PurchasesEmployeeFood.Equal(dec("300")))
	assert.True(t, res.StockFinalEmployee.Equal(dec("50")))
	require.NotNil(t, res.StockFinalDate)
	assert.Equal(t, day("2024-03-13"), *res.StockFinalDate)
	assert.True(t, res.CmaTotal.Equal(dec("370")))
	assert.Empty(t, res.Missing)
	assert.Equal(t, entity.PurchaseDateCompetency, res.DateField)
}

// El total negativo no se recorta: señala un problema de conteo.
func TestCma_TotalNegativo(t *testing.T) {
	snaps := &fakeSnapshots{}
	snaps.add(1, "employee-food-kitchen", "2024-03-04", "50")
	snaps.add(1, "employee-food-kitchen", "2024-03-11", "400")

	res, err := newTestCma(snaps).Compute(context.Background(), 1, day("2024-03-04"), day("2024-03-10"), entity.PurchaseDateCreation)
	require.NoError(t, err)
	assert.True(t, res.CmaTotal.Equal(dec("-350")))
}

func TestCma_ConteosFaltantes(t *testing.T) {
	e := newTestCma(&fakeSnapshots{},
		entity.PurchaseLedgerEntry{VenueID: 1, Date: day("2024-03-06"), CategoryName: "Alimentação Funcionários", Amount: dec("80")},
	)
	res, err := e.Compute(context.Background(), 1, day("2024-03-04"), day("2024-03-10"), entity.PurchaseDateCompetency)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{entity.MissingCmaStockInitial, entity.MissingCmaStockFinal}, res.Missing)
	assert.Nil(t, res.StockFinalDate)
	assert.True(t, res.CmaTotal.Equal(dec("80")))
}

// Stock inicial con una sola de las categorías contada: se usa lo contado y
// el período queda marcado con stock inicial faltante.
func TestCma_StockInicialParcialMarcaFaltante(t *testing.T) {
	snaps := &fakeSnapshots{}
	snaps.add(1, "employee-food-kitchen", "2024-03-04", "100")
	snaps.add(1, "employee-food-kitchen", "2024-03-11", "30")
	snaps.add(1, "employee-food-drinks", "2024-03-11", "10")

	res, err := newTestCma(snaps).Compute(context.Background(), 1, day("2024-03-04"), day("2024-03-10"), entity.PurchaseDateCompetency)
	require.NoError(t, err)
	assert.True(t, res.StockInitialEmployee.Equal(dec("100")))
	assert.Equal(t, []string{entity.MissingCmaStockInitial}, res.Missing)
	assert.True(t, res.CmaTotal.Equal(dec("60")))
}

func TestCma_SinCategoriasConfiguradas(t *testing.T) {
	_, agg := newTestPurchases()
	e := NewCmaEngine(NewSnapshotResolver(&fakeSnapshots{}, 60), agg, nil, nil)
	_, err := e.Compute(context.Background(), 1, day("2024-03-04"), day("2024-03-10"), entity.PurchaseDateCompetency)
	assert.ErrorIs(t, err, domain.ErrDataSourceNotConfigured)
}

func TestCma_CampoDeFechaExplicito(t *testing.T) {
	_, err := newTestCma(&fakeSnapshots{}).Compute(context.Background(), 1, day("2024-03-04"), day("2024-03-10"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
