package cmv

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/pkg/logger"
)

func newTestStore() (*RecordStore, *fakeWeekly, *fakeAudit, *fakeHealth) {
	repo := newFakeWeekly()
	audit := &fakeAudit{}
	health := &fakeHealth{}
	return NewRecordStore(repo, NewAuditor(audit, logger.Nop()), health), repo, audit, health
}

func ptr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// ── Patch ─────────────────────────────────────────────────────────────────────

func TestPatch_CreaBorradorYRecalcula(t *testing.T) {
	store, repo, audit, _ := newTestStore()
	key := entity.WeekKey{VenueID: 3, Year: 2024, Week: 10}

	rec, err := store.Patch(context.Background(), key, RecordPatch{
		GrossSales:          ptr("10000"),
		RepiqueDeduction:    ptr("500"),
		StockInitialKitchen: ptr("2000"),
		PurchasesFood:       ptr("4000"),
		StockFinalKitchen:   ptr("2500"),
		ConsumptionPartners: ptr("500"),
		BonusContractAnnual: ptr("0"),
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, entity.CmvStatusDraft, rec.Status)
	assert.Equal(t, day("2024-03-04"), rec.DateStart)
	assert.Equal(t, day("2024-03-10"), rec.DateEnd)
	assert.True(t, rec.CmvReal.Equal(dec("3000")))
	assert.True(t, rec.CmvPercent.Equal(dec("30")))
	assert.True(t, rec.CmvCleanPercent.Equal(dec("31.58")))
	assert.NotEmpty(t, rec.ID)

	stored, err := repo.Get(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, stored.CmvReal.Equal(dec("3000")))

	inserts := audit.byOperation(entity.AuditOpInsert)
	require.Len(t, inserts, 1)
	assert.Nil(t, inserts[0].OldValues)
	assert.Equal(t, "user-1", inserts[0].ChangedBy)
	assert.Equal(t, weeklyCmvTable, inserts[0].Table)
}

func TestPatch_AuditaAntesYDespues(t *testing.T) {
	store, repo, audit, _ := newTestStore()
	base := draftRecord(3, 2024, 10)
	repo.put(base)

	_, err := store.Patch(context.Background(), base.Key(), RecordPatch{PurchasesFood: ptr("3500")}, "user-2")
	require.NoError(t, err)

	updates := audit.byOperation(entity.AuditOpUpdate)
	require.Len(t, updates, 1)
	before, ok := updates[0].OldValues.(*entity.WeeklyCmvRecord)
	require.True(t, ok)
	after, ok := updates[0].NewValues.(*entity.WeeklyCmvRecord)
	require.True(t, ok)
	assert.True(t, before.PurchasesFood.Equal(dec("3000")))
	assert.True(t, after.PurchasesFood.Equal(dec("3500")))
}

func TestPatch_ConsumoRRHHManual(t *testing.T) {
	store, _, _, _ := newTestStore()
	rec, err := store.Patch(context.Background(), entity.WeekKey{VenueID: 1, Year: 2024, Week: 10},
		RecordPatch{ConsumptionHR: ptr("120")}, "user-1")
	require.NoError(t, err)
	assert.True(t, rec.ConsumptionHRManual)
}

func TestPatch_RechazaNegativos(t *testing.T) {
	store, repo, _, _ := newTestStore()
	key := entity.WeekKey{VenueID: 1, Year: 2024, Week: 10}

	_, err := store.Patch(context.Background(), key, RecordPatch{StockFinalDrinks: ptr("-1")}, "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var pe *domain.PeriodError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 10, pe.Week)
	assert.Zero(t, repo.upserts)
}

// Los ajustes con signo sí aceptan negativos.
func TestPatch_AjustesConSigno(t *testing.T) {
	store, _, _, _ := newTestStore()
	rec, err := store.Patch(context.Background(), entity.WeekKey{VenueID: 1, Year: 2024, Week: 10},
		RecordPatch{GrossSales: ptr("1000"), OtherAdjustments: ptr("-50")}, "user-1")
	require.NoError(t, err)
	assert.True(t, rec.TotalConsumption.Equal(dec("-50")))
	assert.True(t, rec.CmvReal.Equal(dec("50")))
}

func TestPatch_PermitidoEnRegistroFinal(t *testing.T) {
	store, repo, _, _ := newTestStore()
	base := draftRecord(1, 2024, 10)
	base.Status = entity.CmvStatusFinal
	repo.put(base)

	rec, err := store.Patch(context.Background(), base.Key(), RecordPatch{PurchasesFood: ptr("4000")}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.CmvStatusFinal, rec.Status)
	assert.True(t, rec.PurchasesTotal.Equal(dec("4000")))
}

func TestPatch_SemanaFueraDeRango(t *testing.T) {
	store, _, _, _ := newTestStore()
	_, err := store.Patch(context.Background(), entity.WeekKey{VenueID: 1, Year: 2021, Week: 53}, RecordPatch{}, "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Un registro anómalo se persiste igual y se reporta.
func TestPatch_AnomaloSePersisteYSeReporta(t *testing.T) {
	store, repo, _, health := newTestStore()
	key := entity.WeekKey{VenueID: 1, Year: 2024, Week: 10}

	rec, err := store.Patch(context.Background(), key, RecordPatch{
		GrossSales:    ptr("1000"),
		PurchasesFood: ptr("1100"),
	}, "user-1")
	require.NoError(t, err)
	assert.True(t, rec.Anomalous)
	assert.True(t, rec.CmvPercent.Equal(dec("110")))

	_, err = repo.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []entity.WeekKey{key}, health.reports)
}

// La auditoría nunca bloquea la persistencia.
func TestPatch_FalloDeAuditoriaNoBloquea(t *testing.T) {
	store, repo, audit, _ := newTestStore()
	audit.err = assert.AnError

	_, err := store.Patch(context.Background(), entity.WeekKey{VenueID: 1, Year: 2024, Week: 10},
		RecordPatch{GrossSales: ptr("1000")}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.upserts)
}

// ── SetStatus ─────────────────────────────────────────────────────────────────

func TestSetStatus_FinalizarYDesbloquear(t *testing.T) {
	store, repo, _, _ := newTestStore()
	base := draftRecord(1, 2024, 10)
	repo.put(base)

	rec, err := store.SetStatus(context.Background(), base.Key(), entity.CmvStatusFinal, "user-1")
	require.NoError(t, err)
	assert.True(t, rec.IsFinal())

	rec, err = store.SetStatus(context.Background(), base.Key(), entity.CmvStatusDraft, "user-1")
	require.NoError(t, err)
	assert.False(t, rec.IsFinal())
}

func TestSetStatus_Errores(t *testing.T) {
	store, _, _, _ := newTestStore()
	key := entity.WeekKey{VenueID: 1, Year: 2024, Week: 10}

	_, err := store.SetStatus(context.Background(), key, entity.CmvStatusFinal, "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.SetStatus(context.Background(), key, "archived", "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
