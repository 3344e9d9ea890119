package cmv

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/cmv"
	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
	"github.com/jhoicas/cmv-api/pkg/logger"
)

func newTestBulk(locker VenueLocker) (*BulkRecalculator, *fakeWeekly, *fakeAudit) {
	store, repo, audit, _ := newTestStore()
	return NewBulkRecalculator(repo, store, locker, 3, 2, logger.Nop()), repo, audit
}

var defaultFilter = repository.WeeklyCmvFilter{}

func seedWeeks(repo *fakeWeekly, venueID int64, n int) {
	for w := n; w >= 1; w-- { // inserción desordenada a propósito
		repo.put(draftRecord(venueID, 2024, w))
	}
}

// ── RecalculateAll ────────────────────────────────────────────────────────────

func TestRecalculateAll_RecalculaDerivados(t *testing.T) {
	bulk, repo, _ := newTestBulk(nil)
	seedWeeks(repo, 1, 4)

	res, err := bulk.RecalculateAll(context.Background(), 1, "admin")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 4, res.Recalculated)
	assert.Empty(t, res.Errors)

	// Vista previa acotada, en orden (year, week).
	require.Len(t, res.Preview, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{res.Preview[0].Week, res.Preview[1].Week, res.Preview[2].Week})
	assert.True(t, res.Preview[0].Changed)
	assert.True(t, res.Preview[0].CmvRealAfter.Equal(dec("3000")))

	rec, err := repo.Get(context.Background(), entity.WeekKey{VenueID: 1, Year: 2024, Week: 2})
	require.NoError(t, err)
	assert.True(t, rec.StockInitialTotal.IsZero(), "el derivado obsoleto se corrige")
	assert.True(t, rec.CmvPercent.Equal(dec("30")))
}

// Dos ejecuciones seguidas producen los mismos valores.
func TestRecalculateAll_Idempotente(t *testing.T) {
	bulk, repo, _ := newTestBulk(nil)
	seedWeeks(repo, 1, 5)

	_, err := bulk.RecalculateAll(context.Background(), 1, "admin")
	require.NoError(t, err)
	first, _ := repo.ListByVenue(context.Background(), 1, defaultFilter)

	res, err := bulk.RecalculateAll(context.Background(), 1, "admin")
	require.NoError(t, err)
	second, _ := repo.ListByVenue(context.Background(), 1, defaultFilter)

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, cmv.DerivedEqual(first[i], second[i]), "semana %d", first[i].Week)
	}
	for _, d := range res.Preview {
		assert.False(t, d.Changed)
	}
}

// El registro 5 de 10 falla: los otros 9 se recalculan igual.
func TestRecalculateAll_AislaFallos(t *testing.T) {
	bulk, repo, _ := newTestBulk(nil)
	seedWeeks(repo, 1, 10)
	repo.failOn[entity.WeekKey{VenueID: 1, Year: 2024, Week: 5}] = errors.New("conexión reiniciada")
	repo.panicOn[entity.WeekKey{VenueID: 1, Year: 2024, Week: 7}] = true

	res, err := bulk.RecalculateAll(context.Background(), 1, "admin")
	require.NoError(t, err)
	assert.Equal(t, 10, res.Total)
	assert.Equal(t, 8, res.Recalculated)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 5, res.Errors[0].Week)
	assert.Contains(t, res.Errors[0].Message, "conexión reiniciada")
	assert.Equal(t, 7, res.Errors[1].Week)
	assert.Contains(t, res.Errors[1].Message, "panic")
}

func TestRecalculateAll_OmiteFinales(t *testing.T) {
	bulk, repo, _ := newTestBulk(nil)
	seedWeeks(repo, 1, 3)
	final := draftRecord(1, 2024, 2)
	final.Status = entity.CmvStatusFinal
	repo.put(final)

	res, err := bulk.RecalculateAll(context.Background(), 1, "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Recalculated)
	assert.Equal(t, 1, res.Skipped)

	rec, _ := repo.Get(context.Background(), final.Key())
	assert.True(t, rec.StockInitialTotal.Equal(dec("999")), "el registro final no se toca")
}

func TestRecalculateAll_LockOcupado(t *testing.T) {
	locker := &fakeLocker{denied: map[int64]bool{1: true}}
	bulk, repo, _ := newTestBulk(locker)
	seedWeeks(repo, 1, 2)

	_, err := bulk.RecalculateAll(context.Background(), 1, "admin")
	assert.ErrorIs(t, err, domain.ErrLockNotObtained)
	assert.Zero(t, repo.upserts)
}

func TestRecalculateAll_LocalSinRegistros(t *testing.T) {
	bulk, _, _ := newTestBulk(nil)
	res, err := bulk.RecalculateAll(context.Background(), 9, "admin")
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.NotNil(t, res.Errors)
	assert.NotNil(t, res.Preview)
}

// ── RecalculateVenues ─────────────────────────────────────────────────────────

func TestRecalculateVenues_NoAbortaElLote(t *testing.T) {
	locker := &fakeLocker{denied: map[int64]bool{2: true}}
	bulk, repo, _ := newTestBulk(locker)
	seedWeeks(repo, 1, 2)
	seedWeeks(repo, 2, 2)
	seedWeeks(repo, 3, 3)

	results := bulk.RecalculateVenues(context.Background(), []int64{1, 2, 3}, "admin")
	require.Len(t, results, 3)

	assert.Equal(t, int64(1), results[0].VenueID)
	assert.Equal(t, 2, results[0].Recalculated)

	assert.Equal(t, int64(2), results[1].VenueID)
	assert.NotEmpty(t, results[1].Failure)
	assert.Zero(t, results[1].Recalculated)

	assert.Equal(t, 3, results[2].Recalculated)
}

func TestNewBulkRecalculator_Defaults(t *testing.T) {
	store, repo, _, _ := newTestStore()
	b := NewBulkRecalculator(repo, store, nil, 0, 0, nil)
	assert.Equal(t, DefaultBulkPreviewLimit, b.previewLimit)
	assert.Equal(t, 1, b.concurrency)
}
