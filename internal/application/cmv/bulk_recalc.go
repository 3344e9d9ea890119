package cmv

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
	"github.com/jhoicas/cmv-api/pkg/logger"
)

// DefaultBulkPreviewLimit deltas antes/después devueltos para revisión del operador.
const DefaultBulkPreviewLimit = 10

// RecordDelta antes/después de los derivados de un registro recalculado.
type RecordDelta struct {
	Year                  int             `json:"year"`
	Week                  int             `json:"week"`
	RecordID              string          `json:"record_id"`
	CmvRealBefore         decimal.Decimal `json:"cmv_real_before"`
	CmvRealAfter          decimal.Decimal `json:"cmv_real_after"`
	CmvPercentBefore      decimal.Decimal `json:"cmv_percent_before"`
	CmvPercentAfter       decimal.Decimal `json:"cmv_percent_after"`
	CmvCleanPercentBefore decimal.Decimal `json:"cmv_clean_percent_before"`
	CmvCleanPercentAfter  decimal.Decimal `json:"cmv_clean_percent_after"`
	GapBefore             decimal.Decimal `json:"gap_before"`
	GapAfter              decimal.Decimal `json:"gap_after"`
	Changed               bool            `json:"changed"`
}

// RecordError fallo aislado de un registro.
type RecordError struct {
	Year     int    `json:"year"`
	Week     int    `json:"week"`
	RecordID string `json:"record_id"`
	Message  string `json:"message"`
}

// BulkResult resumen del recálculo masivo de un local.
type BulkResult struct {
	VenueID      int64         `json:"venue_id"`
	Total        int           `json:"total"`
	Recalculated int           `json:"recalculated"`
	Skipped      int           `json:"skipped"` // registros finales
	Errors       []RecordError `json:"errors"`
	Preview      []RecordDelta `json:"preview"`
	// Failure error a nivel de local (lock o listado); el lote no llegó a procesarse.
	Failure string `json:"failure,omitempty"`
}

// BulkRecalculator recalcula los derivados de todos los registros de un local
// a partir de los agregados ya almacenados (no vuelve a consultar proveedores).
type BulkRecalculator struct {
	repo         repository.WeeklyCmvRepository
	store        *RecordStore
	locker       VenueLocker
	previewLimit int
	concurrency  int
	log          *logger.Logger
}

// NewBulkRecalculator construye el coordinador. locker nil = sin lock distribuido.
func NewBulkRecalculator(
	repo repository.WeeklyCmvRepository,
	store *RecordStore,
	locker VenueLocker,
	previewLimit, concurrency int,
	log *logger.Logger,
) *BulkRecalculator {
	if locker == nil {
		locker = NoopLocker()
	}
	if previewLimit <= 0 {
		previewLimit = DefaultBulkPreviewLimit
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &BulkRecalculator{
		repo:         repo,
		store:        store,
		locker:       locker,
		previewLimit: previewLimit,
		concurrency:  concurrency,
		log:          log,
	}
}

// RecalculateAll procesa los registros del local en orden (year, week), de forma
// secuencial. Un fallo en un registro se anota y el lote continúa.
func (b *BulkRecalculator) RecalculateAll(ctx context.Context, venueID int64, actor string) (*BulkResult, error) {
	release, err := b.locker.Lock(ctx, venueID)
	if err != nil {
		return nil, err
	}
	defer release()

	records, err := b.repo.ListByVenue(ctx, venueID, repository.WeeklyCmvFilter{})
	if err != nil {
		return nil, fmt.Errorf("listar registros del local %d: %w", venueID, err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Year != records[j].Year {
			return records[i].Year < records[j].Year
		}
		return records[i].Week < records[j].Week
	})

	res := &BulkResult{
		VenueID: venueID,
		Total:   len(records),
		Errors:  []RecordError{},
		Preview: []RecordDelta{},
	}
	for _, rec := range records {
		if rec.IsFinal() {
			res.Skipped++
			continue
		}
		before, err := b.recalculateOne(ctx, rec, actor)
		if err != nil {
			res.Errors = append(res.Errors, RecordError{
				Year:     rec.Year,
				Week:     rec.Week,
				RecordID: rec.ID,
				Message:  err.Error(),
			})
			b.log.Warn().Err(err).
				Int64("venue_id", venueID).
				Int("year", rec.Year).
				Int("week", rec.Week).
				Msg("recálculo de registro fallido")
			continue
		}
		res.Recalculated++
		if len(res.Preview) < b.previewLimit {
			res.Preview = append(res.Preview, newDelta(before, rec))
		}
	}

	b.log.Info().
		Int64("venue_id", venueID).
		Int("total", res.Total).
		Int("recalculated", res.Recalculated).
		Int("skipped", res.Skipped).
		Int("errors", len(res.Errors)).
		Msg("recálculo masivo completado")
	return res, nil
}

// recalculateOne aísla el registro: también convierte un panic en error.
func (b *BulkRecalculator) recalculateOne(ctx context.Context, rec *entity.WeeklyCmvRecord, actor string) (before *entity.WeeklyCmvRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return b.store.recalculate(ctx, rec, actor)
}

// RecalculateVenues recalcula varios locales en paralelo (acotado); las semanas
// de un mismo local siguen siendo secuenciales. Nunca aborta por un local.
func (b *BulkRecalculator) RecalculateVenues(ctx context.Context, venueIDs []int64, actor string) []*BulkResult {
	results := make([]*BulkResult, len(venueIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, venueID := range venueIDs {
		g.Go(func() error {
			res, err := b.RecalculateAll(gctx, venueID, actor)
			if err != nil {
				res = &BulkResult{VenueID: venueID, Errors: []RecordError{}, Preview: []RecordDelta{}, Failure: err.Error()}
				if !errors.Is(err, domain.ErrLockNotObtained) {
					b.log.Error().Err(err).Int64("venue_id", venueID).Msg("recálculo masivo del local fallido")
				}
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func newDelta(before, after *entity.WeeklyCmvRecord) RecordDelta {
	return RecordDelta{
		Year:                  after.Year,
		Week:                  after.Week,
		RecordID:              after.ID,
		CmvRealBefore:         before.CmvReal,
		CmvRealAfter:          after.CmvReal,
		CmvPercentBefore:      before.CmvPercent,
		CmvPercentAfter:       after.CmvPercent,
		CmvCleanPercentBefore: before.CmvCleanPercent,
		CmvCleanPercentAfter:  after.CmvCleanPercent,
		GapBefore:             before.Gap,
		GapAfter:              after.Gap,
		Changed: !before.CmvReal.Equal(after.CmvReal) ||
			!before.CmvPercent.Equal(after.CmvPercent) ||
			!before.CmvCleanPercent.Equal(after.CmvCleanPercent) ||
			!before.Gap.Equal(after.Gap),
	}
}
