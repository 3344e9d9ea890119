package cmv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/cmv"
	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
	"github.com/jhoicas/cmv-api/pkg/logger"
)

// SyncResult resultado de sincronizar una semana.
type SyncResult struct {
	Record  *entity.WeeklyCmvRecord `json:"record"`
	Created bool                    `json:"created"`
	Revenue RevenueTotals           `json:"revenue"`
	Cma     *entity.CmaResult       `json:"cma"`
	Missing []string                `json:"missing_data"`
}

// WeeklySync sincroniza una semana: ventas, compras, stocks y CMA → registro semanal.
type WeeklySync struct {
	venues    repository.VenueRepository
	revenue   *RevenueAggregator
	purchases *PurchaseAggregator
	resolver  *SnapshotResolver
	cma       *CmaEngine
	store     *RecordStore
	log       *logger.Logger
}

// NewWeeklySync construye el caso de uso.
func NewWeeklySync(
	venues repository.VenueRepository,
	revenue *RevenueAggregator,
	purchases *PurchaseAggregator,
	resolver *SnapshotResolver,
	cma *CmaEngine,
	store *RecordStore,
	log *logger.Logger,
) *WeeklySync {
	if log == nil {
		log = logger.Nop()
	}
	return &WeeklySync{
		venues:    venues,
		revenue:   revenue,
		purchases: purchases,
		resolver:  resolver,
		cma:       cma,
		store:     store,
		log:       log,
	}
}

// stockTarget una de las seis valoraciones de stock del registro.
type stockTarget struct {
	category string
	missing  string
	initial  bool
	assign   func(rec *entity.WeeklyCmvRecord, v decimal.Decimal)
}

var stockTargets = []stockTarget{
	{entity.StockCategoryKitchen, entity.MissingStockInitialKitchen, true,
		func(r *entity.WeeklyCmvRecord, v decimal.Decimal) { r.StockInitialKitchen = v }},
	{entity.StockCategoryBeverage, entity.MissingStockInitialBeverage, true,
		func(r *entity.WeeklyCmvRecord, v decimal.Decimal) { r.StockInitialBeverage = v }},
	{entity.StockCategoryDrinks, entity.MissingStockInitialDrinks, true,
		func(r *entity.WeeklyCmvRecord, v decimal.Decimal) { r.StockInitialDrinks = v }},
	{entity.StockCategoryKitchen, entity.MissingStockFinalKitchen, false,
		func(r *entity.WeeklyCmvRecord, v decimal.Decimal) { r.StockFinalKitchen = v }},
	{entity.StockCategoryBeverage, entity.MissingStockFinalBeverage, false,
		func(r *entity.WeeklyCmvRecord, v decimal.Decimal) { r.StockFinalBeverage = v }},
	{entity.StockCategoryDrinks, entity.MissingStockFinalDrinks, false,
		func(r *entity.WeeklyCmvRecord, v decimal.Decimal) { r.StockFinalDrinks = v }},
}

// SyncWeek agrega las fuentes de la semana ISO y hace upsert del registro como borrador.
// Errores de un solo período se devuelven como *domain.PeriodError.
func (s *WeeklySync) SyncWeek(ctx context.Context, key entity.WeekKey, dateField, actor string) (*SyncResult, error) {
	res, err := s.syncWeek(ctx, key, dateField, actor)
	if err != nil {
		return nil, periodErr(key, err)
	}
	return res, nil
}

func (s *WeeklySync) syncWeek(ctx context.Context, key entity.WeekKey, dateField, actor string) (*SyncResult, error) {
	if !entity.ValidPurchaseDateField(dateField) {
		return nil, fmt.Errorf("campo de fecha de compras %q: %w", dateField, domain.ErrInvalidInput)
	}
	settings, err := s.venues.GetSettings(ctx, key.VenueID)
	if err != nil {
		return nil, fmt.Errorf("configuración del local: %w", err)
	}
	if settings.InventorySource == "" {
		return nil, domain.ErrDataSourceNotConfigured
	}
	start, end, err := cmv.WeekSpan(key.Year, key.Week)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}

	// Rechazo temprano: evita agregar fuentes para un registro congelado.
	if existing, err := s.store.Get(ctx, key); err == nil && existing.IsFinal() {
		return nil, domain.ErrRecordFinal
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	revenue, err := s.revenue.Aggregate(ctx, key.VenueID, start, end)
	if err != nil {
		return nil, err
	}
	purchases, err := s.purchases.Aggregate(ctx, key.VenueID, start, end, dateField, nil)
	if err != nil {
		return nil, err
	}

	stocks := make([]decimal.Decimal, len(stockTargets))
	var missing []string
	finalAnchor := cmv.NextMonday(end)
	for i, t := range stockTargets {
		target, mode := start, ResolveExact
		if !t.initial {
			target, mode = finalAnchor, ResolveForward
		}
		v, err := s.resolver.Resolve(ctx, key.VenueID, []string{t.category}, target, mode)
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			missing = append(missing, t.missing)
			continue
		}
		if err != nil {
			return nil, err
		}
		stocks[i] = v.Total
	}

	cma, err := s.cma.Compute(ctx, key.VenueID, start, end, dateField)
	if err != nil {
		return nil, err
	}
	missing = append(missing, cma.Missing...)

	rec, created, err := s.store.applyAutomatic(ctx, key, actor, func(rec *entity.WeeklyCmvRecord) {
		rec.GrossSales = revenue.GrossSales
		rec.RepiqueDeduction = revenue.Repique
		rec.PurchasesFood = purchases.Food
		rec.PurchasesBeverage = purchases.Beverage
		rec.PurchasesDrinks = purchases.Drinks
		rec.PurchasesOther = purchases.Other
		for i, t := range stockTargets {
			t.assign(rec, stocks[i])
		}
		rec.CmaTotal = cma.CmaTotal
		if !rec.ConsumptionHRManual {
			rec.ConsumptionHR = cma.CmaTotal
		}
		if rec.TheoreticalCmvPercent.IsZero() {
			rec.TheoreticalCmvPercent = settings.TheoreticalCmvPercent
		}
		rec.MissingData = missing
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("venue_id", key.VenueID).
		Int("year", key.Year).
		Int("week", key.Week).
		Str("cmv_percent", rec.CmvPercent.String()).
		Bool("anomalous", rec.Anomalous).
		Strs("missing_data", missing).
		Msg("semana sincronizada")

	return &SyncResult{
		Record:  rec,
		Created: created,
		Revenue: revenue,
		Cma:     cma,
		Missing: missing,
	}, nil
}

// CurrentWeek devuelve la clave de la semana ISO que contiene now.
func CurrentWeek(venueID int64, now time.Time) entity.WeekKey {
	y, w := now.ISOWeek()
	return entity.WeekKey{VenueID: venueID, Year: y, Week: w}
}
