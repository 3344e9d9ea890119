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
)

const weeklyCmvTable = "weekly_cmv"

// RecordPatch edición parcial de un registro semanal. Solo campos de entrada:
// los derivados se recalculan siempre antes de persistir.
type RecordPatch struct {
	GrossSales       *decimal.Decimal
	RepiqueDeduction *decimal.Decimal

	PurchasesFood     *decimal.Decimal
	PurchasesBeverage *decimal.Decimal
	PurchasesDrinks   *decimal.Decimal
	PurchasesOther    *decimal.Decimal

	StockInitialKitchen  *decimal.Decimal
	StockInitialBeverage *decimal.Decimal
	StockInitialDrinks   *decimal.Decimal
	StockFinalKitchen    *decimal.Decimal
	StockFinalBeverage   *decimal.Decimal
	StockFinalDrinks     *decimal.Decimal

	ConsumptionPartners *decimal.Decimal
	ConsumptionBenefits *decimal.Decimal
	ConsumptionAdmin    *decimal.Decimal
	ConsumptionHR       *decimal.Decimal
	ConsumptionArtist   *decimal.Decimal
	OtherAdjustments    *decimal.Decimal

	BonusContractAnnual  *decimal.Decimal
	BonusCashbackMonthly *decimal.Decimal

	TheoreticalCmvPercent *decimal.Decimal
}

// validate: compras, stocks y bonificaciones no pueden ser negativos.
func (p RecordPatch) validate() error {
	nonNegative := map[string]*decimal.Decimal{
		"purchases_food":         p.PurchasesFood,
		"purchases_beverage":     p.PurchasesBeverage,
		"purchases_drinks":       p.PurchasesDrinks,
		"purchases_other":        p.PurchasesOther,
		"stock_initial_kitchen":  p.StockInitialKitchen,
		"stock_initial_beverage": p.StockInitialBeverage,
		"stock_initial_drinks":   p.StockInitialDrinks,
		"stock_final_kitchen":    p.StockFinalKitchen,
		"stock_final_beverage":   p.StockFinalBeverage,
		"stock_final_drinks":     p.StockFinalDrinks,
		"bonus_contract_annual":  p.BonusContractAnnual,
		"bonus_cashback_monthly": p.BonusCashbackMonthly,
	}
	for field, v := range nonNegative {
		if v != nil && v.IsNegative() {
			return fmt.Errorf("%s no puede ser negativo: %w", field, domain.ErrInvalidInput)
		}
	}
	return nil
}

func (p RecordPatch) apply(rec *entity.WeeklyCmvRecord) {
	set := func(dst *decimal.Decimal, v *decimal.Decimal) {
		if v != nil {
			*dst = *v
		}
	}
	set(&rec.GrossSales, p.GrossSales)
	set(&rec.RepiqueDeduction, p.RepiqueDeduction)
	set(&rec.PurchasesFood, p.PurchasesFood)
	set(&rec.PurchasesBeverage, p.PurchasesBeverage)
	set(&rec.PurchasesDrinks, p.PurchasesDrinks)
	set(&rec.PurchasesOther, p.PurchasesOther)
	set(&rec.StockInitialKitchen, p.StockInitialKitchen)
	set(&rec.StockInitialBeverage, p.StockInitialBeverage)
	set(&rec.StockInitialDrinks, p.StockInitialDrinks)
	set(&rec.StockFinalKitchen, p.StockFinalKitchen)
	set(&rec.StockFinalBeverage, p.StockFinalBeverage)
	set(&rec.StockFinalDrinks, p.StockFinalDrinks)
	set(&rec.ConsumptionPartners, p.ConsumptionPartners)
	set(&rec.ConsumptionBenefits, p.ConsumptionBenefits)
	set(&rec.ConsumptionAdmin, p.ConsumptionAdmin)
	set(&rec.ConsumptionHR, p.ConsumptionHR)
	set(&rec.ConsumptionArtist, p.ConsumptionArtist)
	set(&rec.OtherAdjustments, p.OtherAdjustments)
	set(&rec.BonusContractAnnual, p.BonusContractAnnual)
	set(&rec.BonusCashbackMonthly, p.BonusCashbackMonthly)
	set(&rec.TheoreticalCmvPercent, p.TheoreticalCmvPercent)
	if p.ConsumptionHR != nil {
		rec.ConsumptionHRManual = true
	}
}

// RecordStore persistencia del registro semanal con recálculo obligatorio de
// derivados, auditoría antes/después y aviso de anomalías.
type RecordStore struct {
	repo   repository.WeeklyCmvRepository
	audit  *Auditor
	health HealthReporter
	now    func() time.Time
}

// NewRecordStore construye el store. health puede ser nil.
func NewRecordStore(repo repository.WeeklyCmvRepository, audit *Auditor, health HealthReporter) *RecordStore {
	return &RecordStore{repo: repo, audit: audit, health: health, now: time.Now}
}

// Get devuelve el registro o domain.ErrNotFound.
func (s *RecordStore) Get(ctx context.Context, key entity.WeekKey) (*entity.WeeklyCmvRecord, error) {
	return s.repo.Get(ctx, key)
}

// List registros del local ordenados por (year, week).
func (s *RecordStore) List(ctx context.Context, venueID int64, filter repository.WeeklyCmvFilter) ([]*entity.WeeklyCmvRecord, error) {
	return s.repo.ListByVenue(ctx, venueID, filter)
}

// Patch aplica una edición manual. Se permite también sobre registros finales
// (la edición directa vuelve a disparar el recálculo local).
func (s *RecordStore) Patch(ctx context.Context, key entity.WeekKey, patch RecordPatch, actor string) (*entity.WeeklyCmvRecord, error) {
	if err := patch.validate(); err != nil {
		return nil, periodErr(key, err)
	}
	before, rec, err := s.load(ctx, key)
	if err != nil {
		return nil, periodErr(key, err)
	}
	patch.apply(rec)
	if err := s.persist(ctx, before, rec, actor); err != nil {
		return nil, periodErr(key, err)
	}
	return rec, nil
}

// SetStatus finaliza (final) o desbloquea (draft) un registro existente.
func (s *RecordStore) SetStatus(ctx context.Context, key entity.WeekKey, status, actor string) (*entity.WeeklyCmvRecord, error) {
	if status != entity.CmvStatusDraft && status != entity.CmvStatusFinal {
		return nil, periodErr(key, fmt.Errorf("estado %q: %w", status, domain.ErrInvalidInput))
	}
	rec, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, periodErr(key, err)
	}
	if rec.Status == status {
		return rec, nil
	}
	before := rec.Clone()
	rec.Status = status
	if err := s.persist(ctx, before, rec, actor); err != nil {
		return nil, periodErr(key, err)
	}
	return rec, nil
}

// applyAutomatic aplica una mutación automática (sincronización). Rechaza
// registros finales con domain.ErrRecordFinal.
func (s *RecordStore) applyAutomatic(
	ctx context.Context,
	key entity.WeekKey,
	actor string,
	mutate func(rec *entity.WeeklyCmvRecord),
) (*entity.WeeklyCmvRecord, bool, error) {
	before, rec, err := s.load(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if rec.IsFinal() {
		return nil, false, domain.ErrRecordFinal
	}
	mutate(rec)
	if err := s.persist(ctx, before, rec, actor); err != nil {
		return nil, false, err
	}
	return rec, before == nil, nil
}

// recalculate recalcula los derivados de un registro ya cargado (recálculo masivo).
func (s *RecordStore) recalculate(ctx context.Context, rec *entity.WeeklyCmvRecord, actor string) (before *entity.WeeklyCmvRecord, err error) {
	if rec.IsFinal() {
		return nil, domain.ErrRecordFinal
	}
	before = rec.Clone()
	if err := s.persist(ctx, before, rec, actor); err != nil {
		return nil, err
	}
	return before, nil
}

// load devuelve (antes, registro a mutar). Si no existe crea un borrador
// con las fechas de la semana ISO y antes = nil.
func (s *RecordStore) load(ctx context.Context, key entity.WeekKey) (*entity.WeeklyCmvRecord, *entity.WeeklyCmvRecord, error) {
	rec, err := s.repo.Get(ctx, key)
	if err == nil {
		return rec.Clone(), rec, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}
	start, end, err := cmv.WeekSpan(key.Year, key.Week)
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	return nil, &entity.WeeklyCmvRecord{
		VenueID:   key.VenueID,
		Year:      key.Year,
		Week:      key.Week,
		DateStart: start,
		DateEnd:   end,
		Status:    entity.CmvStatusDraft,
	}, nil
}

// persist recalcula derivados, hace upsert, audita y reporta anomalías.
// Un registro anómalo se persiste igual: las entradas pueden estar incompletas a mitad de semana.
func (s *RecordStore) persist(ctx context.Context, before, rec *entity.WeeklyCmvRecord, actor string) error {
	cmv.Recompute(rec)
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("guardar registro semanal: %w", err)
	}

	op := entity.AuditOpUpdate
	var old any
	if before == nil {
		op = entity.AuditOpInsert
	} else {
		old = before
	}
	s.audit.Record(ctx, entity.AuditEntry{
		Operation: op,
		Table:     weeklyCmvTable,
		RecordID:  rec.ID,
		OldValues: old,
		NewValues: rec.Clone(),
		Severity:  entity.AuditSeverityInfo,
		Category:  entity.AuditCategoryCmv,
		ChangedBy: actor,
	})

	if s.health != nil && (rec.Anomalous || len(rec.MissingData) > 0) {
		s.health.Report(ctx, rec, actor)
	}
	return nil
}

func periodErr(key entity.WeekKey, err error) error {
	var pe *domain.PeriodError
	if errors.As(err, &pe) {
		return err
	}
	return &domain.PeriodError{VenueID: key.VenueID, Year: key.Year, Week: key.Week, Err: err}
}
