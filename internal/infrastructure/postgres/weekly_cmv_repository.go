package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
)

var _ repository.WeeklyCmvRepository = (*WeeklyCmvRepo)(nil)

// WeeklyCmvRepo registros semanales de CMV. Clave de conflicto (venue_id, year, week).
type WeeklyCmvRepo struct {
	q Querier
}

// NewWeeklyCmvRepository construye el adaptador. Acepta pool o tx (Querier).
func NewWeeklyCmvRepository(q Querier) *WeeklyCmvRepo {
	return &WeeklyCmvRepo{q: q}
}

// weeklyColumns columnas escribibles, en el mismo orden que weeklyFields.
var weeklyColumns = []string{
	"venue_id", "year", "week", "date_start", "date_end", "status",
	"gross_sales", "repique_deduction", "cmv_able_revenue",
	"purchases_food", "purchases_beverage", "purchases_drinks", "purchases_other", "purchases_total",
	"stock_initial_kitchen", "stock_initial_beverage", "stock_initial_drinks", "stock_initial_total",
	"stock_final_kitchen", "stock_final_beverage", "stock_final_drinks", "stock_final_total",
	"consumption_partners", "consumption_benefits", "consumption_admin", "consumption_hr",
	"consumption_artist", "other_adjustments", "total_consumption",
	"consumption_hr_manual", "cma_total",
	"bonus_contract_annual", "bonus_cashback_monthly", "bonus_total",
	"theoretical_cmv_percent", "cmv_real", "cmv_percent", "cmv_clean_percent", "gap", "anomalous",
	"missing_data",
}

// weeklyFields punteros a los campos del registro; sirven como args del INSERT y como destinos del Scan.
func weeklyFields(r *entity.WeeklyCmvRecord) []any {
	return []any{
		&r.VenueID, &r.Year, &r.Week, &r.DateStart, &r.DateEnd, &r.Status,
		&r.GrossSales, &r.RepiqueDeduction, &r.CmvAbleRevenue,
		&r.PurchasesFood, &r.PurchasesBeverage, &r.PurchasesDrinks, &r.PurchasesOther, &r.PurchasesTotal,
		&r.StockInitialKitchen, &r.StockInitialBeverage, &r.StockInitialDrinks, &r.StockInitialTotal,
		&r.StockFinalKitchen, &r.StockFinalBeverage, &r.StockFinalDrinks, &r.StockFinalTotal,
		&r.ConsumptionPartners, &r.ConsumptionBenefits, &r.ConsumptionAdmin, &r.ConsumptionHR,
		&r.ConsumptionArtist, &r.OtherAdjustments, &r.TotalConsumption,
		&r.ConsumptionHRManual, &r.CmaTotal,
		&r.BonusContractAnnual, &r.BonusCashbackMonthly, &r.BonusTotal,
		&r.TheoreticalCmvPercent, &r.CmvReal, &r.CmvPercent, &r.CmvCleanPercent, &r.Gap, &r.Anomalous,
		&r.MissingData,
	}
}

var (
	weeklySelect = `SELECT id, ` + strings.Join(weeklyColumns, ", ") + `, created_at, updated_at FROM weekly_cmv`
	weeklyUpsert = buildWeeklyUpsert()
)

// buildWeeklyUpsert INSERT ... ON CONFLICT (venue_id, year, week) DO UPDATE: last-write-wins.
func buildWeeklyUpsert() string {
	placeholders := make([]string, 0, len(weeklyColumns)+1)
	placeholders = append(placeholders, "$1")
	sets := make([]string, 0, len(weeklyColumns))
	for i, col := range weeklyColumns {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		switch col {
		case "venue_id", "year", "week":
			continue
		}
		sets = append(sets, col+" = EXCLUDED."+col)
	}
	return `
		INSERT INTO weekly_cmv (id, ` + strings.Join(weeklyColumns, ", ") + `, created_at, updated_at)
		VALUES (` + strings.Join(placeholders, ", ") + `, now(), now())
		ON CONFLICT (venue_id, year, week) DO UPDATE SET
		` + strings.Join(sets, ",\n\t\t") + `,
		updated_at = now()
		RETURNING id, created_at, updated_at`
}

func (r *WeeklyCmvRepo) Get(ctx context.Context, key entity.WeekKey) (*entity.WeeklyCmvRecord, error) {
	query := weeklySelect + ` WHERE venue_id = $1 AND year = $2 AND week = $3`
	rec, err := scanWeekly(r.q.QueryRow(ctx, query, key.VenueID, key.Year, key.Week))
	if err != nil {
		return nil, mapError("get weekly cmv", err)
	}
	return rec, nil
}

func (r *WeeklyCmvRepo) Upsert(ctx context.Context, rec *entity.WeeklyCmvRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.MissingData == nil {
		rec.MissingData = []string{}
	}
	args := append([]any{rec.ID}, weeklyFields(rec)...)
	err := r.q.QueryRow(ctx, weeklyUpsert, args...).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert weekly cmv: %w", err)
	}
	return nil
}

func (r *WeeklyCmvRepo) ListByVenue(ctx context.Context, venueID int64, filter repository.WeeklyCmvFilter) ([]*entity.WeeklyCmvRecord, error) {
	query := weeklySelect + `
		WHERE venue_id = $1
		  AND ($2 = 0 OR year >= $2)
		  AND ($3 = 0 OR year <= $3)
		ORDER BY year, week`
	rows, err := r.q.Query(ctx, query, venueID, filter.YearFrom, filter.YearTo)
	if err != nil {
		return nil, fmt.Errorf("list weekly cmv: %w", err)
	}
	defer rows.Close()
	var list []*entity.WeeklyCmvRecord
	for rows.Next() {
		rec, err := scanWeekly(rows)
		if err != nil {
			return nil, fmt.Errorf("scan weekly cmv: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func scanWeekly(row pgx.Row) (*entity.WeeklyCmvRecord, error) {
	var rec entity.WeeklyCmvRecord
	dest := append([]any{&rec.ID}, weeklyFields(&rec)...)
	dest = append(dest, &rec.CreatedAt, &rec.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &rec, nil
}
