package cmv

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/cmv"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
)

// RevenueTotals ingresos del período.
type RevenueTotals struct {
	GrossSales     decimal.Decimal `json:"gross_sales"`
	Repique        decimal.Decimal `json:"repique"`
	CmvAbleRevenue decimal.Decimal `json:"cmv_able_revenue"`
}

// RevenueAggregator suma ventas brutas y repique del libro de ventas.
type RevenueAggregator struct {
	sales repository.SalesLedgerRepository
}

// NewRevenueAggregator construye el agregador.
func NewRevenueAggregator(sales repository.SalesLedgerRepository) *RevenueAggregator {
	return &RevenueAggregator{sales: sales}
}

// Aggregate suma el rango inclusivo [start, end]. Sin ventas devuelve ceros:
// la ausencia de ventas es un estado válido del negocio.
func (a *RevenueAggregator) Aggregate(ctx context.Context, venueID int64, start, end time.Time) (RevenueTotals, error) {
	start, end = cmv.DateOnly(start), cmv.DateOnly(end)
	if end.Before(start) {
		return RevenueTotals{}, fmt.Errorf("ventas: rango invertido: %w", domain.ErrInvalidInput)
	}
	rows, err := a.sales.List(ctx, venueID, start, end)
	if err != nil {
		return RevenueTotals{}, fmt.Errorf("ventas: %w", err)
	}
	var t RevenueTotals
	for _, r := range rows {
		t.GrossSales = t.GrossSales.Add(r.GrossAmount)
		t.Repique = t.Repique.Add(r.RepiqueAmount)
	}
	t.CmvAbleRevenue = t.GrossSales.Sub(t.Repique)
	return t, nil
}
