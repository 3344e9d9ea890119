package cmv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/cmv"
	"github.com/jhoicas/cmv-api/internal/domain/entity"
)

// CmaEngine calcula el costo de alimentación de empleados:
// cma = stock_inicial + compras_empleados - stock_final.
type CmaEngine struct {
	resolver           *SnapshotResolver
	purchases          *PurchaseAggregator
	stockCategories    []string
	purchaseCategories []string
}

// NewCmaEngine construye el sub-motor con las categorías de comida de empleados.
func NewCmaEngine(
	resolver *SnapshotResolver,
	purchases *PurchaseAggregator,
	stockCategories, purchaseCategories []string,
) *CmaEngine {
	return &CmaEngine{
		resolver:           resolver,
		purchases:          purchases,
		stockCategories:    stockCategories,
		purchaseCategories: purchaseCategories,
	}
}

// Compute calcula el CMA de [periodStart, periodEnd].
//   - Stock inicial: solo fecha exacta en periodStart.
//   - Compras: categorías de empleados, con dateField explícito (creation|competency).
//   - Stock final: búsqueda hacia adelante desde el lunes siguiente a periodEnd.
//
// Un conteo no encontrado (o exacto parcial) cuenta como cero y queda marcado en Missing.
// El total puede ser negativo y no se recorta.
func (e *CmaEngine) Compute(
	ctx context.Context,
	venueID int64,
	periodStart, periodEnd time.Time,
	dateField string,
) (*entity.CmaResult, error) {
	if !entity.ValidPurchaseDateField(dateField) {
		return nil, fmt.Errorf("cma: campo de fecha %q: %w", dateField, domain.ErrInvalidInput)
	}
	if len(e.stockCategories) == 0 || len(e.purchaseCategories) == 0 {
		return nil, fmt.Errorf("cma: categorías de empleados sin configurar: %w", domain.ErrDataSourceNotConfigured)
	}
	periodStart, periodEnd = cmv.DateOnly(periodStart), cmv.DateOnly(periodEnd)
	if periodEnd.Before(periodStart) {
		return nil, fmt.Errorf("cma: rango invertido: %w", domain.ErrInvalidInput)
	}

	res := &entity.CmaResult{
		VenueID:     venueID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		DateField:   dateField,
	}

	initial, err := e.resolver.Resolve(ctx, venueID, e.stockCategories, periodStart, ResolveExact)
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		res.Missing = append(res.Missing, entity.MissingCmaStockInitial)
	case err != nil:
		return nil, fmt.Errorf("cma: stock inicial: %w", err)
	default:
		res.StockInitialEmployee = initial.Total
		if len(initial.Missing) > 0 {
			res.Missing = append(res.Missing, entity.MissingCmaStockInitial)
		}
	}

	purchases, err := e.purchases.Aggregate(ctx, venueID, periodStart, periodEnd, dateField, e.purchaseCategories)
	if err != nil {
		return nil, fmt.Errorf("cma: %w", err)
	}
	res.PurchasesEmployeeFood = purchases.Total()

	final, err := e.resolver.Resolve(ctx, venueID, e.stockCategories, cmv.NextMonday(periodEnd), ResolveForward)
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		res.Missing = append(res.Missing, entity.MissingCmaStockFinal)
	case err != nil:
		return nil, fmt.Errorf("cma: stock final: %w", err)
	default:
		res.StockFinalEmployee = final.Total
		finalDate := final.Date
		res.StockFinalDate = &finalDate
		if len(final.Missing) > 0 {
			res.Missing = append(res.Missing, entity.MissingCmaStockFinal)
		}
	}

	res.CmaTotal = res.StockInitialEmployee.Add(res.PurchasesEmployeeFood).Sub(res.StockFinalEmployee)
	return res, nil
}
