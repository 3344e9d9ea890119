package cmv

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/cmv"
	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
)

// PurchaseTotals compras del período por cubeta de costo.
type PurchaseTotals struct {
	Food     decimal.Decimal `json:"food"`
	Beverage decimal.Decimal `json:"beverage"`
	Drinks   decimal.Decimal `json:"drinks"`
	Other    decimal.Decimal `json:"other"`
}

// Total suma las cuatro cubetas.
func (p PurchaseTotals) Total() decimal.Decimal {
	return p.Food.Add(p.Beverage).Add(p.Drinks).Add(p.Other)
}

// PurchaseAggregator agrupa el libro de compras en cubetas de costo.
type PurchaseAggregator struct {
	purchases repository.PurchaseLedgerRepository
	mapping   *CategoryMapping
}

// NewPurchaseAggregator construye el agregador con la tabla de categorías.
func NewPurchaseAggregator(purchases repository.PurchaseLedgerRepository, mapping *CategoryMapping) *PurchaseAggregator {
	return &PurchaseAggregator{purchases: purchases, mapping: mapping}
}

// Aggregate suma las compras de [start, end] según dateField (creation|competency).
// Los montos se toman en valor absoluto (los débitos pueden venir negativos).
// Si filter no está vacío solo se consideran esas categorías (CMA).
func (a *PurchaseAggregator) Aggregate(
	ctx context.Context,
	venueID int64,
	start, end time.Time,
	dateField string,
	filter []string,
) (PurchaseTotals, error) {
	if !entity.ValidPurchaseDateField(dateField) {
		return PurchaseTotals{}, fmt.Errorf("compras: campo de fecha %q: %w", dateField, domain.ErrInvalidInput)
	}
	start, end = cmv.DateOnly(start), cmv.DateOnly(end)
	if end.Before(start) {
		return PurchaseTotals{}, fmt.Errorf("compras: rango invertido: %w", domain.ErrInvalidInput)
	}

	var only map[string]struct{}
	if len(filter) > 0 {
		only = make(map[string]struct{}, len(filter))
		for _, f := range filter {
			only[NormalizeCategory(f)] = struct{}{}
		}
	}

	rows, err := a.purchases.List(ctx, venueID, start, end, dateField)
	if err != nil {
		return PurchaseTotals{}, fmt.Errorf("compras: %w", err)
	}

	var t PurchaseTotals
	for _, r := range rows {
		if only != nil {
			if _, ok := only[NormalizeCategory(r.CategoryName)]; !ok {
				continue
			}
		}
		amount := r.Amount.Abs()
		switch a.mapping.Bucket(r.CategoryName) {
		case BucketFood:
			t.Food = t.Food.Add(amount)
		case BucketBeverage:
			t.Beverage = t.Beverage.Add(amount)
		case BucketDrinks:
			t.Drinks = t.Drinks.Add(amount)
		default:
			t.Other = t.Other.Add(amount)
		}
	}
	return t, nil
}
