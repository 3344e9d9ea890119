// Package cmv contiene la fórmula de conciliación semanal del CMV y la
// aritmética de calendario asociada. Funciones puras: sin I/O.
package cmv

import (
	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// percentPlaces decimales de los porcentajes persistidos.
const percentPlaces = 2

var (
	hundred    = decimal.NewFromInt(100)
	maxPercent = decimal.NewFromInt(100)
)

// Inputs entradas ya agregadas de una semana.
type Inputs struct {
	GrossSales       decimal.Decimal
	RepiqueDeduction decimal.Decimal

	PurchasesFood     decimal.Decimal
	PurchasesBeverage decimal.Decimal
	PurchasesDrinks   decimal.Decimal
	PurchasesOther    decimal.Decimal

	StockInitialKitchen  decimal.Decimal
	StockInitialBeverage decimal.Decimal
	StockInitialDrinks   decimal.Decimal
	StockFinalKitchen    decimal.Decimal
	StockFinalBeverage   decimal.Decimal
	StockFinalDrinks     decimal.Decimal

	ConsumptionPartners decimal.Decimal
	ConsumptionBenefits decimal.Decimal
	ConsumptionAdmin    decimal.Decimal
	ConsumptionHR       decimal.Decimal
	ConsumptionArtist   decimal.Decimal
	OtherAdjustments    decimal.Decimal

	BonusContractAnnual  decimal.Decimal
	BonusCashbackMonthly decimal.Decimal

	TheoreticalCmvPercent decimal.Decimal
}

// Result campos derivados.
type Result struct {
	CmvAbleRevenue    decimal.Decimal
	StockInitialTotal decimal.Decimal
	StockFinalTotal   decimal.Decimal
	PurchasesTotal    decimal.Decimal
	TotalConsumption  decimal.Decimal
	BonusTotal        decimal.Decimal
	CmvReal           decimal.Decimal
	CmvPercent        decimal.Decimal
	CmvCleanPercent   decimal.Decimal
	Gap               decimal.Decimal
	Anomalous         bool
}

// Compute aplica la fórmula de conciliación:
//
//	cmv_real = stock_inicial + compras - stock_final - consumos + bonificaciones
//
// Las bonificaciones SUMAN al cmv_real. Los porcentajes devuelven 0 cuando el
// denominador es 0. El gap usa el porcentaje limpio ya redondeado; la anomalía
// se evalúa sobre el porcentaje sin redondear (100,004% es anómalo).
func Compute(in Inputs) Result {
	var r Result
	r.CmvAbleRevenue = in.GrossSales.Sub(in.RepiqueDeduction)
	r.StockInitialTotal = in.StockInitialKitchen.Add(in.StockInitialBeverage).Add(in.StockInitialDrinks)
	r.StockFinalTotal = in.StockFinalKitchen.Add(in.StockFinalBeverage).Add(in.StockFinalDrinks)
	r.PurchasesTotal = in.PurchasesFood.Add(in.PurchasesBeverage).Add(in.PurchasesDrinks).Add(in.PurchasesOther)
	r.TotalConsumption = in.ConsumptionPartners.
		Add(in.ConsumptionBenefits).
		Add(in.ConsumptionAdmin).
		Add(in.ConsumptionHR).
		Add(in.ConsumptionArtist).
		Add(in.OtherAdjustments)
	r.BonusTotal = in.BonusContractAnnual.Add(in.BonusCashbackMonthly)

	r.CmvReal = r.StockInitialTotal.
		Add(r.PurchasesTotal).
		Sub(r.StockFinalTotal).
		Sub(r.TotalConsumption).
		Add(r.BonusTotal)

	rawPercent := ratioPercent(r.CmvReal, in.GrossSales)
	r.CmvPercent = rawPercent.Round(percentPlaces)
	r.CmvCleanPercent = percentOf(r.CmvReal, r.CmvAbleRevenue)
	r.Gap = r.CmvCleanPercent.Sub(in.TheoreticalCmvPercent)
	r.Anomalous = IsAnomalous(rawPercent)
	return r
}

// IsAnomalous: porcentaje fuera de [0, 100]. Compute le pasa el valor sin redondear.
func IsAnomalous(cmvPercent decimal.Decimal) bool {
	return cmvPercent.IsNegative() || cmvPercent.GreaterThan(maxPercent)
}

func percentOf(num, den decimal.Decimal) decimal.Decimal {
	return ratioPercent(num, den).Round(percentPlaces)
}

// ratioPercent num/den*100 sin redondear; 0 si den es 0.
func ratioPercent(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den).Mul(hundred)
}

// InputsFromRecord toma las entradas almacenadas de un registro semanal.
func InputsFromRecord(rec *entity.WeeklyCmvRecord) Inputs {
	return Inputs{
		GrossSales:            rec.GrossSales,
		RepiqueDeduction:      rec.RepiqueDeduction,
		PurchasesFood:         rec.PurchasesFood,
		PurchasesBeverage:     rec.PurchasesBeverage,
		PurchasesDrinks:       rec.PurchasesDrinks,
		PurchasesOther:        rec.PurchasesOther,
		StockInitialKitchen:   rec.StockInitialKitchen,
		StockInitialBeverage:  rec.StockInitialBeverage,
		StockInitialDrinks:    rec.StockInitialDrinks,
		StockFinalKitchen:     rec.StockFinalKitchen,
		StockFinalBeverage:    rec.StockFinalBeverage,
		StockFinalDrinks:      rec.StockFinalDrinks,
		ConsumptionPartners:   rec.ConsumptionPartners,
		ConsumptionBenefits:   rec.ConsumptionBenefits,
		ConsumptionAdmin:      rec.ConsumptionAdmin,
		ConsumptionHR:         rec.ConsumptionHR,
		ConsumptionArtist:     rec.ConsumptionArtist,
		OtherAdjustments:      rec.OtherAdjustments,
		BonusContractAnnual:   rec.BonusContractAnnual,
		BonusCashbackMonthly:  rec.BonusCashbackMonthly,
		TheoreticalCmvPercent: rec.TheoreticalCmvPercent,
	}
}

// Recompute recalcula todos los campos derivados del registro en sitio.
func Recompute(rec *entity.WeeklyCmvRecord) Result {
	r := Compute(InputsFromRecord(rec))
	rec.CmvAbleRevenue = r.CmvAbleRevenue
	rec.StockInitialTotal = r.StockInitialTotal
	rec.StockFinalTotal = r.StockFinalTotal
	rec.PurchasesTotal = r.PurchasesTotal
	rec.TotalConsumption = r.TotalConsumption
	rec.BonusTotal = r.BonusTotal
	rec.CmvReal = r.CmvReal
	rec.CmvPercent = r.CmvPercent
	rec.CmvCleanPercent = r.CmvCleanPercent
	rec.Gap = r.Gap
	rec.Anomalous = r.Anomalous
	return r
}

// DerivedEqual compara los campos derivados de dos registros.
func DerivedEqual(a, b *entity.WeeklyCmvRecord) bool {
	return a.CmvAbleRevenue.Equal(b.CmvAbleRevenue) &&
		a.StockInitialTotal.Equal(b.StockInitialTotal) &&
		a.StockFinalTotal.Equal(b.StockFinalTotal) &&
		a.PurchasesTotal.Equal(b.PurchasesTotal) &&
		a.TotalConsumption.Equal(b.TotalConsumption) &&
		a.BonusTotal.Equal(b.BonusTotal) &&
		a.CmvReal.Equal(b.CmvReal) &&
		a.CmvPercent.Equal(b.CmvPercent) &&
		a.CmvCleanPercent.Equal(b.CmvCleanPercent) &&
		a.Gap.Equal(b.Gap) &&
		a.Anomalous == b.Anomalous
}
