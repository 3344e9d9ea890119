package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del registro semanal de CMV.
const (
	CmvStatusDraft = "draft" // recalculable automáticamente
	CmvStatusFinal = "final" // congelado: solo ediciones manuales
)

// Marcadores de datos faltantes (conteos no encontrados durante la sincronización).
const (
	MissingStockInitialKitchen  = "stock_initial_kitchen"
	MissingStockInitialBeverage = "stock_initial_beverage"
	MissingStockInitialDrinks   = "stock_initial_drinks"
	MissingStockFinalKitchen    = "stock_final_kitchen"
	MissingStockFinalBeverage   = "stock_final_beverage"
	MissingStockFinalDrinks     = "stock_final_drinks"
	MissingCmaStockInitial      = "cma_stock_initial"
	MissingCmaStockFinal        = "cma_stock_final"
)

// WeekKey clave de conflicto del registro semanal: (local, año ISO, semana ISO).
type WeekKey struct {
	VenueID int64 `json:"venue_id"`
	Year    int   `json:"year"`
	Week    int   `json:"week"`
}

// WeeklyCmvRecord registro semanal de CMV de un local.
// Los nombres JSON coinciden con las columnas persistidas.
type WeeklyCmvRecord struct {
	ID        string    `json:"id"`
	VenueID   int64     `json:"venue_id"`
	Year      int       `json:"year"`
	Week      int       `json:"week"`
	DateStart time.Time `json:"date_start"` // lunes
	DateEnd   time.Time `json:"date_end"`   // domingo
	Status    string    `json:"status"`

	// Ingresos
	GrossSales       decimal.Decimal `json:"gross_sales"`
	RepiqueDeduction decimal.Decimal `json:"repique_deduction"`
	CmvAbleRevenue   decimal.Decimal `json:"cmv_able_revenue"` // derivado

	// Compras por categoría (>= 0)
	PurchasesFood     decimal.Decimal `json:"purchases_food"`
	PurchasesBeverage decimal.Decimal `json:"purchases_beverage"`
	PurchasesDrinks   decimal.Decimal `json:"purchases_drinks"`
	PurchasesOther    decimal.Decimal `json:"purchases_other"`
	PurchasesTotal    decimal.Decimal `json:"purchases_total"` // derivado

	// Valoración de stock (>= 0)
	StockInitialKitchen  decimal.Decimal `json:"stock_initial_kitchen"`
	StockInitialBeverage decimal.Decimal `json:"stock_initial_beverage"`
	StockInitialDrinks   decimal.Decimal `json:"stock_initial_drinks"`
	StockInitialTotal    decimal.Decimal `json:"stock_initial_total"` // derivado
	StockFinalKitchen    decimal.Decimal `json:"stock_final_kitchen"`
	StockFinalBeverage   decimal.Decimal `json:"stock_final_beverage"`
	StockFinalDrinks     decimal.Decimal `json:"stock_final_drinks"`
	StockFinalTotal      decimal.Decimal `json:"stock_final_total"` // derivado

	// Consumos y ajustes (con signo)
	ConsumptionPartners decimal.Decimal `json:"consumption_partners"`
	ConsumptionBenefits decimal.Decimal `json:"consumption_benefits"`
	ConsumptionAdmin    decimal.Decimal `json:"consumption_admin"`
	ConsumptionHR       decimal.Decimal `json:"consumption_hr"`
	ConsumptionArtist   decimal.Decimal `json:"consumption_artist"`
	OtherAdjustments    decimal.Decimal `json:"other_adjustments"`
	TotalConsumption    decimal.Decimal `json:"total_consumption"` // derivado

	// ConsumptionHRManual indica que consumption_hr fue editado a mano;
	// la sincronización deja de sobrescribirlo con el CMA.
	ConsumptionHRManual bool            `json:"consumption_hr_manual"`
	CmaTotal            decimal.Decimal `json:"cma_total"`

	// Bonificaciones de proveedores (>= 0)
	BonusContractAnnual  decimal.Decimal `json:"bonus_contract_annual"`
	BonusCashbackMonthly decimal.Decimal `json:"bonus_cashback_monthly"`
	BonusTotal           decimal.Decimal `json:"bonus_total"` // derivado

	TheoreticalCmvPercent decimal.Decimal `json:"theoretical_cmv_percent"`

	// Derivados: nunca se aceptan como entrada del llamador.
	CmvReal         decimal.Decimal `json:"cmv_real"`
	CmvPercent      decimal.Decimal `json:"cmv_percent"`
	CmvCleanPercent decimal.Decimal `json:"cmv_clean_percent"`
	Gap             decimal.Decimal `json:"gap"`
	Anomalous       bool            `json:"anomalous"`

	MissingData []string `json:"missing_data"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key devuelve la clave de conflicto del registro.
func (r *WeeklyCmvRecord) Key() WeekKey {
	return WeekKey{VenueID: r.VenueID, Year: r.Year, Week: r.Week}
}

// IsFinal indica si el registro está congelado para recálculos automáticos.
func (r *WeeklyCmvRecord) IsFinal() bool {
	return r.Status == CmvStatusFinal
}

// Clone devuelve una copia independiente (para snapshots de auditoría antes/después).
func (r *WeeklyCmvRecord) Clone() *WeeklyCmvRecord {
	c := *r
	if r.MissingData != nil {
		c.MissingData = append([]string(nil), r.MissingData...)
	}
	return &c
}
