package dto

import (
	"github.com/shopspring/decimal"
)

// SyncWeekRequest sincronización de una semana ISO (o de todo el historial del local).
// Year/Week en cero = semana actual.
type SyncWeekRequest struct {
	VenueID           int64  `json:"venue_id" validate:"required,gt=0"`
	Year              int    `json:"year" validate:"omitempty,min=2000,max=2100"`
	Week              int    `json:"week" validate:"omitempty,min=1,max=53"`
	RecalculateAll    bool   `json:"recalculate_all"`
	PurchaseDateField string `json:"purchase_date_field" validate:"omitempty,oneof=creation competency"`
}

// PatchWeeklyCmvRequest edición manual; solo se aplican los campos presentes.
// Los derivados (cmv_real, porcentajes, gap, totales) no se aceptan.
type PatchWeeklyCmvRequest struct {
	GrossSales       *decimal.Decimal `json:"gross_sales"`
	RepiqueDeduction *decimal.Decimal `json:"repique_deduction"`

	PurchasesFood     *decimal.Decimal `json:"purchases_food"`
	PurchasesBeverage *decimal.Decimal `json:"purchases_beverage"`
	PurchasesDrinks   *decimal.Decimal `json:"purchases_drinks"`
	PurchasesOther    *decimal.Decimal `json:"purchases_other"`

	StockInitialKitchen  *decimal.Decimal `json:"stock_initial_kitchen"`
	StockInitialBeverage *decimal.Decimal `json:"stock_initial_beverage"`
	StockInitialDrinks   *decimal.Decimal `json:"stock_initial_drinks"`
	StockFinalKitchen    *decimal.Decimal `json:"stock_final_kitchen"`
	StockFinalBeverage   *decimal.Decimal `json:"stock_final_beverage"`
	StockFinalDrinks     *decimal.Decimal `json:"stock_final_drinks"`

	ConsumptionPartners *decimal.Decimal `json:"consumption_partners"`
	ConsumptionBenefits *decimal.Decimal `json:"consumption_benefits"`
	ConsumptionAdmin    *decimal.Decimal `json:"consumption_admin"`
	ConsumptionHR       *decimal.Decimal `json:"consumption_hr"`
	ConsumptionArtist   *decimal.Decimal `json:"consumption_artist"`
	OtherAdjustments    *decimal.Decimal `json:"other_adjustments"`

	BonusContractAnnual  *decimal.Decimal `json:"bonus_contract_annual"`
	BonusCashbackMonthly *decimal.Decimal `json:"bonus_cashback_monthly"`

	TheoreticalCmvPercent *decimal.Decimal `json:"theoretical_cmv_percent"`
}

// RecalculateRequest recálculo masivo de varios locales (vacío = todos).
type RecalculateRequest struct {
	VenueIDs []int64 `json:"venue_ids" validate:"omitempty,max=200,dive,gt=0"`
}

// RetroSyncRequest re-sincronización de todas las semanas ISO de un rango.
type RetroSyncRequest struct {
	VenueID           int64  `json:"venue_id" validate:"required,gt=0"`
	DateFrom          string `json:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo            string `json:"date_to" validate:"required,datetime=2006-01-02"`
	PurchaseDateField string `json:"purchase_date_field" validate:"omitempty,oneof=creation competency"`
}

// CmaRequest cálculo del CMA de un período arbitrario.
type CmaRequest struct {
	VenueID           int64  `json:"venue_id" validate:"required,gt=0"`
	PeriodStart       string `json:"period_start" validate:"required,datetime=2006-01-02"`
	PeriodEnd         string `json:"period_end" validate:"required,datetime=2006-01-02"`
	// PurchaseDateField obligatorio: el CMA no asume un campo de fecha por defecto.
	PurchaseDateField string `json:"purchase_date_field" validate:"required,oneof=creation competency"`
}

// CreateSnapshotRequest registro de un conteo físico de inventario.
type CreateSnapshotRequest struct {
	VenueID        int64           `json:"venue_id" validate:"required,gt=0"`
	Category       string          `json:"category" validate:"required,max=64"`
	CountDate      string          `json:"count_date" validate:"required,datetime=2006-01-02"`
	EndingQuantity decimal.Decimal `json:"ending_quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
}

// SnapshotResponse conteo registrado.
type SnapshotResponse struct {
	ID             string          `json:"id"`
	VenueID        int64           `json:"venue_id"`
	Category       string          `json:"category"`
	CountDate      string          `json:"count_date"`
	EndingQuantity decimal.Decimal `json:"ending_quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	Valuation      decimal.Decimal `json:"valuation"`
}
