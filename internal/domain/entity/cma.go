package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CmaResult costo de alimentación de empleados de un período (efímero).
// CmaTotal puede ser negativo (consumo de stock existente sin compras).
type CmaResult struct {
	VenueID               int64           `json:"venue_id"`
	PeriodStart           time.Time       `json:"period_start"`
	PeriodEnd             time.Time       `json:"period_end"`
	DateField             string          `json:"date_field"`
	StockInitialEmployee  decimal.Decimal `json:"stock_initial_employee"`
	PurchasesEmployeeFood decimal.Decimal `json:"purchases_employee_food"`
	StockFinalEmployee    decimal.Decimal `json:"stock_final_employee"`
	StockFinalDate        *time.Time      `json:"stock_final_date,omitempty"`
	CmaTotal              decimal.Decimal `json:"cma_total"`
	Missing               []string        `json:"missing,omitempty"`
}
