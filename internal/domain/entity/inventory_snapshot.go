package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de conteo de inventario.
const (
	StockCategoryKitchen  = "kitchen"
	StockCategoryBeverage = "beverage"
	StockCategoryDrinks   = "drinks"
	// Prefijo de las categorías de comida de empleados (employee-food-kitchen, ...).
	StockCategoryEmployeeFoodPrefix = "employee-food-"
)

// InventorySnapshot conteo físico de una categoría en una fecha.
// Inmutable: un conteo posterior lo reemplaza, nunca se edita.
type InventorySnapshot struct {
	ID             string
	VenueID        int64
	Category       string
	CountDate      time.Time
	EndingQuantity decimal.Decimal
	UnitCost       decimal.Decimal
	CreatedAt      time.Time
}

// Valuation = cantidad final × costo unitario.
func (s InventorySnapshot) Valuation() decimal.Decimal {
	return s.EndingQuantity.Mul(s.UnitCost)
}

// ValidStockCategory acepta kitchen, beverage, drinks y employee-food-*.
func ValidStockCategory(c string) bool {
	switch c {
	case StockCategoryKitchen, StockCategoryBeverage, StockCategoryDrinks:
		return true
	}
	return strings.HasPrefix(c, StockCategoryEmployeeFoodPrefix) && len(c) > len(StockCategoryEmployeeFoodPrefix)
}
