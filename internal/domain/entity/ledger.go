package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campo de fecha usado para filtrar el libro de compras.
const (
	PurchaseDateCreation   = "creation"   // fecha de creación del asiento
	PurchaseDateCompetency = "competency" // fecha de competencia contable
)

// ValidPurchaseDateField indica si el campo de fecha es soportado.
func ValidPurchaseDateField(f string) bool {
	return f == PurchaseDateCreation || f == PurchaseDateCompetency
}

// SalesLedgerEntry fila del libro de ventas (solo lectura para el motor).
type SalesLedgerEntry struct {
	VenueID       int64
	Date          time.Time
	GrossAmount   decimal.Decimal
	RepiqueAmount decimal.Decimal
}

// PurchaseLedgerEntry fila del libro de compras (solo lectura).
// Amount puede venir negativo (débito); el agregador usa el valor absoluto.
type PurchaseLedgerEntry struct {
	VenueID      int64
	Date         time.Time // fecha del campo solicitado (creación o competencia)
	CategoryName string
	Amount       decimal.Decimal
}
