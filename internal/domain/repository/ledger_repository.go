package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cmv-api/internal/domain/entity"
)

// SalesLedgerRepository lectura del libro de ventas del proveedor POS.
type SalesLedgerRepository interface {
	// List devuelve las filas del rango [start, end] (inclusivo, por día).
	List(ctx context.Context, venueID int64, start, end time.Time) ([]entity.SalesLedgerEntry, error)
}

// PurchaseLedgerRepository lectura del libro de compras.
type PurchaseLedgerRepository interface {
	// List filtra por dateField (entity.PurchaseDateCreation | entity.PurchaseDateCompetency).
	List(ctx context.Context, venueID int64, start, end time.Time, dateField string) ([]entity.PurchaseLedgerEntry, error)
}
