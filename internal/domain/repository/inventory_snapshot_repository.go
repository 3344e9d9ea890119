package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cmv-api/internal/domain/entity"
)

// InventorySnapshotRepository conteos físicos de inventario (inmutables).
type InventorySnapshotRepository interface {
	// ListOnDate devuelve los conteos de las categorías en la fecha exacta.
	ListOnDate(ctx context.Context, venueID int64, categories []string, date time.Time) ([]entity.InventorySnapshot, error)
	// ListForward devuelve los conteos en [from, from+horizonDays], ordenados por fecha ascendente.
	ListForward(ctx context.Context, venueID int64, categories []string, from time.Time, horizonDays int) ([]entity.InventorySnapshot, error)
	// Create registra un conteo. domain.ErrDuplicate si ya existe (local, categoría, fecha).
	Create(ctx context.Context, snapshot *entity.InventorySnapshot) error
}
