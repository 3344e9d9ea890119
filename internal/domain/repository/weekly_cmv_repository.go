package repository

import (
	"context"

	"github.com/jhoicas/cmv-api/internal/domain/entity"
)

// WeeklyCmvFilter rango opcional de años para listados (0 = sin límite).
type WeeklyCmvFilter struct {
	YearFrom int
	YearTo   int
}

// WeeklyCmvRepository persistencia del registro semanal; la clave de conflicto es
// (venue_id, year, week) y la escritura es last-write-wins.
type WeeklyCmvRepository interface {
	// Get devuelve domain.ErrNotFound si no existe.
	Get(ctx context.Context, key entity.WeekKey) (*entity.WeeklyCmvRecord, error)
	// Upsert inserta o reemplaza el registro; completa ID y marcas de tiempo.
	Upsert(ctx context.Context, rec *entity.WeeklyCmvRecord) error
	// ListByVenue ordenado por (year, week) ascendente.
	ListByVenue(ctx context.Context, venueID int64, filter WeeklyCmvFilter) ([]*entity.WeeklyCmvRecord, error)
}
