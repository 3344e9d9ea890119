package repository

import (
	"context"

	"github.com/jhoicas/cmv-api/internal/domain/entity"
)

// VenueRepository configuración de los locales.
type VenueRepository interface {
	// GetSettings devuelve domain.ErrNotFound si el local no existe.
	GetSettings(ctx context.Context, venueID int64) (*entity.VenueSettings, error)
	ListIDs(ctx context.Context) ([]int64, error)
}
