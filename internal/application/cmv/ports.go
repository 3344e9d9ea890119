// Package cmv orquesta la conciliación semanal del CMV: agregadores de ventas
// y compras, resolución de conteos de inventario, CMA, persistencia del
// registro semanal y recálculos masivos.
package cmv

import (
	"context"

	"github.com/jhoicas/cmv-api/internal/domain/entity"
)

// VenueLocker serializa los recálculos masivos de un mismo local.
// Lock devuelve domain.ErrLockNotObtained si otro proceso tiene el lock.
type VenueLocker interface {
	Lock(ctx context.Context, venueID int64) (release func(), err error)
}

// HealthReporter recibe los registros anómalos o con datos faltantes.
// Nunca bloquea la persistencia del registro.
type HealthReporter interface {
	Report(ctx context.Context, rec *entity.WeeklyCmvRecord, actor string)
}

// noopLocker se usa cuando no hay Redis configurado.
type noopLocker struct{}

func (noopLocker) Lock(context.Context, int64) (func(), error) { return func() {}, nil }

// NoopLocker devuelve un VenueLocker que siempre concede el lock.
func NoopLocker() VenueLocker { return noopLocker{} }
