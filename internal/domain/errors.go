package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// ErrRecordFinal: el registro semanal está en estado final y no admite recálculo automático.
	ErrRecordFinal = errors.New("registro semanal finalizado: requiere desbloqueo manual")
	// ErrSnapshotNotFound: no hay conteo de inventario ni en la fecha exacta ni dentro del horizonte.
	// Significa "datos insuficientes", nunca stock cero.
	ErrSnapshotNotFound = errors.New("conteo de inventario no encontrado")
	// ErrDataSourceNotConfigured: el local no tiene fuente de inventario registrada.
	ErrDataSourceNotConfigured = errors.New("fuente de inventario no configurada para el local")
	// ErrLockNotObtained: ya hay un recálculo masivo en curso para el local.
	ErrLockNotObtained = errors.New("recálculo en curso para el local")
)

// PeriodError asocia un error a un local y semana ISO concretos, para que el
// llamador pueda informar qué período falló.
type PeriodError struct {
	VenueID int64
	Year    int
	Week    int
	Err     error
}

func (e *PeriodError) Error() string {
	return fmt.Sprintf("local %d, semana %d-W%02d: %v", e.VenueID, e.Year, e.Week, e.Err)
}

func (e *PeriodError) Unwrap() error { return e.Err }
