package cmv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/cmv"
	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/pkg/logger"
)

// maxRetroWeeks límite de semanas por invocación (≈ 2 años).
const maxRetroWeeks = 106

// RetroWeekOutcome resultado de una semana de la sincronización retroactiva.
type RetroWeekOutcome struct {
	Year    int    `json:"year"`
	Week    int    `json:"week"`
	Status  string `json:"status"` // ok | skipped | error
	Message string `json:"message,omitempty"`
}

// RetroResult tally de la sincronización retroactiva.
type RetroResult struct {
	VenueID     int64              `json:"venue_id"`
	DateFrom    string             `json:"date_from"`
	DateTo      string             `json:"date_to"`
	Total       int                `json:"total"`
	Succeeded   int                `json:"succeeded"`
	Skipped     int                `json:"skipped"`
	Failed      int                `json:"failed"`
	Interrupted bool               `json:"interrupted"`
	Weeks       []RetroWeekOutcome `json:"weeks"`
}

// RetroSync re-sincroniza todas las semanas ISO de un rango, en secuencia y con
// una pausa entre semanas para respetar los límites de los proveedores.
type RetroSync struct {
	sync  *WeeklySync
	delay time.Duration
	sleep func(ctx context.Context, d time.Duration) error
	log   *logger.Logger
}

// NewRetroSync construye el caso de uso.
func NewRetroSync(sync *WeeklySync, delay time.Duration, log *logger.Logger) *RetroSync {
	if log == nil {
		log = logger.Nop()
	}
	return &RetroSync{sync: sync, delay: delay, sleep: sleepCtx, log: log}
}

// Run continúa tras los fallos de una semana; los registros finales se omiten.
// Re-invocar con el mismo rango es idempotente.
func (r *RetroSync) Run(ctx context.Context, venueID int64, from, to time.Time, dateField, actor string) (*RetroResult, error) {
	weeks := cmv.WeeksInRange(from, to)
	if len(weeks) == 0 {
		return nil, fmt.Errorf("rango de fechas vacío o invertido: %w", domain.ErrInvalidInput)
	}
	if len(weeks) > maxRetroWeeks {
		return nil, fmt.Errorf("rango demasiado amplio (%d semanas, máx %d): %w", len(weeks), maxRetroWeeks, domain.ErrInvalidInput)
	}

	res := &RetroResult{
		VenueID:  venueID,
		DateFrom: cmv.DateOnly(from).Format(time.DateOnly),
		DateTo:   cmv.DateOnly(to).Format(time.DateOnly),
		Total:    len(weeks),
		Weeks:    make([]RetroWeekOutcome, 0, len(weeks)),
	}
	for i, w := range weeks {
		if i > 0 && r.delay > 0 {
			if err := r.sleep(ctx, r.delay); err != nil {
				res.Interrupted = true
				break
			}
		}
		key := entity.WeekKey{VenueID: venueID, Year: w.Year, Week: w.Week}
		out := RetroWeekOutcome{Year: w.Year, Week: w.Week, Status: "ok"}
		_, err := r.sync.SyncWeek(ctx, key, dateField, actor)
		switch {
		case err == nil:
			res.Succeeded++
		case errors.Is(err, domain.ErrRecordFinal):
			out.Status = "skipped"
			out.Message = err.Error()
			res.Skipped++
		default:
			out.Status = "error"
			out.Message = err.Error()
			res.Failed++
			r.log.Warn().Err(err).
				Int64("venue_id", venueID).
				Int("year", w.Year).
				Int("week", w.Week).
				Msg("sincronización retroactiva: semana fallida")
		}
		res.Weeks = append(res.Weeks, out)
	}

	r.log.Info().
		Int64("venue_id", venueID).
		Int("total", res.Total).
		Int("succeeded", res.Succeeded).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Bool("interrupted", res.Interrupted).
		Msg("sincronización retroactiva completada")
	return res, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
