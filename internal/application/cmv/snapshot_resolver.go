package cmv

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/cmv"
	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
)

// DefaultSnapshotHorizonDays límite de la búsqueda hacia adelante.
const DefaultSnapshotHorizonDays = 60

// ResolveMode política de selección de fecha del conteo.
type ResolveMode int

const (
	// ResolveExact solo acepta conteos en la fecha exacta (stock inicial).
	ResolveExact ResolveMode = iota
	// ResolveForward si falta la fecha exacta busca el conteo posterior más cercano
	// con valoración positiva (stock final: los conteos dependen del calendario operativo).
	ResolveForward
)

// Valuation valoración de stock resuelta para un conjunto de categorías.
type Valuation struct {
	Date       time.Time
	Total      decimal.Decimal
	ByCategory map[string]decimal.Decimal
	Exact      bool // true si proviene de la fecha solicitada
	// Missing categorías pedidas sin conteo en la fecha exacta (ordenadas). Solo se
	// llena cuando se devuelve un conteo exacto parcial; el llamador debe marcarlas
	// como dato faltante. La búsqueda hacia adelante acepta la primera fecha positiva.
	Missing []string
}

// SnapshotResolver localiza la valoración de inventario de una fecha.
type SnapshotResolver struct {
	repo        repository.InventorySnapshotRepository
	horizonDays int
}

// NewSnapshotResolver construye el resolver. horizonDays <= 0 usa el default (60 días).
func NewSnapshotResolver(repo repository.InventorySnapshotRepository, horizonDays int) *SnapshotResolver {
	if horizonDays <= 0 {
		horizonDays = DefaultSnapshotHorizonDays
	}
	return &SnapshotResolver{repo: repo, horizonDays: horizonDays}
}

// HorizonDays devuelve el horizonte configurado.
func (r *SnapshotResolver) HorizonDays() int { return r.horizonDays }

// Resolve devuelve la valoración de las categorías en target.
//
//  1. Si todas las categorías tienen conteo en la fecha exacta, suma y devuelve
//     (una valoración 0 es un stock vacío legítimo, no un faltante). En modo
//     ResolveExact un conteo parcial se devuelve con las ausentes en Missing.
//  2. En modo ResolveForward busca en orden ascendente la primera fecha dentro del
//     horizonte con valoración positiva en al menos una categoría.
//  3. Sin resultado: domain.ErrSnapshotNotFound (datos insuficientes, nunca cero).
func (r *SnapshotResolver) Resolve(
	ctx context.Context,
	venueID int64,
	categories []string,
	target time.Time,
	mode ResolveMode,
) (*Valuation, error) {
	wanted := categorySet(categories)
	if len(wanted) == 0 {
		return nil, fmt.Errorf("resolver: sin categorías: %w", domain.ErrInvalidInput)
	}
	target = cmv.DateOnly(target)

	rows, err := r.repo.ListOnDate(ctx, venueID, categories, target)
	if err != nil {
		return nil, fmt.Errorf("resolver: conteos del %s: %w", target.Format(time.DateOnly), err)
	}
	exact := sumValuation(target, rows, wanted)
	if exact != nil {
		exact.Exact = true
		exact.Missing = missingCategories(exact, wanted)
		if len(exact.Missing) == 0 {
			return exact, nil
		}
	}

	if mode == ResolveExact {
		if exact != nil {
			// Conteo parcial: se devuelve lo contado y las ausentes quedan en Missing.
			return exact, nil
		}
		return nil, domain.ErrSnapshotNotFound
	}

	rows, err = r.repo.ListForward(ctx, venueID, categories, target, r.horizonDays)
	if err != nil {
		return nil, fmt.Errorf("resolver: búsqueda desde %s: %w", target.Format(time.DateOnly), err)
	}
	if found := r.firstPositive(target, rows, wanted); found != nil {
		found.Exact = found.Date.Equal(target)
		return found, nil
	}
	if exact != nil {
		return exact, nil
	}
	return nil, domain.ErrSnapshotNotFound
}

// firstPositive agrupa por fecha y devuelve la primera con alguna categoría > 0.
func (r *SnapshotResolver) firstPositive(from time.Time, rows []entity.InventorySnapshot, wanted map[string]struct{}) *Valuation {
	limit := from.AddDate(0, 0, r.horizonDays)
	byDate := make(map[time.Time][]entity.InventorySnapshot)
	for _, s := range rows {
		day := cmv.DateOnly(s.CountDate)
		if day.Before(from) || day.After(limit) {
			continue
		}
		byDate[day] = append(byDate[day], s)
	}
	dates := make([]time.Time, 0, len(byDate))
	for day := range byDate {
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	for _, day := range dates {
		v := sumValuation(day, byDate[day], wanted)
		if v == nil {
			continue
		}
		for _, amount := range v.ByCategory {
			if amount.IsPositive() {
				return v
			}
		}
	}
	return nil
}

// sumValuation suma las filas de las categorías pedidas; nil si no hay ninguna.
func sumValuation(day time.Time, rows []entity.InventorySnapshot, wanted map[string]struct{}) *Valuation {
	var v *Valuation
	for _, s := range rows {
		if _, ok := wanted[s.Category]; !ok {
			continue
		}
		if v == nil {
			v = &Valuation{Date: day, ByCategory: make(map[string]decimal.Decimal)}
		}
		val := s.Valuation()
		v.ByCategory[s.Category] = v.ByCategory[s.Category].Add(val)
		v.Total = v.Total.Add(val)
	}
	return v
}

// missingCategories categorías de wanted sin fila en v.
func missingCategories(v *Valuation, wanted map[string]struct{}) []string {
	var out []string
	for c := range wanted {
		if _, ok := v.ByCategory[c]; !ok {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

func categorySet(categories []string) map[string]struct{} {
	set := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if c != "" {
			set[c] = struct{}{}
		}
	}
	return set
}
