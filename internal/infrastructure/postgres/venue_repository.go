package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
)

var _ repository.VenueRepository = (*VenueRepo)(nil)

// VenueRepo configuración de locales.
type VenueRepo struct {
	q Querier
}

// NewVenueRepository construye el adaptador. Acepta pool o tx (Querier).
func NewVenueRepository(q Querier) *VenueRepo {
	return &VenueRepo{q: q}
}

func (r *VenueRepo) GetSettings(ctx context.Context, venueID int64) (*entity.VenueSettings, error) {
	query := `
		SELECT id, name, COALESCE(inventory_source, ''), theoretical_cmv_percent
		FROM venues
		WHERE id = $1`
	var s entity.VenueSettings
	err := r.q.QueryRow(ctx, query, venueID).Scan(&s.VenueID, &s.Name, &s.InventorySource, &s.TheoreticalCmvPercent)
	if err != nil {
		return nil, mapError("get venue settings", err)
	}
	return &s, nil
}

func (r *VenueRepo) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM venues WHERE active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
