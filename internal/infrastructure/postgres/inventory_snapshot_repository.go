package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
)

var _ repository.InventorySnapshotRepository = (*InventorySnapshotRepo)(nil)

// InventorySnapshotRepo conteos físicos de inventario sobre PostgreSQL.
type InventorySnapshotRepo struct {
	q Querier
}

// NewInventorySnapshotRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInventorySnapshotRepository(q Querier) *InventorySnapshotRepo {
	return &InventorySnapshotRepo{q: q}
}

const snapshotColumns = `id, venue_id, category, count_date, ending_quantity, unit_cost, created_at`

func (r *InventorySnapshotRepo) ListOnDate(ctx context.Context, venueID int64, categories []string, date time.Time) ([]entity.InventorySnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM inventory_snapshots
		WHERE venue_id = $1 AND category = ANY($2) AND count_date = $3
		ORDER BY category`
	return r.list(ctx, query, venueID, categories, date)
}

func (r *InventorySnapshotRepo) ListForward(ctx context.Context, venueID int64, categories []string, from time.Time, horizonDays int) ([]entity.InventorySnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM inventory_snapshots
		WHERE venue_id = $1 AND category = ANY($2)
		  AND count_date BETWEEN $3::date AND $3::date + $4::int
		ORDER BY count_date, category`
	return r.list(ctx, query, venueID, categories, from, horizonDays)
}

func (r *InventorySnapshotRepo) Create(ctx context.Context, s *entity.InventorySnapshot) error {
	query := `
		INSERT INTO inventory_snapshots (id, venue_id, category, count_date, ending_quantity, unit_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.VenueID, s.Category, s.CountDate, s.EndingQuantity, s.UnitCost, s.CreatedAt,
	)
	return mapError("create inventory snapshot", err)
}

func (r *InventorySnapshotRepo) list(ctx context.Context, query string, args ...any) ([]entity.InventorySnapshot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory snapshots: %w", err)
	}
	defer rows.Close()
	var list []entity.InventorySnapshot
	for rows.Next() {
		var s entity.InventorySnapshot
		if err := rows.Scan(&s.ID, &s.VenueID, &s.Category, &s.CountDate, &s.EndingQuantity, &s.UnitCost, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory snapshot: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
