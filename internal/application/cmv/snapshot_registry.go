package cmv

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/cmv"
	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
)

const inventorySnapshotTable = "inventory_snapshots"

// SnapshotRegistry registra conteos físicos. Un conteo nunca se edita:
// la corrección es un conteo nuevo en otra fecha.
type SnapshotRegistry struct {
	repo  repository.InventorySnapshotRepository
	audit *Auditor
	now   func() time.Time
}

// NewSnapshotRegistry construye el caso de uso.
func NewSnapshotRegistry(repo repository.InventorySnapshotRepository, audit *Auditor) *SnapshotRegistry {
	return &SnapshotRegistry{repo: repo, audit: audit, now: time.Now}
}

// Register valida y persiste el conteo. domain.ErrDuplicate si ya existe
// un conteo para (local, categoría, fecha).
func (r *SnapshotRegistry) Register(ctx context.Context, s *entity.InventorySnapshot, actor string) error {
	if s.VenueID <= 0 {
		return fmt.Errorf("venue_id requerido: %w", domain.ErrInvalidInput)
	}
	if !entity.ValidStockCategory(s.Category) {
		return fmt.Errorf("categoría %q: %w", s.Category, domain.ErrInvalidInput)
	}
	if s.EndingQuantity.IsNegative() || s.UnitCost.IsNegative() {
		return fmt.Errorf("cantidad y costo no pueden ser negativos: %w", domain.ErrInvalidInput)
	}
	if s.CountDate.IsZero() {
		return fmt.Errorf("count_date requerido: %w", domain.ErrInvalidInput)
	}
	s.CountDate = cmv.DateOnly(s.CountDate)
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now()
	}
	if err := r.repo.Create(ctx, s); err != nil {
		return err
	}
	r.audit.Record(ctx, entity.AuditEntry{
		Operation: entity.AuditOpInsert,
		Table:     inventorySnapshotTable,
		RecordID:  s.ID,
		NewValues: s,
		Category:  entity.AuditCategoryInventory,
		ChangedBy: actor,
	})
	return nil
}
