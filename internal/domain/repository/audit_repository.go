package repository

import (
	"context"

	"github.com/jhoicas/cmv-api/internal/domain/entity"
)

// AuditRepository destino de los snapshots antes/después de cada mutación.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
}
