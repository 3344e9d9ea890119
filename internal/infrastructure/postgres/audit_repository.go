package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo bitácora de cambios (audit_logs) con snapshots JSONB antes/después.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Acepta pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	oldJSON, err := toJSONB(e.OldValues)
	if err != nil {
		return fmt.Errorf("marshal old_values: %w", err)
	}
	newJSON, err := toJSONB(e.NewValues)
	if err != nil {
		return fmt.Errorf("marshal new_values: %w", err)
	}
	query := `
		INSERT INTO audit_logs (id, operation, table_name, record_id, old_values, new_values,
		                        severity, category, changed_by, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)`
	_, err = r.q.Exec(ctx, query,
		e.ID, e.Operation, e.Table, e.RecordID, oldJSON, newJSON,
		e.Severity, e.Category, e.ChangedBy, e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// toJSONB nil → NULL.
func toJSONB(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
