package entity

import "time"

// Severidades y categorías de auditoría.
const (
	AuditSeverityInfo    = "info"
	AuditSeverityWarning = "warning"

	AuditCategoryCmv        = "cmv"
	AuditCategoryDataHealth = "data_health"
	AuditCategoryInventory  = "inventory"
)

// Operaciones auditadas.
const (
	AuditOpInsert = "INSERT"
	AuditOpUpdate = "UPDATE"
	AuditOpAlert  = "ALERT"
)

// AuditEntry snapshot antes/después de una mutación, para revisión de cumplimiento.
type AuditEntry struct {
	ID         string
	Operation  string
	Table      string
	RecordID   string
	OldValues  any
	NewValues  any
	Severity   string
	Category   string
	ChangedBy  string
	OccurredAt time.Time
}
