package cmv

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
	"github.com/jhoicas/cmv-api/pkg/logger"
)

const auditTimeout = 3 * time.Second

// Auditor envía entradas al AuditRepository sin bloquear la operación principal:
// los fallos se registran en el log y se descartan.
type Auditor struct {
	repo repository.AuditRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewAuditor construye el auditor. repo nil desactiva la auditoría.
func NewAuditor(repo repository.AuditRepository, log *logger.Logger) *Auditor {
	if log == nil {
		log = logger.Nop()
	}
	return &Auditor{repo: repo, log: log, now: time.Now}
}

// Record persiste la entrada; nunca devuelve error.
func (a *Auditor) Record(ctx context.Context, entry entity.AuditEntry) {
	if a == nil || a.repo == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = a.now()
	}
	if entry.Severity == "" {
		entry.Severity = entity.AuditSeverityInfo
	}

	// La auditoría sobrevive a la cancelación de la petición pero con tiempo acotado.
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := a.repo.Create(actx, &entry); err != nil {
		a.log.Warn().Err(err).
			Str("operation", entry.Operation).
			Str("table", entry.Table).
			Str("record_id", entry.RecordID).
			Msg("auditoría descartada")
	}
}
