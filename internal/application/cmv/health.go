package cmv

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
	"github.com/jhoicas/cmv-api/pkg/logger"
)

var hundred = decimal.NewFromInt(100)

// AuditHealthReporter reporta anomalías como alertas de auditoría (categoría data_health).
type AuditHealthReporter struct {
	audit *Auditor
	log   *logger.Logger
}

// NewAuditHealthReporter construye el reporter.
func NewAuditHealthReporter(audit *Auditor, log *logger.Logger) *AuditHealthReporter {
	if log == nil {
		log = logger.Nop()
	}
	return &AuditHealthReporter{audit: audit, log: log}
}

// Report registra el registro anómalo en el log y en la auditoría.
func (h *AuditHealthReporter) Report(ctx context.Context, rec *entity.WeeklyCmvRecord, actor string) {
	h.log.Warn().
		Int64("venue_id", rec.VenueID).
		Int("year", rec.Year).
		Int("week", rec.Week).
		Str("cmv_percent", rec.CmvPercent.String()).
		Bool("anomalous", rec.Anomalous).
		Strs("missing_data", rec.MissingData).
		Msg("registro semanal con problemas de calidad de datos")

	h.audit.Record(ctx, entity.AuditEntry{
		Operation: entity.AuditOpAlert,
		Table:     weeklyCmvTable,
		RecordID:  rec.ID,
		NewValues: map[string]any{
			"venue_id":     rec.VenueID,
			"year":         rec.Year,
			"week":         rec.Week,
			"cmv_percent":  rec.CmvPercent,
			"anomalous":    rec.Anomalous,
			"missing_data": rec.MissingData,
		},
		Severity:  entity.AuditSeverityWarning,
		Category:  entity.AuditCategoryDataHealth,
		ChangedBy: actor,
	})
}

// HealthIssue semana con problemas.
type HealthIssue struct {
	Year       int             `json:"year"`
	Week       int             `json:"week"`
	Status     string          `json:"status"`
	CmvPercent decimal.Decimal `json:"cmv_percent"`
	Anomalous  bool            `json:"anomalous"`
	Missing    []string        `json:"missing_data,omitempty"`
}

// HealthReport puntuación de salud de datos de un local.
type HealthReport struct {
	VenueID         int64           `json:"venue_id"`
	Total           int             `json:"total"`
	Anomalous       int             `json:"anomalous"`
	WithMissingData int             `json:"with_missing_data"`
	Score           decimal.Decimal `json:"score"` // 0-100: % de semanas sin problemas
	Issues          []HealthIssue   `json:"issues"`
}

// HealthScorer calcula la salud de datos sobre los registros persistidos.
type HealthScorer struct {
	repo repository.WeeklyCmvRepository
}

// NewHealthScorer construye el caso de uso.
func NewHealthScorer(repo repository.WeeklyCmvRepository) *HealthScorer {
	return &HealthScorer{repo: repo}
}

// Score devuelve 100 si no hay registros.
func (h *HealthScorer) Score(ctx context.Context, venueID int64, filter repository.WeeklyCmvFilter) (*HealthReport, error) {
	records, err := h.repo.ListByVenue(ctx, venueID, filter)
	if err != nil {
		return nil, err
	}
	rep := &HealthReport{VenueID: venueID, Total: len(records), Issues: []HealthIssue{}}
	for _, rec := range records {
		if rec.Anomalous {
			rep.Anomalous++
		}
		if len(rec.MissingData) > 0 {
			rep.WithMissingData++
		}
		if rec.Anomalous || len(rec.MissingData) > 0 {
			rep.Issues = append(rep.Issues, HealthIssue{
				Year:       rec.Year,
				Week:       rec.Week,
				Status:     rec.Status,
				CmvPercent: rec.CmvPercent,
				Anomalous:  rec.Anomalous,
				Missing:    rec.MissingData,
			})
		}
	}
	if rep.Total == 0 {
		rep.Score = hundred
		return rep, nil
	}
	healthy := decimal.NewFromInt(int64(rep.Total - len(rep.Issues)))
	rep.Score = healthy.Div(decimal.NewFromInt(int64(rep.Total))).Mul(hundred).Round(2)
	return rep, nil
}
