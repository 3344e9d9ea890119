package cmv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
	"github.com/jhoicas/cmv-api/pkg/logger"
)

func TestHealthScorer_SinRegistros(t *testing.T) {
	rep, err := NewHealthScorer(newFakeWeekly()).Score(context.Background(), 1, repository.WeeklyCmvFilter{})
	require.NoError(t, err)
	assert.True(t, rep.Score.Equal(dec("100")))
	assert.Empty(t, rep.Issues)
}

func TestHealthScorer_Puntuacion(t *testing.T) {
	repo := newFakeWeekly()
	for w := 1; w <= 4; w++ {
		repo.put(draftRecord(1, 2024, w))
	}
	anomalous := draftRecord(1, 2024, 2)
	anomalous.Anomalous = true
	repo.put(anomalous)
	missing := draftRecord(1, 2024, 3)
	missing.MissingData = []string{entity.MissingStockFinalDrinks}
	repo.put(missing)
	repo.put(draftRecord(1, 2023, 52)) // fuera del filtro

	rep, err := NewHealthScorer(repo).Score(context.Background(), 1, repository.WeeklyCmvFilter{YearFrom: 2024})
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Total)
	assert.Equal(t, 1, rep.Anomalous)
	assert.Equal(t, 1, rep.WithMissingData)
	assert.True(t, rep.Score.Equal(dec("50")))
	require.Len(t, rep.Issues, 2)
	assert.Equal(t, 2, rep.Issues[0].Week)
}

func TestAuditHealthReporter_Alerta(t *testing.T) {
	audit := &fakeAudit{}
	h := NewAuditHealthReporter(NewAuditor(audit, logger.Nop()), logger.Nop())

	rec := draftRecord(1, 2024, 10)
	rec.ID = "rec-10"
	rec.Anomalous = true
	h.Report(context.Background(), rec, "user-1")

	alerts := audit.byOperation(entity.AuditOpAlert)
	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AuditSeverityWarning, alerts[0].Severity)
	assert.Equal(t, entity.AuditCategoryDataHealth, alerts[0].Category)
	assert.Equal(t, "rec-10", alerts[0].RecordID)
	assert.NotEmpty(t, alerts[0].ID)
	assert.False(t, alerts[0].OccurredAt.IsZero())
}

func TestAuditor_RepoNilNoHaceNada(t *testing.T) {
	NewAuditor(nil, nil).Record(context.Background(), entity.AuditEntry{Operation: entity.AuditOpInsert})
	var a *Auditor
	a.Record(context.Background(), entity.AuditEntry{})
}
