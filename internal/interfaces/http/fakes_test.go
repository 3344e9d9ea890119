package http_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
)

// ── repositorios en memoria para los tests de handlers ──────────────────────

type memWeekly struct {
	mu      sync.Mutex
	records map[entity.WeekKey]*entity.WeeklyCmvRecord
}

func (m *memWeekly) Get(_ context.Context, key entity.WeekKey) (*entity.WeeklyCmvRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *memWeekly) Upsert(_ context.Context, rec *entity.WeeklyCmvRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = time.Now()
	m.records[rec.Key()] = rec.Clone()
	return nil
}

func (m *memWeekly) ListByVenue(_ context.Context, venueID int64, _ repository.WeeklyCmvFilter) ([]*entity.WeeklyCmvRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.WeeklyCmvRecord
	for _, rec := range m.records {
		if rec.VenueID == venueID {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Week < out[j].Week
	})
	return out, nil
}

type memVenues map[int64]*entity.VenueSettings

func (m memVenues) GetSettings(_ context.Context, venueID int64) (*entity.VenueSettings, error) {
	s, ok := m[venueID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m memVenues) ListIDs(context.Context) ([]int64, error) {
	var ids []int64
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type memSales struct{}

func (memSales) List(context.Context, int64, time.Time, time.Time) ([]entity.SalesLedgerEntry, error) {
	return nil, nil
}

type memPurchases struct{}

func (memPurchases) List(context.Context, int64, time.Time, time.Time, string) ([]entity.PurchaseLedgerEntry, error) {
	return nil, nil
}

type memSnapshots struct {
	mu   sync.Mutex
	rows []entity.InventorySnapshot
}

func (m *memSnapshots) ListOnDate(_ context.Context, venueID int64, categories []string, date time.Time) ([]entity.InventorySnapshot, error) {
	return m.filter(venueID, categories, date, date), nil
}

func (m *memSnapshots) ListForward(_ context.Context, venueID int64, categories []string, from time.Time, horizonDays int) ([]entity.InventorySnapshot, error) {
	return m.filter(venueID, categories, from, from.AddDate(0, 0, horizonDays)), nil
}

func (m *memSnapshots) filter(venueID int64, categories []string, from, to time.Time) []entity.InventorySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.InventorySnapshot
	for _, s := range m.rows {
		if s.VenueID != venueID || s.CountDate.Before(from) || s.CountDate.After(to) {
			continue
		}
		for _, c := range categories {
			if c == s.Category {
				out = append(out, s)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CountDate.Before(out[j].CountDate) })
	return out
}

func (m *memSnapshots) Create(_ context.Context, s *entity.InventorySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.VenueID == s.VenueID && r.Category == s.Category && r.CountDate.Equal(s.CountDate) {
			return domain.ErrDuplicate
		}
	}
	m.rows = append(m.rows, *s)
	return nil
}
