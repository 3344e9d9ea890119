package cmv

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
)

// ── fakes en memoria ─────────────────────────────────────────────────────────

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeSnapshots struct {
	mu   sync.Mutex
	rows []entity.InventorySnapshot
}

var _ repository.InventorySnapshotRepository = (*fakeSnapshots)(nil)

// add registra un conteo con cantidad 1 para que la valoración sea igual al costo.
func (f *fakeSnapshots) add(venueID int64, category, date, value string) {
	f.rows = append(f.rows, entity.InventorySnapshot{
		VenueID:        venueID,
		Category:       category,
		CountDate:      day(date),
		EndingQuantity: decimal.NewFromInt(1),
		UnitCost:       dec(value),
	})
}

func (f *fakeSnapshots) ListOnDate(_ context.Context, venueID int64, categories []string, date time.Time) ([]entity.InventorySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.InventorySnapshot
	for _, s := range f.rows {
		if s.VenueID == venueID && contains(categories, s.Category) && s.CountDate.Equal(date) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSnapshots) ListForward(_ context.Context, venueID int64, categories []string, from time.Time, horizonDays int) ([]entity.InventorySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	limit := from.AddDate(0, 0, horizonDays)
	var out []entity.InventorySnapshot
	for _, s := range f.rows {
		if s.VenueID != venueID || !contains(categories, s.Category) {
			continue
		}
		if s.CountDate.Before(from) || s.CountDate.After(limit) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CountDate.Before(out[j].CountDate) })
	return out, nil
}

func (f *fakeSnapshots) Create(_ context.Context, s *entity.InventorySnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.VenueID == s.VenueID && r.Category == s.Category && r.CountDate.Equal(s.CountDate) {
			return domain.ErrDuplicate
		}
	}
	f.rows = append(f.rows, *s)
	return nil
}

type fakeSales struct {
	rows []entity.SalesLedgerEntry
	err  error
}

func (f *fakeSales) List(_ context.Context, venueID int64, start, end time.Time) ([]entity.SalesLedgerEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []entity.SalesLedgerEntry
	for _, r := range f.rows {
		if r.VenueID == venueID && !r.Date.Before(start) && !r.Date.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakePurchases struct {
	rows       []entity.PurchaseLedgerEntry
	lastField  string
	err        error
	errOnStart map[time.Time]error
}

func (f *fakePurchases) List(_ context.Context, venueID int64, start, end time.Time, dateField string) ([]entity.PurchaseLedgerEntry, error) {
	f.lastField = dateField
	if f.err != nil {
		return nil, f.err
	}
	if err, ok := f.errOnStart[start]; ok {
		return nil, err
	}
	var out []entity.PurchaseLedgerEntry
	for _, r := range f.rows {
		if r.VenueID == venueID && !r.Date.Before(start) && !r.Date.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeVenues struct {
	settings map[int64]*entity.VenueSettings
}

func (f *fakeVenues) GetSettings(_ context.Context, venueID int64) (*entity.VenueSettings, error) {
	s, ok := f.settings[venueID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeVenues) ListIDs(context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(f.settings))
	for id := range f.settings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type fakeWeekly struct {
	mu      sync.Mutex
	records map[entity.WeekKey]*entity.WeeklyCmvRecord
	upserts int
	seq     int
	failOn  map[entity.WeekKey]error
	panicOn map[entity.WeekKey]bool
}

var _ repository.WeeklyCmvRepository = (*fakeWeekly)(nil)

func newFakeWeekly() *fakeWeekly {
	return &fakeWeekly{
		records: make(map[entity.WeekKey]*entity.WeeklyCmvRecord),
		failOn:  make(map[entity.WeekKey]error),
		panicOn: make(map[entity.WeekKey]bool),
	}
}

func (f *fakeWeekly) put(rec *entity.WeeklyCmvRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.ID == "" {
		f.seq++
		rec.ID = fmt.Sprintf("rec-%d", f.seq)
	}
	f.records[rec.Key()] = rec.Clone()
}

func (f *fakeWeekly) Get(_ context.Context, key entity.WeekKey) (*entity.WeeklyCmvRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec.Clone(), nil
}

func (f *fakeWeekly) Upsert(_ context.Context, rec *entity.WeeklyCmvRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := rec.Key()
	if f.panicOn[key] {
		panic("fallo inesperado del driver")
	}
	if err := f.failOn[key]; err != nil {
		return err
	}
	if rec.ID == "" {
		f.seq++
		rec.ID = fmt.Sprintf("rec-%d", f.seq)
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = time.Now()
	f.upserts++
	f.records[key] = rec.Clone()
	return nil
}

func (f *fakeWeekly) ListByVenue(_ context.Context, venueID int64, filter repository.WeeklyCmvFilter) ([]*entity.WeeklyCmvRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.WeeklyCmvRecord
	for _, rec := range f.records {
		if rec.VenueID != venueID {
			continue
		}
		if filter.YearFrom != 0 && rec.Year < filter.YearFrom {
			continue
		}
		if filter.YearTo != 0 && rec.Year > filter.YearTo {
			continue
		}
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Week < out[j].Week
	})
	return out, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []entity.AuditEntry
	err     error
}

func (f *fakeAudit) Create(_ context.Context, e *entity.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeAudit) byOperation(op string) []entity.AuditEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.AuditEntry
	for _, e := range f.entries {
		if e.Operation == op {
			out = append(out, e)
		}
	}
	return out
}

type fakeHealth struct {
	mu      sync.Mutex
	reports []entity.WeekKey
}

func (f *fakeHealth) Report(_ context.Context, rec *entity.WeeklyCmvRecord, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, rec.Key())
}

type fakeLocker struct {
	mu     sync.Mutex
	held   map[int64]bool
	denied map[int64]bool
}

func (f *fakeLocker) Lock(_ context.Context, venueID int64) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denied[venueID] || f.held[venueID] {
		return nil, domain.ErrLockNotObtained
	}
	if f.held == nil {
		f.held = make(map[int64]bool)
	}
	f.held[venueID] = true
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.held, venueID)
	}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// draftRecord registro borrador con entradas ya almacenadas (sin derivados).
func draftRecord(venueID int64, year, week int) *entity.WeeklyCmvRecord {
	return &entity.WeeklyCmvRecord{
		VenueID:           venueID,
		Year:              year,
		Week:              week,
		Status:            entity.CmvStatusDraft,
		GrossSales:        dec("10000"),
		RepiqueDeduction:  dec("500"),
		PurchasesFood:     dec("3000"),
		StockInitialTotal: dec("999"), // derivado obsoleto
	}
}
