package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/cmv-api/internal/domain"
	"github.com/jhoicas/cmv-api/internal/domain/entity"
	"github.com/jhoicas/cmv-api/internal/domain/repository"
)

var (
	_ repository.SalesLedgerRepository    = (*SalesLedgerRepo)(nil)
	_ repository.PurchaseLedgerRepository = (*PurchaseLedgerRepo)(nil)
)

// SalesLedgerRepo lectura del libro de ventas sincronizado desde el POS.
type SalesLedgerRepo struct {
	q Querier
}

// NewSalesLedgerRepository construye el adaptador. Acepta pool o tx (Querier).
func NewSalesLedgerRepository(q Querier) *SalesLedgerRepo {
	return &SalesLedgerRepo{q: q}
}

func (r *SalesLedgerRepo) List(ctx context.Context, venueID int64, start, end time.Time) ([]entity.SalesLedgerEntry, error) {
	query := `
		SELECT venue_id, sale_date, gross_amount, repique_amount
		FROM sales_ledger
		WHERE venue_id = $1 AND sale_date BETWEEN $2 AND $3
		ORDER BY sale_date`
	rows, err := r.q.Query(ctx, query, venueID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list sales ledger: %w", err)
	}
	defer rows.Close()
	var list []entity.SalesLedgerEntry
	for rows.Next() {
		var e entity.SalesLedgerEntry
		if err := rows.Scan(&e.VenueID, &e.Date, &e.GrossAmount, &e.RepiqueAmount); err != nil {
			return nil, fmt.Errorf("scan sales ledger: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// PurchaseLedgerRepo lectura del libro de compras (asientos del ERP financiero).
type PurchaseLedgerRepo struct {
	q Querier
}

// NewPurchaseLedgerRepository construye el adaptador. Acepta pool o tx (Querier).
func NewPurchaseLedgerRepository(q Querier) *PurchaseLedgerRepo {
	return &PurchaseLedgerRepo{q: q}
}

// purchaseDateColumns columna de fecha por campo; whitelist para el SQL dinámico.
var purchaseDateColumns = map[string]string{
	entity.PurchaseDateCreation:   "created_date",
	entity.PurchaseDateCompetency: "competency_date",
}

func (r *PurchaseLedgerRepo) List(ctx context.Context, venueID int64, start, end time.Time, dateField string) ([]entity.PurchaseLedgerEntry, error) {
	col, ok := purchaseDateColumns[dateField]
	if !ok {
		return nil, fmt.Errorf("campo de fecha %q: %w", dateField, domain.ErrInvalidInput)
	}
	query := fmt.Sprintf(`
		SELECT venue_id, %[1]s, category_name, amount
		FROM purchase_ledger
		WHERE venue_id = $1 AND %[1]s BETWEEN $2 AND $3
		ORDER BY %[1]s, id`, col)
	rows, err := r.q.Query(ctx, query, venueID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list purchase ledger: %w", err)
	}
	defer rows.Close()
	var list []entity.PurchaseLedgerEntry
	for rows.Next() {
		var e entity.PurchaseLedgerEntry
		if err := rows.Scan(&e.VenueID, &e.Date, &e.CategoryName, &e.Amount); err != nil {
			return nil, fmt.Errorf("scan purchase ledger: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
