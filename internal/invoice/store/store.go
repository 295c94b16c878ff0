package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/database"
	"github.com/MrJamesThe3rd/billable/internal/invoice"
	"github.com/MrJamesThe3rd/billable/internal/payterm"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const selectInvoiceColumns = `
	id, user_id, client_id, number, status, mode, issue_date, sale_date, due_date, payment_term,
	vat_rate, currency, exchange_rate, custom_exchange_rate, notes, pdf_key, created_at, updated_at
`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var (
		inv          invoice.Invoice
		status, mode string
		term, cur    string
		rate         decimal.NullDecimal
	)

	if err := s.Scan(
		&inv.ID, &inv.UserID, &inv.ClientID, &inv.Number, &status, &mode,
		&inv.IssueDate, &inv.SaleDate, &inv.DueDate, &term,
		&inv.VATRate, &cur, &rate, &inv.IsCustomExchangeRate, &inv.Notes, &inv.PDFKey,
		&inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(status)
	inv.Mode = invoice.Mode(mode)
	inv.PaymentTerm = payterm.Term(term)
	inv.Currency = currency.Code(cur)

	if rate.Valid {
		inv.ExchangeRate = &rate.Decimal
	}

	return &inv, nil
}

func nullRate(r *decimal.Decimal) decimal.NullDecimal {
	if r == nil {
		return decimal.NullDecimal{}
	}

	return decimal.NullDecimal{Decimal: *r, Valid: true}
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}

	return out
}

// numberLockKey identifies one user's numbering series for a month.
func numberLockKey(userID uuid.UUID, prefix string) int64 {
	h := fnv.New64a()
	h.Write(userID[:])
	h.Write([]byte(prefix))

	return int64(h.Sum64())
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	return database.InTx(ctx, s.db, func(tx *sql.Tx) error {
		prefix := invoice.NumberPrefix(inv.IssueDate)

		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", numberLockKey(inv.UserID, prefix)); err != nil {
			return fmt.Errorf("acquiring numbering lock: %w", err)
		}

		numbers, err := seriesNumbers(ctx, tx, inv.UserID, prefix)
		if err != nil {
			return err
		}

		inv.Number = invoice.FormatNumber(inv.IssueDate, invoice.NextSequence(inv.IssueDate, numbers))

		query := `
			INSERT INTO invoices (
				user_id, client_id, number, status, mode, issue_date, sale_date, due_date, payment_term,
				vat_rate, currency, exchange_rate, custom_exchange_rate, notes, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`

		err = tx.QueryRowContext(ctx, query,
			inv.UserID, inv.ClientID, inv.Number, inv.Status, inv.Mode,
			inv.IssueDate, inv.SaleDate, inv.DueDate, inv.PaymentTerm,
			inv.VATRate, inv.Currency, nullRate(inv.ExchangeRate), inv.IsCustomExchangeRate, inv.Notes,
		).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting invoice: %w", err)
		}

		return insertItems(ctx, tx, inv)
	})
}

func seriesNumbers(ctx context.Context, tx *sql.Tx, userID uuid.UUID, prefix string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT number FROM invoices WHERE user_id = $1 AND number LIKE $2`, userID, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("listing invoice numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string

	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning invoice number: %w", err)
		}

		numbers = append(numbers, n)
	}

	return numbers, rows.Err()
}

// insertItems writes the items of inv and links their time entries.
func insertItems(ctx context.Context, tx *sql.Tx, inv *invoice.Invoice) error {
	insert := `
		INSERT INTO invoice_items (invoice_id, position, description, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	link := `
		UPDATE time_entries
		SET invoice_id = $1, invoice_item_id = $2, updated_at = NOW()
		WHERE user_id = $3 AND id = ANY($4::uuid[]) AND invoice_id IS NULL AND deleted_at IS NULL
	`

	for i := range inv.Items {
		item := &inv.Items[i]

		err := tx.QueryRowContext(ctx, insert, inv.ID, item.Position, item.Description, item.Quantity, item.UnitPrice).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("inserting item %d: %w", item.Position, err)
		}

		if len(item.TimeEntryIDs) == 0 {
			continue
		}

		res, err := tx.ExecContext(ctx, link, inv.ID, item.ID, inv.UserID, uuidStrings(item.TimeEntryIDs))
		if err != nil {
			return fmt.Errorf("linking time entries: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("linking time entries: %w", err)
		}

		if int(n) != len(item.TimeEntryIDs) {
			return apperror.Field("time_entry_ids", "some time entries were invoiced or removed meanwhile")
		}
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE id = $1 AND user_id = $2`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	if err := loadItems(ctx, s.db, []*invoice.Invoice{inv}); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, userID uuid.UUID, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE user_id = $1`

	args := []any{userID}

	argIdx := 2

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND issue_date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND issue_date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
	}

	query += " ORDER BY issue_date DESC, number DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}

	if err := loadItems(ctx, s.db, invoices); err != nil {
		return nil, err
	}

	return invoices, nil
}

type itemRef struct {
	inv   *invoice.Invoice
	index int
}

// loadItems fills Items and their TimeEntryIDs for all invoices with two queries.
func loadItems(ctx context.Context, q querier, invoices []*invoice.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*invoice.Invoice, len(invoices))
	ids := make([]uuid.UUID, len(invoices))

	for i, inv := range invoices {
		byID[inv.ID] = inv
		ids[i] = inv.ID
	}

	items, err := loadItemRows(ctx, q, ids, byID)
	if err != nil {
		return err
	}

	return loadItemEntries(ctx, q, ids, items)
}

func loadItemRows(ctx context.Context, q querier, ids []uuid.UUID, byID map[uuid.UUID]*invoice.Invoice) (map[uuid.UUID]itemRef, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, invoice_id, position, description, quantity, unit_price
		FROM invoice_items
		WHERE invoice_id = ANY($1::uuid[])
		ORDER BY invoice_id, position`, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID]itemRef)

	for rows.Next() {
		var (
			item      invoice.LineItem
			invoiceID uuid.UUID
		)

		if err := rows.Scan(&item.ID, &invoiceID, &item.Position, &item.Description, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}

		inv, ok := byID[invoiceID]
		if !ok {
			continue
		}

		inv.Items = append(inv.Items, item)
		items[item.ID] = itemRef{inv: inv, index: len(inv.Items) - 1}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}

	return items, nil
}

func loadItemEntries(ctx context.Context, q querier, ids []uuid.UUID, items map[uuid.UUID]itemRef) error {
	rows, err := q.QueryContext(ctx, `
		SELECT id, invoice_item_id
		FROM time_entries
		WHERE invoice_id = ANY($1::uuid[]) AND invoice_item_id IS NOT NULL
		ORDER BY date ASC, created_at ASC`, uuidStrings(ids))
	if err != nil {
		return fmt.Errorf("loading item entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entryID, itemID uuid.UUID
		if err := rows.Scan(&entryID, &itemID); err != nil {
			return fmt.Errorf("scanning item entry: %w", err)
		}

		ref, ok := items[itemID]
		if !ok {
			continue
		}

		item := &ref.inv.Items[ref.index]
		item.TimeEntryIDs = append(item.TimeEntryIDs, entryID)
	}

	return rows.Err()
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	return database.InTx(ctx, s.db, func(tx *sql.Tx) error {
		query := `
			UPDATE invoices
			SET client_id = $1, mode = $2, issue_date = $3, sale_date = $4, due_date = $5, payment_term = $6,
				vat_rate = $7, currency = $8, exchange_rate = $9, custom_exchange_rate = $10, notes = $11,
				updated_at = NOW()
			WHERE id = $12 AND user_id = $13 AND status = 'draft'
			RETURNING updated_at
		`

		err := tx.QueryRowContext(ctx, query,
			inv.ClientID, inv.Mode, inv.IssueDate, inv.SaleDate, inv.DueDate, inv.PaymentTerm,
			inv.VATRate, inv.Currency, nullRate(inv.ExchangeRate), inv.IsCustomExchangeRate, inv.Notes,
			inv.ID, inv.UserID,
		).Scan(&inv.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.ErrNotFound
		}

		if err != nil {
			return fmt.Errorf("updating invoice: %w", err)
		}

		release := `UPDATE time_entries SET invoice_id = NULL, invoice_item_id = NULL, updated_at = NOW() WHERE invoice_id = $1`
		if _, err := tx.ExecContext(ctx, release, inv.ID); err != nil {
			return fmt.Errorf("releasing time entries: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, inv.ID); err != nil {
			return fmt.Errorf("deleting items: %w", err)
		}

		return insertItems(ctx, tx, inv)
	})
}

func (s *Store) exec(ctx context.Context, action, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.ErrNotFound
	}

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status invoice.Status) error {
	query := `UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`
	return s.exec(ctx, "updating invoice status", query, status, id, userID)
}

func (s *Store) SetPDFKey(ctx context.Context, userID, id uuid.UUID, key string) error {
	query := `UPDATE invoices SET pdf_key = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`
	return s.exec(ctx, "setting pdf key", query, key, id, userID)
}

// DeleteInvoice removes a draft. Foreign keys release its time entries.
func (s *Store) DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM invoices WHERE id = $1 AND user_id = $2 AND status = 'draft'`
	return s.exec(ctx, "deleting invoice", query, id, userID)
}
