package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectEntryColumns = `
	id, user_id, client_id, date, description, raw_description, hours, rate, currency, note,
	invoice_id, invoice_item_id, created_at, updated_at
`

func scanEntry(s scanner) (*timeentry.Entry, error) {
	var (
		e   timeentry.Entry
		cur string
	)

	if err := s.Scan(
		&e.ID, &e.UserID, &e.ClientID, &e.Date, &e.Description, &e.RawDescription,
		&e.Hours, &e.Rate, &cur, &e.Note,
		&e.InvoiceID, &e.InvoiceItemID, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.Currency = currency.Code(cur)

	return &e, nil
}

const insertEntry = `
	INSERT INTO time_entries (user_id, client_id, date, description, raw_description, hours, rate, currency, note, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	RETURNING id, created_at, updated_at
`

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func createEntry(ctx context.Context, q queryRower, e *timeentry.Entry) error {
	err := q.QueryRowContext(ctx, insertEntry,
		e.UserID, e.ClientID, e.Date, e.Description, e.RawDescription,
		e.Hours, e.Rate, e.Currency, e.Note,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating entry: %w", err)
	}

	return nil
}

func (s *Store) CreateEntry(ctx context.Context, e *timeentry.Entry) error {
	return createEntry(ctx, s.db, e)
}

func (s *Store) GetEntry(ctx context.Context, userID, id uuid.UUID) (*timeentry.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM time_entries
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrNotFound
		}

		return nil, fmt.Errorf("getting entry: %w", err)
	}

	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, userID uuid.UUID, filter timeentry.ListFilter) ([]*timeentry.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM time_entries
		WHERE user_id = $1 AND deleted_at IS NULL`

	args := []any{userID}

	argIdx := 2

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Invoiced != nil {
		if *filter.Invoiced {
			query += " AND invoice_id IS NOT NULL"
		} else {
			query += " AND invoice_id IS NULL"
		}
	}

	if filter.IDs != nil {
		ids := make([]string, len(filter.IDs))
		for i, id := range filter.IDs {
			ids[i] = id.String()
		}

		query += fmt.Sprintf(" AND id = ANY($%d::uuid[])", argIdx)

		args = append(args, ids)
	}

	query += " ORDER BY date ASC, created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []*timeentry.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}

func (s *Store) UpdateEntry(ctx context.Context, e *timeentry.Entry) error {
	query := `
		UPDATE time_entries
		SET client_id = $1, date = $2, description = $3, hours = $4, rate = $5, currency = $6, note = $7, updated_at = NOW()
		WHERE id = $8 AND user_id = $9 AND invoice_id IS NULL AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		e.ClientID, e.Date, e.Description, e.Hours, e.Rate, e.Currency, e.Note,
		e.ID, e.UserID,
	).Scan(&e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}

	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		UPDATE time_entries
		SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND invoice_id IS NULL AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.ErrNotFound
	}

	return nil
}

func (s *Store) CountEntries(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM time_entries WHERE user_id = $1 AND deleted_at IS NULL`

	var n int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}

	return n, nil
}

func importLockKey(userID uuid.UUID, minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write(userID[:])
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type importTx struct {
	tx     *sql.Tx
	userID uuid.UUID
}

// BeginImport serializes concurrent imports of the same user and date range.
func (s *Store) BeginImport(ctx context.Context, userID uuid.UUID, minDate, maxDate time.Time) (timeentry.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(userID, minDate, maxDate)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx, userID: userID}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, params []timeentry.CreateParams) ([]*timeentry.Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		ClientID       uuid.UUID
		Date           string
		Hours          string
		RawDescription string
	}

	minDate := params[0].Date
	maxDate := params[0].Date
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}

		keySet[lookupKey{
			ClientID:       p.ClientID,
			Date:           p.Date.Format(time.DateOnly),
			Hours:          p.Hours.String(),
			RawDescription: p.RawDescription,
		}] = struct{}{}
	}

	query := `SELECT ` + selectEntryColumns + `
		FROM time_entries
		WHERE user_id = $1 AND deleted_at IS NULL AND date >= $2 AND date <= $3
		ORDER BY date ASC`

	rows, err := itx.tx.QueryContext(ctx, query, itx.userID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*timeentry.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		k := lookupKey{
			ClientID:       e.ClientID,
			Date:           e.Date.Format(time.DateOnly),
			Hours:          e.Hours.String(),
			RawDescription: e.RawDescription,
		}

		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateEntries(ctx context.Context, entries []*timeentry.Entry) error {
	for _, e := range entries {
		if err := createEntry(ctx, itx.tx, e); err != nil {
			return err
		}
	}

	return nil
}
