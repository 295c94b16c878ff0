package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/currency"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetRate(ctx context.Context, cur currency.Code, date time.Time) (decimal.Decimal, error) {
	query := `SELECT rate FROM exchange_rates WHERE currency = $1 AND date = $2`

	var rate decimal.Decimal

	err := s.db.QueryRowContext(ctx, query, cur, date).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, apperror.ErrNotFound
	}

	if err != nil {
		return decimal.Zero, fmt.Errorf("getting exchange rate: %w", err)
	}

	return rate, nil
}

// InsertRate keeps the first stored rate for a (currency, date) pair.
func (s *Store) InsertRate(ctx context.Context, cur currency.Code, date time.Time, rate decimal.Decimal) error {
	query := `
		INSERT INTO exchange_rates (currency, date, rate, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (currency, date) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query, cur, date, rate); err != nil {
		return fmt.Errorf("inserting exchange rate: %w", err)
	}

	return nil
}
