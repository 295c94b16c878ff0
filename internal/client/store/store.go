package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/client"
	"github.com/MrJamesThe3rd/billable/internal/currency"
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

const selectClientColumns = `
	id, user_id, name, nip, street, city, postal_code, country, email,
	default_rate, currency, notes, created_at, updated_at
`

func scanClient(s scanner) (*client.Client, error) {
	var (
		c    client.Client
		rate decimal.NullDecimal
		cur  string
	)

	if err := s.Scan(
		&c.ID, &c.UserID, &c.Name, &c.NIP,
		&c.Address.Street, &c.Address.City, &c.Address.PostalCode, &c.Address.Country,
		&c.Email, &rate, &cur, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if rate.Valid {
		c.DefaultRate = &rate.Decimal
	}

	c.Currency = currency.Code(cur)

	return &c, nil
}

func nullRate(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}

	return decimal.NewNullDecimal(*d)
}

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	query := `
		INSERT INTO clients (user_id, name, nip, street, city, postal_code, country, email, default_rate, currency, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.UserID, c.Name, c.NIP,
		c.Address.Street, c.Address.City, c.Address.PostalCode, c.Address.Country,
		c.Email, nullRate(c.DefaultRate), c.Currency, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	return nil
}

func (s *Store) GetClient(ctx context.Context, userID, id uuid.UUID) (*client.Client, error) {
	query := `SELECT ` + selectClientColumns + `
		FROM clients
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	c, err := scanClient(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrNotFound
		}

		return nil, fmt.Errorf("getting client: %w", err)
	}

	return c, nil
}

func (s *Store) ListClients(ctx context.Context, userID uuid.UUID) ([]*client.Client, error) {
	query := `SELECT ` + selectClientColumns + `
		FROM clients
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var clients []*client.Client

	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}

		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clients: %w", err)
	}

	return clients, nil
}

func (s *Store) UpdateClient(ctx context.Context, c *client.Client) error {
	query := `
		UPDATE clients
		SET name = $1, nip = $2, street = $3, city = $4, postal_code = $5, country = $6,
			email = $7, default_rate = $8, currency = $9, notes = $10, updated_at = NOW()
		WHERE id = $11 AND user_id = $12 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.Name, c.NIP, c.Address.Street, c.Address.City, c.Address.PostalCode, c.Address.Country,
		c.Email, nullRate(c.DefaultRate), c.Currency, c.Notes,
		c.ID, c.UserID,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("updating client: %w", err)
	}

	return nil
}

func (s *Store) DeleteClient(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		UPDATE clients
		SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}

	if n == 0 {
		return apperror.ErrNotFound
	}

	return nil
}
