package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/profile"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	query := `
		SELECT user_id, name, nip, street, city, postal_code, country, email, bank_account, bank_name, created_at, updated_at
		FROM profiles
		WHERE user_id = $1`

	var p profile.Profile

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.Name, &p.NIP, &p.Street, &p.City, &p.PostalCode, &p.Country,
		&p.Email, &p.BankAccount, &p.BankName, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}

	return &p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p *profile.Profile) error {
	query := `
		INSERT INTO profiles (user_id, name, nip, street, city, postal_code, country, email, bank_account, bank_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			nip = EXCLUDED.nip,
			street = EXCLUDED.street,
			city = EXCLUDED.city,
			postal_code = EXCLUDED.postal_code,
			country = EXCLUDED.country,
			email = EXCLUDED.email,
			bank_account = EXCLUDED.bank_account,
			bank_name = EXCLUDED.bank_name,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.UserID, p.Name, p.NIP, p.Street, p.City, p.PostalCode, p.Country,
		p.Email, p.BankAccount, p.BankName,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}

	return nil
}
