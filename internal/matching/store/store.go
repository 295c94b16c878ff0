package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/billable/internal/matching"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, userID uuid.UUID, rawDescription string) (string, error) {
	query := `
		SELECT preferred_description
		FROM description_mappings
		WHERE user_id = $1 AND $2 ILIKE '%' || raw_pattern || '%'
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var preferred string

	err := s.db.QueryRowContext(ctx, query, userID, rawDescription).Scan(&preferred)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding match: %w", err)
	}

	return preferred, nil
}

func (s *Store) ListMappings(ctx context.Context, userID uuid.UUID) ([]matching.Mapping, error) {
	query := `
		SELECT id, raw_pattern, preferred_description, created_at
		FROM description_mappings
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	defer rows.Close()

	var mappings []matching.Mapping

	for rows.Next() {
		var m matching.Mapping
		if err := rows.Scan(&m.ID, &m.RawPattern, &m.PreferredDescription, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}

		mappings = append(mappings, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mappings: %w", err)
	}

	return mappings, nil
}

func (s *Store) UpsertMapping(ctx context.Context, userID uuid.UUID, rawPattern, preferredDescription string) error {
	query := `
		INSERT INTO description_mappings (user_id, raw_pattern, preferred_description, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, raw_pattern) DO UPDATE SET preferred_description = EXCLUDED.preferred_description
	`

	_, err := s.db.ExecContext(ctx, query, userID, rawPattern, preferredDescription)
	if err != nil {
		return fmt.Errorf("creating mapping: %w", err)
	}

	return nil
}
