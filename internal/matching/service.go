// Package matching learns how a user prefers raw work descriptions to read
// on invoices.
package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
)

type Mapping struct {
	ID                   uuid.UUID `json:"id"`
	RawPattern           string    `json:"raw_pattern"`
	PreferredDescription string    `json:"preferred_description"`
	CreatedAt            time.Time `json:"created_at"`
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	FindMatch(ctx context.Context, userID uuid.UUID, rawDescription string) (string, error)
	ListMappings(ctx context.Context, userID uuid.UUID) ([]Mapping, error)
	UpsertMapping(ctx context.Context, userID uuid.UUID, rawPattern, preferredDescription string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest tries to find a preferred description for the given raw description.
// Returns empty string if no match found.
func (s *Service) Suggest(ctx context.Context, userID uuid.UUID, rawDescription string) (string, error) {
	return s.repo.FindMatch(ctx, userID, rawDescription)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Mapping, error) {
	return s.repo.ListMappings(ctx, userID)
}

// Learn remembers a new mapping between a raw pattern and a preferred description.
func (s *Service) Learn(ctx context.Context, userID uuid.UUID, rawPattern, preferredDescription string) error {
	rawPattern = strings.TrimSpace(rawPattern)
	preferredDescription = strings.TrimSpace(preferredDescription)

	if rawPattern == "" {
		return apperror.Field("raw_pattern", "required")
	}

	if preferredDescription == "" {
		return apperror.Field("preferred_description", "required")
	}

	return s.repo.UpsertMapping(ctx, userID, rawPattern, preferredDescription)
}

// Matcher loads the user's mappings once for rewriting many descriptions.
func (s *Service) Matcher(ctx context.Context, userID uuid.UUID) (*Matcher, error) {
	mappings, err := s.repo.ListMappings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading mappings: %w", err)
	}

	return NewMatcher(mappings), nil
}

// Matcher applies mappings with the same precedence as FindMatch: the longest
// pattern contained in the description wins, case-insensitively.
type Matcher struct {
	mappings []Mapping
}

func NewMatcher(mappings []Mapping) *Matcher {
	sorted := make([]Mapping, len(mappings))
	copy(sorted, mappings)

	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].RawPattern) != len(sorted[j].RawPattern) {
			return len(sorted[i].RawPattern) > len(sorted[j].RawPattern)
		}

		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	return &Matcher{mappings: sorted}
}

// Apply returns the preferred description for raw, or raw trimmed when nothing matches.
func (m *Matcher) Apply(raw string) string {
	lower := strings.ToLower(raw)

	for _, mp := range m.mappings {
		if strings.Contains(lower, strings.ToLower(mp.RawPattern)) {
			return mp.PreferredDescription
		}
	}

	return strings.TrimSpace(raw)
}
