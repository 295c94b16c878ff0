package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/client"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/matching"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=importer
type ClientSource interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*client.Client, error)
}

type MatcherSource interface {
	Matcher(ctx context.Context, userID uuid.UUID) (*matching.Matcher, error)
}

type Service struct {
	clients  ClientSource
	matchers MatcherSource
}

func NewService(clients ClientSource, matchers MatcherSource) *Service {
	return &Service{clients: clients, matchers: matchers}
}

// Options says whom the imported work is billed to. Rate and currency fall
// back to the client's defaults.
type Options struct {
	ClientID uuid.UUID
	Rate     *decimal.Decimal
	Currency currency.Code
}

// Params parses r and turns every row into time entry params for the client.
// Descriptions are normalized with the user's mappings; the original text is
// kept as the raw description for duplicate detection.
func (s *Service) Params(ctx context.Context, userID uuid.UUID, parser Parser, r io.Reader, opts Options) ([]timeentry.CreateParams, error) {
	c, err := s.clients.Get(ctx, userID, opts.ClientID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.Field("client_id", "unknown client")
		}

		return nil, fmt.Errorf("getting client: %w", err)
	}

	rate := c.DefaultRate
	if opts.Rate != nil {
		rate = opts.Rate
	}

	if rate == nil {
		return nil, apperror.Field("rate", "required when the client has no default rate")
	}

	cur := c.Currency
	if opts.Currency != "" {
		cur = opts.Currency
	}

	rows, err := parser.Parse(r)
	if err != nil {
		return nil, err
	}

	m, err := s.matchers.Matcher(ctx, userID)
	if err != nil {
		return nil, err
	}

	params := make([]timeentry.CreateParams, 0, len(rows))
	for _, row := range rows {
		raw := strings.TrimSpace(row.Description)

		params = append(params, timeentry.CreateParams{
			ClientID:       c.ID,
			Date:           row.Date,
			Description:    m.Apply(raw),
			RawDescription: raw,
			Hours:          row.Hours,
			Rate:           *rate,
			Currency:       cur,
			Note:           row.Note,
		})
	}

	return params, nil
}
