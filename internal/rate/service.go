package rate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/currency"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=rate
type Repository interface {
	// GetRate returns apperror.ErrNotFound when no rate is stored for the pair.
	GetRate(ctx context.Context, cur currency.Code, date time.Time) (decimal.Decimal, error)
	InsertRate(ctx context.Context, cur currency.Code, date time.Time, rate decimal.Decimal) error
}

type Feed interface {
	RateOn(ctx context.Context, cur currency.Code, date time.Time) (Quote, error)
	Latest(ctx context.Context, cur currency.Code) (Quote, error)
}

type Service struct {
	repo Repository
	feed Feed
}

func NewService(repo Repository, feed Feed) *Service {
	return &Service{repo: repo, feed: feed}
}

// Resolve returns the rate for cur on date. Stored rates win and skip the feed
// entirely. When the feed has no table for date the latest published rate is
// used and stored under the requested date.
func (s *Service) Resolve(ctx context.Context, cur currency.Code, date time.Time) (*Resolution, error) {
	if !cur.IsForeign() {
		return nil, apperror.Preconditionf("no exchange rate for currency %q", cur)
	}

	date = dateOnly(date)

	stored, err := s.repo.GetRate(ctx, cur, date)
	switch {
	case err == nil:
		return &Resolution{Currency: cur, Date: date, Rate: stored, Source: SourceCache}, nil
	case !errors.Is(err, apperror.ErrNotFound):
		slog.Warn("reading stored exchange rate", "currency", cur, "date", date.Format(time.DateOnly), "error", err)
	}

	quote, err := s.fetch(ctx, cur, date)
	if err != nil {
		return nil, fmt.Errorf("resolving %s rate: %w", cur, apperror.External("nbp", err))
	}

	if err := s.repo.InsertRate(ctx, cur, date, quote.Rate); err != nil {
		slog.Warn("storing exchange rate", "currency", cur, "date", date.Format(time.DateOnly), "error", err)
	}

	return &Resolution{Currency: cur, Date: date, Rate: quote.Rate, Source: SourceAPI}, nil
}

func (s *Service) fetch(ctx context.Context, cur currency.Code, date time.Time) (Quote, error) {
	quote, err := s.feed.RateOn(ctx, cur, date)
	if err == nil {
		return quote, nil
	}

	slog.Info("no rate for exact date, falling back to latest", "currency", cur, "date", date.Format(time.DateOnly), "error", err)

	quote, latestErr := s.feed.Latest(ctx, cur)
	if latestErr != nil {
		return Quote{}, errors.Join(err, latestErr)
	}

	return quote, nil
}
