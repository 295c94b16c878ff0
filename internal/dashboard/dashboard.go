// Package dashboard summarizes a user's current month at a glance.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/hours"
	"github.com/MrJamesThe3rd/billable/internal/invoice"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
)

//go:generate mockgen -source=dashboard.go -destination=dashboard_mock.go -package=dashboard
type EntrySource interface {
	List(ctx context.Context, userID uuid.UUID, filter timeentry.ListFilter) ([]*timeentry.Entry, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

type InvoiceTotals interface {
	Totals(ctx context.Context, userID uuid.UUID, filter invoice.ListFilter) (invoice.Totals, error)
}

// Amount is a sum in one currency.
type Amount struct {
	Currency currency.Code   `json:"currency"`
	Value    decimal.Decimal `json:"value"`
}

type Summary struct {
	MonthStart       time.Time       `json:"month_start"`
	MonthHours       decimal.Decimal `json:"month_hours"`
	MonthHoursLabel  string          `json:"month_hours_label"`
	Unbilled         []Amount        `json:"unbilled"`
	MonthInvoices    invoice.Totals  `json:"month_invoices"`
	EntryCount       int             `json:"entry_count"`
	InsightsUnlocked bool            `json:"insights_unlocked"`
}

type Service struct {
	entries   EntrySource
	invoices  InvoiceTotals
	threshold int
	now       func() time.Time
}

// NewService builds the dashboard. Insights unlock once a user has logged at
// least threshold time entries.
func NewService(entries EntrySource, invoices InvoiceTotals, threshold int) *Service {
	return &Service{
		entries:   entries,
		invoices:  invoices,
		threshold: threshold,
		now:       time.Now,
	}
}

func (s *Service) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	month, err := s.entries.List(ctx, userID, timeentry.ListFilter{StartDate: &start, EndDate: &today})
	if err != nil {
		return nil, fmt.Errorf("listing month entries: %w", err)
	}

	notInvoiced := false

	unbilled, err := s.entries.List(ctx, userID, timeentry.ListFilter{Invoiced: &notInvoiced})
	if err != nil {
		return nil, fmt.Errorf("listing unbilled entries: %w", err)
	}

	count, err := s.entries.Count(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("counting entries: %w", err)
	}

	totals, err := s.invoices.Totals(ctx, userID, invoice.ListFilter{StartDate: &start, EndDate: &today})
	if err != nil {
		return nil, err
	}

	monthHours := decimal.Zero
	for _, e := range month {
		monthHours = monthHours.Add(e.Hours)
	}

	return &Summary{
		MonthStart:       start,
		MonthHours:       monthHours,
		MonthHoursLabel:  hours.Format(monthHours),
		Unbilled:         sumByCurrency(unbilled),
		MonthInvoices:    totals,
		EntryCount:       count,
		InsightsUnlocked: count >= s.threshold,
	}, nil
}

func sumByCurrency(entries []*timeentry.Entry) []Amount {
	sums := make(map[currency.Code]decimal.Decimal)
	for _, e := range entries {
		sums[e.Currency] = sums[e.Currency].Add(e.Value())
	}

	out := make([]Amount, 0, len(sums))
	for cur, v := range sums {
		out = append(out, Amount{Currency: cur, Value: v})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })

	return out
}
