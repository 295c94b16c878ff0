package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/dashboard"
	"github.com/MrJamesThe3rd/billable/internal/invoice"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
)

func entry(h, rate string, cur currency.Code) *timeentry.Entry {
	return &timeentry.Entry{
		Hours:    decimal.RequireFromString(h),
		Rate:     decimal.RequireFromString(rate),
		Currency: cur,
	}
}

func TestService_Summary(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	notInvoiced := false

	tests := []struct {
		name         string
		count        int
		wantUnlocked bool
	}{
		{name: "BelowThreshold", count: 19},
		{name: "AtThreshold", count: 20, wantUnlocked: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			entries := dashboard.NewMockEntrySource(ctrl)
			invoices := dashboard.NewMockInvoiceTotals(ctrl)

			entries.EXPECT().
				List(gomock.Any(), userID, timeentry.ListFilter{StartDate: &start, EndDate: &today}).
				Return([]*timeentry.Entry{entry("1.5", "100", currency.PLN), entry("0.25", "40", currency.EUR)}, nil)
			entries.EXPECT().
				List(gomock.Any(), userID, timeentry.ListFilter{Invoiced: &notInvoiced}).
				Return([]*timeentry.Entry{
					entry("2", "100", currency.PLN),
					entry("1", "40", currency.EUR),
					entry("0.5", "100", currency.PLN),
				}, nil)
			entries.EXPECT().Count(gomock.Any(), userID).Return(tt.count, nil)
			invoices.EXPECT().
				Totals(gomock.Any(), userID, invoice.ListFilter{StartDate: &start, EndDate: &today}).
				Return(invoice.Totals{Count: 2}, nil)

			svc := dashboard.NewService(entries, invoices, 20)
			svc.SetNow(func() time.Time { return now })

			got, err := svc.Summary(context.Background(), userID)
			require.NoError(t, err)

			assert.Equal(t, start, got.MonthStart)
			assert.True(t, decimal.RequireFromString("1.75").Equal(got.MonthHours))
			assert.Equal(t, "1h 45m", got.MonthHoursLabel)

			require.Len(t, got.Unbilled, 2)
			assert.Equal(t, currency.EUR, got.Unbilled[0].Currency)
			assert.True(t, decimal.NewFromInt(40).Equal(got.Unbilled[0].Value))
			assert.Equal(t, currency.PLN, got.Unbilled[1].Currency)
			assert.True(t, decimal.NewFromInt(250).Equal(got.Unbilled[1].Value))

			assert.Equal(t, 2, got.MonthInvoices.Count)
			assert.Equal(t, tt.count, got.EntryCount)
			assert.Equal(t, tt.wantUnlocked, got.InsightsUnlocked)
		})
	}
}
