package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/billable/internal/client"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/export"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
)

var (
	userID   = uuid.New()
	clientID = uuid.New()
)

func fixtures() []*timeentry.Entry {
	invoiceID := uuid.New()

	return []*timeentry.Entry{
		{
			ID:          uuid.New(),
			ClientID:    clientID,
			Date:        time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
			Description: `Review "auth", part 1`,
			Hours:       decimal.RequireFromString("0.3333"),
			Rate:        decimal.NewFromInt(100),
			Currency:    currency.PLN,
		},
		{
			ID:          uuid.New(),
			ClientID:    clientID,
			Date:        time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
			Description: "Dev",
			Hours:       decimal.RequireFromString("2.5"),
			Rate:        decimal.NewFromInt(40),
			Currency:    currency.EUR,
			Note:        "remote",
			InvoiceID:   &invoiceID,
		},
	}
}

func newService(t *testing.T) *export.Service {
	ctrl := gomock.NewController(t)
	entries := export.NewMockEntrySource(ctrl)
	clients := export.NewMockClientSource(ctrl)

	entries.EXPECT().List(gomock.Any(), userID, gomock.Any()).Return(fixtures(), nil)
	clients.EXPECT().List(gomock.Any(), userID).Return([]*client.Client{{ID: clientID, Name: "Acme, Sp. z o.o."}}, nil)

	return export.NewService(entries, clients)
}

func TestService_WriteCSV(t *testing.T) {
	var buf bytes.Buffer

	n, err := newService(t).WriteCSV(context.Background(), &buf, userID, timeentry.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}))

	records, err := csv.NewReader(bytes.NewReader(out[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, export.Header, records[0])
	assert.Equal(t, []string{"2025-03-14", "Acme, Sp. z o.o.", `Review "auth", part 1`, "0.3333", "100.00", "PLN", "33.33", "no", ""}, records[1])
	assert.Equal(t, []string{"2025-03-15", "Acme, Sp. z o.o.", "Dev", "2.5", "40.00", "EUR", "100.00", "yes", "remote"}, records[2])

	assert.Contains(t, string(out), `"Review ""auth"", part 1"`)
}

func TestService_Export(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	path, err := newService(t).Export(context.Background(), userID, timeentry.ListFilter{StartDate: &start, EndDate: &end}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "time-entries_20250301-20250331.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "date,client,description,hours,rate,currency,value,invoiced,note")
}

func TestService_Export_RemovesPartialFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	entries := export.NewMockEntrySource(ctrl)
	clients := export.NewMockClientSource(ctrl)

	entries.EXPECT().List(gomock.Any(), userID, gomock.Any()).Return(fixtures(), nil)
	clients.EXPECT().List(gomock.Any(), userID).Return(nil, errors.New("db down"))

	dir := t.TempDir()

	path, err := export.NewService(entries, clients).Export(context.Background(), userID, timeentry.ListFilter{}, dir)
	require.Error(t, err)
	assert.Empty(t, path)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestSummary(t *testing.T) {
	got := export.Summary(fixtures(), func(uuid.UUID) string { return "Acme" })

	assert.Equal(t,
		"* 2025-03-14 | Acme | Review \"auth\", part 1 | 20m | 33.33 PLN\n"+
			"* 2025-03-15 | Acme | Dev | 2h 30m | 100.00 EUR\n",
		got)
}
