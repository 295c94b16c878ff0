package store_test

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
	"github.com/MrJamesThe3rd/billable/internal/timeentry/store"
)

var columns = []string{
	"id", "user_id", "client_id", "date", "description", "raw_description", "hours", "rate", "currency", "note",
	"invoice_id", "invoice_item_id", "created_at", "updated_at",
}

// arrayConverter lets []string arguments through the way the pgx driver does.
type arrayConverter struct{}

func (arrayConverter) ConvertValue(v any) (driver.Value, error) {
	if s, ok := v.([]string); ok {
		return s, nil
	}

	return driver.DefaultParameterConverter.ConvertValue(v)
}

func TestStore_ListEntries_Filters(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(arrayConverter{}))
	require.NoError(t, err)
	defer db.Close()

	userID, clientID, id := uuid.New(), uuid.New(), uuid.New()
	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	notInvoiced := false

	mock.ExpectQuery(`AND client_id = \$2 AND date >= \$3 AND invoice_id IS NULL AND id = ANY\(\$4::uuid\[\]\)`).
		WithArgs(userID, clientID, day, []string{id.String()}).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			id.String(), userID.String(), clientID.String(), day, "Design", "design", "2.5000", "100.00", "PLN", "",
			nil, nil, now, now,
		))

	got, err := store.New(db).ListEntries(context.Background(), userID, timeentry.ListFilter{
		ClientID:  &clientID,
		StartDate: &day,
		Invoiced:  &notInvoiced,
		IDs:       []uuid.UUID{id},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.True(t, decimal.RequireFromString("2.5").Equal(got[0].Hours))
	assert.Equal(t, currency.PLN, got[0].Currency)
	assert.Nil(t, got[0].InvoiceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteEntry_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID, id := uuid.New(), uuid.New()

	mock.ExpectExec("UPDATE time_entries").WithArgs(id, userID).WillReturnResult(sqlmock.NewResult(0, 0))

	err = store.New(db).DeleteEntry(context.Background(), userID, id)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestStore_CountEntries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()

	mock.ExpectQuery("SELECT COUNT").WithArgs(userID).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	n, err := store.New(db).CountEntries(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 21, n)
}

func TestStore_Import(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID, clientID := uuid.New(), uuid.New()
	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM time_entries").
		WithArgs(userID, day, day).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(uuid.NewString(), userID.String(), clientID.String(), day, "Design", "design", "2.0000", "100.00", "PLN", "", nil, nil, now, now).
			AddRow(uuid.NewString(), userID.String(), clientID.String(), day, "Other", "other", "1.0000", "100.00", "PLN", "", nil, nil, now, now))
	mock.ExpectQuery("INSERT INTO time_entries").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(uuid.NewString(), now, now))
	mock.ExpectCommit()

	s := store.New(db)

	itx, err := s.BeginImport(context.Background(), userID, day, day)
	require.NoError(t, err)

	dups, err := itx.FindDuplicates(context.Background(), []timeentry.CreateParams{{
		ClientID:       clientID,
		Date:           day,
		Hours:          decimal.NewFromInt(2),
		RawDescription: "design",
	}})
	require.NoError(t, err)
	require.Len(t, dups, 1)
	assert.Equal(t, "Design", dups[0].Description)

	entry := &timeentry.Entry{UserID: userID, ClientID: clientID, Date: day, Description: "Dev", Hours: decimal.NewFromInt(3), Rate: decimal.NewFromInt(100), Currency: currency.PLN}
	require.NoError(t, itx.CreateEntries(context.Background(), []*timeentry.Entry{entry}))
	assert.NotEqual(t, uuid.Nil, entry.ID)

	require.NoError(t, itx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
