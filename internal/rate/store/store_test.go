package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/rate/store"
)

var day = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

func TestStore_GetRate(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT rate FROM exchange_rates").
			WithArgs("EUR", day).
			WillReturnRows(sqlmock.NewRows([]string{"rate"}).AddRow("4.2718"))

		got, err := store.New(db).GetRate(context.Background(), currency.EUR, day)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("4.2718").Equal(got))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT rate FROM exchange_rates").
			WithArgs("USD", day).
			WillReturnRows(sqlmock.NewRows([]string{"rate"}))

		_, err = store.New(db).GetRate(context.Background(), currency.USD, day)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("query error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT rate FROM exchange_rates").WillReturnError(errors.New("boom"))

		_, err = store.New(db).GetRate(context.Background(), currency.USD, day)
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestStore_InsertRate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO exchange_rates").
		WithArgs("EUR", day, "4.2718").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.New(db).InsertRate(context.Background(), currency.EUR, day, decimal.RequireFromString("4.2718"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
