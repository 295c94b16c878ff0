package nbp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/rate/nbp"
)

const eurTable = `{"table":"A","currency":"euro","code":"EUR","rates":[{"no":"001/A/NBP/2025","effectiveDate":"2025-01-02","mid":4.2718}]}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/exchangerates/rates/a/eur/2025-01-02/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(eurTable))
	})
	mux.HandleFunc("/api/exchangerates/rates/a/eur/2025-01-04/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 NotFound - Not Found - Brak danych", http.StatusNotFound)
	})
	mux.HandleFunc("/api/exchangerates/rates/a/eur/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(eurTable))
	})
	mux.HandleFunc("/api/exchangerates/rates/a/usd/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestClient_RateOn(t *testing.T) {
	srv := newServer(t)
	c := nbp.New(srv.URL+"/api/", 5*time.Second)

	got, err := c.RateOn(context.Background(), currency.EUR, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("4.2718").Equal(got.Rate))
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), got.EffectiveDate)

	_, err = c.RateOn(context.Background(), currency.EUR, time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, nbp.ErrNoTable)
}

func TestClient_Latest(t *testing.T) {
	srv := newServer(t)
	c := nbp.New(srv.URL+"/api", 5*time.Second)

	got, err := c.Latest(context.Background(), currency.EUR)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("4.2718").Equal(got.Rate))

	_, err = c.Latest(context.Background(), currency.USD)
	require.Error(t, err)
	assert.NotErrorIs(t, err, nbp.ErrNoTable)
}
