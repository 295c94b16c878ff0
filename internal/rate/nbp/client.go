// Package nbp reads average exchange rates (table A) from the National Bank of Poland API.
package nbp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/rate"
)

// ErrNoTable is returned when no table was published for the requested date.
var ErrNoTable = errors.New("no exchange rate table for date")

type Client struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type ratesResponse struct {
	Table    string `json:"table"`
	Currency string `json:"currency"`
	Code     string `json:"code"`
	Rates    []struct {
		No            string          `json:"no"`
		EffectiveDate string          `json:"effectiveDate"`
		Mid           decimal.Decimal `json:"mid"`
	} `json:"rates"`
}

func (c *Client) RateOn(ctx context.Context, cur currency.Code, date time.Time) (rate.Quote, error) {
	url := fmt.Sprintf("%s/exchangerates/rates/a/%s/%s/?format=json",
		c.baseURL, strings.ToLower(cur.String()), date.Format(time.DateOnly))

	return c.get(ctx, url)
}

func (c *Client) Latest(ctx context.Context, cur currency.Code) (rate.Quote, error) {
	url := fmt.Sprintf("%s/exchangerates/rates/a/%s/?format=json", c.baseURL, strings.ToLower(cur.String()))

	return c.get(ctx, url)
}

func (c *Client) get(ctx context.Context, url string) (rate.Quote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return rate.Quote{}, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return rate.Quote{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return rate.Quote{}, ErrNoTable
	}

	if resp.StatusCode != http.StatusOK {
		return rate.Quote{}, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return rate.Quote{}, fmt.Errorf("decoding response: %w", err)
	}

	if len(body.Rates) == 0 {
		return rate.Quote{}, ErrNoTable
	}

	last := body.Rates[len(body.Rates)-1]

	if !last.Mid.IsPositive() {
		return rate.Quote{}, fmt.Errorf("non-positive rate %s in table %s", last.Mid, last.No)
	}

	effective, err := time.Parse(time.DateOnly, last.EffectiveDate)
	if err != nil {
		return rate.Quote{}, fmt.Errorf("parsing effective date %q: %w", last.EffectiveDate, err)
	}

	return rate.Quote{Rate: last.Mid, EffectiveDate: effective}, nil
}
