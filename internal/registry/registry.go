// Package registry looks up companies in the Ministry of Finance VAT payer
// white list by NIP.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ErrNotRegistered is returned when the registry has no subject for the NIP.
var ErrNotRegistered = errors.New("subject not found in registry")

// Company is the registry data used to prefill a client record.
type Company struct {
	Name       string `json:"name"`
	NIP        string `json:"nip"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	StatusVAT  string `json:"status_vat"`
}

type Client struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

type searchResponse struct {
	Result struct {
		Subject *struct {
			Name             string `json:"name"`
			NIP              string `json:"nip"`
			StatusVAT        string `json:"statusVat"`
			WorkingAddress   string `json:"workingAddress"`
			ResidenceAddress string `json:"residenceAddress"`
		} `json:"subject"`
		RequestID string `json:"requestId"`
	} `json:"result"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) LookupNIP(ctx context.Context, nip string) (*Company, error) {
	url := fmt.Sprintf("%s/search/nip/%s?date=%s", c.baseURL, nip, c.now().Format(time.DateOnly))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d: %s %s", resp.StatusCode, body.Code, body.Message)
	}

	subject := body.Result.Subject
	if subject == nil {
		return nil, ErrNotRegistered
	}

	address := subject.WorkingAddress
	if address == "" {
		address = subject.ResidenceAddress
	}

	street, postal, city := splitAddress(address)

	return &Company{
		Name:       subject.Name,
		NIP:        subject.NIP,
		Street:     street,
		PostalCode: postal,
		City:       city,
		StatusVAT:  subject.StatusVAT,
	}, nil
}

var postalCity = regexp.MustCompile(`^(\d{2}-\d{3})\s+(.+)$`)

// splitAddress breaks "UL. PROSTA 1, 00-001 WARSZAWA" into its parts.
// Addresses that do not follow that shape come back whole as the street.
func splitAddress(address string) (street, postal, city string) {
	address = strings.TrimSpace(address)

	idx := strings.LastIndex(address, ",")
	if idx < 0 {
		return address, "", ""
	}

	m := postalCity.FindStringSubmatch(strings.TrimSpace(address[idx+1:]))
	if m == nil {
		return address, "", ""
	}

	return strings.TrimSpace(address[:idx]), m[1], m[2]
}
