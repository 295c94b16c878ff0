package invoice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
	"github.com/MrJamesThe3rd/billable/internal/validate"
)

// KeyFunc returns the grouping key of a time entry. Entries with the same key
// become one line item; the key is also the item description.
type KeyFunc func(e *timeentry.Entry) string

// DescriptionKey groups entries by their trimmed description.
func DescriptionKey(e *timeentry.Entry) string {
	return strings.TrimSpace(e.Description)
}

type group struct {
	key     string
	hours   decimal.Decimal
	rate    decimal.Decimal
	entries []uuid.UUID
}

func groupEntries(entries []*timeentry.Entry, key KeyFunc) ([]*group, error) {
	var (
		order []*group
		index = make(map[string]*group)
	)

	for _, e := range entries {
		k := key(e)

		g, ok := index[k]
		if !ok {
			g = &group{key: k, hours: decimal.Zero, rate: e.Rate}
			index[k] = g
			order = append(order, g)
		} else if !g.rate.Equal(e.Rate) {
			return nil, fmt.Errorf("group %q: rate %s differs from %s: %w", k, e.Rate, g.rate, errRateMismatch)
		}

		g.hours = g.hours.Add(e.Hours)
		g.entries = append(g.entries, e.ID)
	}

	return order, nil
}

var errRateMismatch = errors.New("entries in one group must share a rate")

// FromTimeEntries builds one line item per group, in the order groups are
// first seen. All entries of a group must share a rate.
func FromTimeEntries(entries []*timeentry.Entry, key KeyFunc) ([]LineItem, error) {
	groups, err := groupEntries(entries, key)
	if err != nil {
		return nil, apperror.Preconditionf("aggregating time entries: %v", err)
	}

	items := make([]LineItem, len(groups))
	for i, g := range groups {
		items[i] = LineItem{
			Position:     i + 1,
			Description:  g.key,
			Quantity:     g.hours,
			UnitPrice:    g.rate,
			TimeEntryIDs: g.entries,
		}
	}

	return items, nil
}

// CheckRates reports groups whose entries do not share a rate as a
// validation error, so callers can reject the selection before aggregating.
func CheckRates(entries []*timeentry.Entry, key KeyFunc) error {
	var (
		fields []apperror.FieldError
		rates  = make(map[string]decimal.Decimal)
		seen   = make(map[string]bool)
	)

	for _, e := range entries {
		k := key(e)

		r, ok := rates[k]
		if !ok {
			rates[k] = e.Rate
			continue
		}

		if !r.Equal(e.Rate) && !seen[k] {
			seen[k] = true
			fields = append(fields, apperror.FieldError{
				Field:   "time_entry_ids",
				Message: fmt.Sprintf("entries described %q have different rates", k),
			})
		}
	}

	if len(fields) > 0 {
		return apperror.Validation(fields...)
	}

	return nil
}

// ItemInput is a manually entered line item.
type ItemInput struct {
	Description string          `json:"description" validate:"notblank"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
}

type itemList struct {
	Items []ItemInput `json:"items" validate:"dive"`
}

// ValidateItems reports invalid manual items with their index in the field path.
func ValidateItems(inputs []ItemInput) error {
	return validate.Struct(itemList{Items: inputs})
}

// FromManual maps inputs 1:1 to line items positioned in input order.
func FromManual(inputs []ItemInput) []LineItem {
	items := make([]LineItem, len(inputs))
	for i, in := range inputs {
		items[i] = LineItem{
			Position:    i + 1,
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
		}
	}

	return items
}

// Draft is the state of an invoice being composed. Items belong to the mode
// that produced them and are dropped when the mode changes.
type Draft struct {
	mode  Mode
	items []LineItem
}

func NewDraft(mode Mode) *Draft {
	return &Draft{mode: mode}
}

func (d *Draft) Mode() Mode {
	return d.mode
}

func (d *Draft) SetMode(m Mode) {
	if m != d.mode {
		d.items = nil
	}

	d.mode = m
}

func (d *Draft) SetItems(items []LineItem) {
	d.items = items
}

func (d *Draft) Items() []LineItem {
	return d.items
}
