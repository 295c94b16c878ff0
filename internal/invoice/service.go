package invoice

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/client"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/matching"
	"github.com/MrJamesThe3rd/billable/internal/payterm"
	"github.com/MrJamesThe3rd/billable/internal/rate"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
	"github.com/MrJamesThe3rd/billable/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	// CreateInvoice assigns the next number in the issue month's series and
	// links the referenced time entries in the same transaction.
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, userID, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Invoice, error)
	// UpdateInvoice replaces settings and items of a draft and relinks its time entries.
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status Status) error
	SetPDFKey(ctx context.Context, userID, id uuid.UUID, key string) error
	// DeleteInvoice removes a draft and releases its time entries.
	DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error
}

type RateResolver interface {
	Resolve(ctx context.Context, cur currency.Code, date time.Time) (*rate.Resolution, error)
}

type EntrySource interface {
	List(ctx context.Context, userID uuid.UUID, filter timeentry.ListFilter) ([]*timeentry.Entry, error)
}

type ClientSource interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*client.Client, error)
}

type MatcherSource interface {
	Matcher(ctx context.Context, userID uuid.UUID) (*matching.Matcher, error)
}

type Service struct {
	repo     Repository
	clients  ClientSource
	entries  EntrySource
	rates    RateResolver
	matchers MatcherSource
}

func NewService(repo Repository, clients ClientSource, entries EntrySource, rates RateResolver, matchers MatcherSource) *Service {
	return &Service{
		repo:     repo,
		clients:  clients,
		entries:  entries,
		rates:    rates,
		matchers: matchers,
	}
}

type ListFilter struct {
	ClientID  *uuid.UUID
	Status    *Status
	StartDate *time.Time
	EndDate   *time.Time
}

// DraftParams describes an invoice to preview, create or update.
type DraftParams struct {
	ClientID     uuid.UUID        `json:"client_id" validate:"required"`
	Mode         Mode             `json:"mode" validate:"required,oneof=time_entries manual"`
	TimeEntryIDs []uuid.UUID      `json:"time_entry_ids"`
	Items        []ItemInput      `json:"items"`
	IssueDate    time.Time        `json:"issue_date" validate:"required"`
	SaleDate     *time.Time       `json:"sale_date"`
	DueDate      *time.Time       `json:"due_date"`
	PaymentTerm  payterm.Term     `json:"payment_term" validate:"omitempty,payterm"`
	VATRate      decimal.Decimal  `json:"vat_rate" validate:"gte=0,lte=100"`
	Currency     currency.Code    `json:"currency" validate:"required,currency"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate" validate:"omitempty,gt=0"`
	Notes        string           `json:"notes" validate:"max=2000"`
}

// validate checks field rules first, then the rules that span fields.
func (p DraftParams) validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	var fields []apperror.FieldError

	add := func(field, msg string) {
		fields = append(fields, apperror.FieldError{Field: field, Message: msg})
	}

	switch p.Mode {
	case ModeTimeEntries:
		if len(p.TimeEntryIDs) == 0 {
			add("time_entry_ids", "select at least one time entry")
		}
	case ModeManual:
		if len(p.Items) == 0 {
			add("items", "add at least one item")
		}
	}

	if p.SaleDate != nil && p.SaleDate.After(p.IssueDate.AddDate(0, 0, 30)) {
		add("sale_date", "must not be more than 30 days after the issue date")
	}

	if p.ExchangeRate != nil && !p.Currency.IsForeign() {
		add("exchange_rate", "only applies to foreign currencies")
	}

	if len(fields) > 0 {
		return apperror.Validation(fields...)
	}

	if p.Mode == ModeManual {
		return ValidateItems(p.Items)
	}

	return nil
}

// RateDate is the day whose exchange rate applies to an invoice: the day
// before issue, as required for VAT invoices in foreign currencies.
func RateDate(issue time.Time) time.Time {
	return issue.AddDate(0, 0, -1)
}

// build turns params into an unsaved invoice. It never writes anything.
// current is the stored draft when updating and nil otherwise.
func (s *Service) build(ctx context.Context, userID uuid.UUID, p DraftParams, current *Invoice) (*Invoice, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	if _, err := s.clients.Get(ctx, userID, p.ClientID); err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.Field("client_id", "unknown client")
		}

		return nil, fmt.Errorf("getting client: %w", err)
	}

	dueDate, term, err := payterm.Reconcile(p.IssueDate, p.DueDate, p.PaymentTerm)
	if err != nil {
		return nil, err
	}

	saleDate := p.IssueDate
	if p.SaleDate != nil {
		saleDate = *p.SaleDate
	}

	inv := &Invoice{
		UserID:   userID,
		ClientID: p.ClientID,
		Status:   StatusDraft,
		Mode:     p.Mode,
		Settings: Settings{
			IssueDate:   p.IssueDate,
			SaleDate:    saleDate,
			DueDate:     dueDate,
			PaymentTerm: term,
			VATRate:     p.VATRate,
			Currency:    p.Currency,
		},
		Notes: strings.TrimSpace(p.Notes),
	}

	switch p.Mode {
	case ModeManual:
		inv.Items = FromManual(p.Items)
	case ModeTimeEntries:
		var ownInvoice *uuid.UUID
		if current != nil {
			ownInvoice = &current.ID
		}

		inv.Items, err = s.itemsFromEntries(ctx, userID, p, ownInvoice)
		if err != nil {
			return nil, err
		}
	}

	if err := s.applyExchangeRate(ctx, inv, p.ExchangeRate, current); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) itemsFromEntries(ctx context.Context, userID uuid.UUID, p DraftParams, ownInvoice *uuid.UUID) ([]LineItem, error) {
	entries, err := s.entries.List(ctx, userID, timeentry.ListFilter{IDs: p.TimeEntryIDs})
	if err != nil {
		return nil, fmt.Errorf("loading time entries: %w", err)
	}

	found := make(map[uuid.UUID]*timeentry.Entry, len(entries))
	for _, e := range entries {
		found[e.ID] = e
	}

	var fields []apperror.FieldError

	// Keep the caller's selection order so items come out in a predictable order.
	selected := make([]*timeentry.Entry, 0, len(p.TimeEntryIDs))

	for i, id := range p.TimeEntryIDs {
		field := fmt.Sprintf("time_entry_ids[%d]", i)

		e, ok := found[id]
		switch {
		case !ok:
			fields = append(fields, apperror.FieldError{Field: field, Message: "unknown time entry"})
		case e.ClientID != p.ClientID:
			fields = append(fields, apperror.FieldError{Field: field, Message: "belongs to another client"})
		case e.Currency != p.Currency:
			fields = append(fields, apperror.FieldError{Field: field, Message: "billed in " + e.Currency.String()})
		case e.Invoiced() && (ownInvoice == nil || *e.InvoiceID != *ownInvoice):
			fields = append(fields, apperror.FieldError{Field: field, Message: "already invoiced"})
		default:
			if !slices.Contains(selected, e) {
				selected = append(selected, e)
			}
		}
	}

	if len(fields) > 0 {
		return nil, apperror.Validation(fields...)
	}

	key := DescriptionKey

	if s.matchers != nil {
		m, err := s.matchers.Matcher(ctx, userID)
		if err != nil {
			return nil, err
		}

		key = func(e *timeentry.Entry) string { return m.Apply(e.Description) }
	}

	if err := CheckRates(selected, key); err != nil {
		return nil, err
	}

	return FromTimeEntries(selected, key)
}

func (s *Service) applyExchangeRate(ctx context.Context, inv *Invoice, custom *decimal.Decimal, current *Invoice) error {
	if !inv.Currency.IsForeign() {
		inv.ExchangeRate = nil
		inv.IsCustomExchangeRate = false

		return nil
	}

	if custom != nil {
		inv.ExchangeRate = custom
		inv.IsCustomExchangeRate = true

		return nil
	}

	// A looked-up rate is kept while the currency and issue date stay the same,
	// so editing a draft neither moves its totals nor depends on the rate feed.
	if current != nil && current.ExchangeRate != nil && !current.IsCustomExchangeRate &&
		current.Currency == inv.Currency && current.IssueDate.Equal(inv.IssueDate) {
		inv.ExchangeRate = current.ExchangeRate
		inv.IsCustomExchangeRate = false

		return nil
	}

	res, err := s.rates.Resolve(ctx, inv.Currency, RateDate(inv.IssueDate))
	if err != nil {
		return err
	}

	inv.ExchangeRate = &res.Rate
	inv.IsCustomExchangeRate = false

	return nil
}

// Preview builds the invoice and its totals without saving anything.
func (s *Service) Preview(ctx context.Context, userID uuid.UUID, p DraftParams) (*Invoice, Summary, error) {
	inv, err := s.build(ctx, userID, p, nil)
	if err != nil {
		return nil, Summary{}, err
	}

	return inv, inv.Summary(), nil
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, p DraftParams) (*Invoice, error) {
	inv, err := s.build(ctx, userID, p, nil)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	return inv, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, userID, filter)
}

// Update rebuilds a draft from params. Issued invoices are immutable.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, p DraftParams) (*Invoice, error) {
	current, err := s.repo.GetInvoice(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if current.Status != StatusDraft {
		return nil, apperror.Field("status", "only draft invoices can be edited")
	}

	inv, err := s.build(ctx, userID, p, current)
	if err != nil {
		return nil, err
	}

	inv.ID = current.ID
	inv.Number = current.Number
	inv.CreatedAt = current.CreatedAt

	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("updating invoice: %w", err)
	}

	return inv, nil
}

// Issue finalizes a draft; its items are frozen from then on.
func (s *Service) Issue(ctx context.Context, userID, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if inv.Status != StatusDraft {
		return nil, apperror.Field("status", "invoice is already issued")
	}

	if len(inv.Items) == 0 {
		return nil, apperror.Field("items", "an invoice needs at least one item")
	}

	if inv.Currency.IsForeign() && inv.ExchangeRate == nil {
		return nil, apperror.Field("exchange_rate", "required for foreign currency invoices")
	}

	if err := s.repo.UpdateStatus(ctx, userID, id, StatusIssued); err != nil {
		return nil, fmt.Errorf("issuing invoice: %w", err)
	}

	inv.Status = StatusIssued

	return inv, nil
}

func (s *Service) MarkPaid(ctx context.Context, userID, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if inv.Status != StatusIssued {
		return nil, apperror.Field("status", "only issued invoices can be marked paid")
	}

	if err := s.repo.UpdateStatus(ctx, userID, id, StatusPaid); err != nil {
		return nil, fmt.Errorf("marking invoice paid: %w", err)
	}

	inv.Status = StatusPaid

	return inv, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	inv, err := s.repo.GetInvoice(ctx, userID, id)
	if err != nil {
		return err
	}

	if inv.Status != StatusDraft {
		return apperror.Field("status", "only draft invoices can be deleted")
	}

	return s.repo.DeleteInvoice(ctx, userID, id)
}

func (s *Service) SetPDFKey(ctx context.Context, userID, id uuid.UUID, key string) error {
	return s.repo.SetPDFKey(ctx, userID, id, key)
}
