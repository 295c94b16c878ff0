package timeentry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=timeentry
type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	GetEntry(ctx context.Context, userID, id uuid.UUID) (*Entry, error)
	ListEntries(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Entry, error)
	UpdateEntry(ctx context.Context, e *Entry) error
	DeleteEntry(ctx context.Context, userID, id uuid.UUID) error
	CountEntries(ctx context.Context, userID uuid.UUID) (int, error)

	BeginImport(ctx context.Context, userID uuid.UUID, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Entry, error)
	CreateEntries(ctx context.Context, entries []*Entry) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ClientID       uuid.UUID       `json:"client_id" validate:"required"`
	Date           time.Time       `json:"date" validate:"required"`
	Description    string          `json:"description" validate:"notblank"`
	RawDescription string          `json:"raw_description"`
	Hours          decimal.Decimal `json:"hours" validate:"gt=0,lte=24"`
	Rate           decimal.Decimal `json:"rate" validate:"gte=0"`
	Currency       currency.Code   `json:"currency" validate:"required,currency"`
	Note           string          `json:"note" validate:"max=2000"`
}

// Validate checks the fields a user can get wrong.
func (p CreateParams) Validate() error {
	return validate.Struct(p)
}

type ListFilter struct {
	ClientID  *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Invoiced  *bool
	IDs       []uuid.UUID
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Entry, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	e := newEntry(userID, params)
	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("creating entry: %w", err)
	}

	return e, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Entry, error) {
	return s.repo.GetEntry(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, userID, filter)
}

func (s *Service) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountEntries(ctx, userID)
}

// Update replaces the editable fields. Entries already on an invoice are frozen.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params CreateParams) (*Entry, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	e, err := s.repo.GetEntry(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if e.Invoiced() {
		return nil, apperror.Field("invoice_id", "entry is attached to an invoice")
	}

	e.ClientID = params.ClientID
	e.Date = params.Date
	e.Description = strings.TrimSpace(params.Description)
	e.Hours = params.Hours
	e.Rate = params.Rate
	e.Currency = params.Currency
	e.Note = params.Note

	if err := s.repo.UpdateEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("updating entry: %w", err)
	}

	return e, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	e, err := s.repo.GetEntry(ctx, userID, id)
	if err != nil {
		return err
	}

	if e.Invoiced() {
		return apperror.Field("invoice_id", "entry is attached to an invoice")
	}

	return s.repo.DeleteEntry(ctx, userID, id)
}

type ImportResult struct {
	Imported  []*Entry
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Entry
}

type dupKey struct {
	ClientID       uuid.UUID
	Date           string
	Hours          string
	RawDescription string
}

func keyOf(clientID uuid.UUID, date time.Time, hours decimal.Decimal, raw string) dupKey {
	return dupKey{
		ClientID:       clientID,
		Date:           date.Format(time.DateOnly),
		Hours:          hours.String(),
		RawDescription: raw,
	}
}

// ImportBatch stores imported entries unless some of them already exist. When
// duplicates are found nothing is written and the split is returned so the
// caller can decide; CreateBatch then stores the accepted rows.
func (s *Service) ImportBatch(ctx context.Context, userID uuid.UUID, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	if err := validateBatch(params); err != nil {
		return nil, err
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, userID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Entry, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(d.ClientID, d.Date, d.Hours, d.RawDescription)] = d
	}

	var (
		newParams []CreateParams
		conflicts []Conflict
	)

	for _, p := range params {
		existing, found := lookup[keyOf(p.ClientID, p.Date, p.Hours, p.RawDescription)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	entries := paramsToEntries(userID, newParams)
	if err := itx.CreateEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("create entries: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: entries}, nil
}

func (s *Service) CreateBatch(ctx context.Context, userID uuid.UUID, params []CreateParams) ([]*Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	if err := validateBatch(params); err != nil {
		return nil, err
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, userID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	entries := paramsToEntries(userID, params)
	if err := itx.CreateEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("create entries: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return entries, nil
}

func validateBatch(params []CreateParams) error {
	for i, p := range params {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	return nil
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func newEntry(userID uuid.UUID, p CreateParams) *Entry {
	raw := p.RawDescription
	if raw == "" {
		raw = p.Description
	}

	return &Entry{
		UserID:         userID,
		ClientID:       p.ClientID,
		Date:           p.Date,
		Description:    strings.TrimSpace(p.Description),
		RawDescription: raw,
		Hours:          p.Hours,
		Rate:           p.Rate,
		Currency:       p.Currency,
		Note:           p.Note,
	}
}

func paramsToEntries(userID uuid.UUID, params []CreateParams) []*Entry {
	entries := make([]*Entry, len(params))
	for i, p := range params {
		entries[i] = newEntry(userID, p)
	}

	return entries
}
