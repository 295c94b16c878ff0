package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/biter777/countries"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/nip"
	"github.com/MrJamesThe3rd/billable/internal/registry"
	"github.com/MrJamesThe3rd/billable/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=client
type Repository interface {
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, userID, id uuid.UUID) (*Client, error)
	ListClients(ctx context.Context, userID uuid.UUID) ([]*Client, error)
	UpdateClient(ctx context.Context, c *Client) error
	DeleteClient(ctx context.Context, userID, id uuid.UUID) error
}

type Registry interface {
	LookupNIP(ctx context.Context, nip string) (*registry.Company, error)
}

type Service struct {
	repo     Repository
	registry Registry
}

func NewService(repo Repository, reg Registry) *Service {
	return &Service{repo: repo, registry: reg}
}

type Params struct {
	Name        string           `json:"name" validate:"required,max=200"`
	NIP         string           `json:"nip" validate:"omitempty,nip"`
	Street      string           `json:"street" validate:"max=200"`
	City        string           `json:"city" validate:"max=100"`
	PostalCode  string           `json:"postal_code" validate:"max=20"`
	Country     string           `json:"country" validate:"required,country"`
	Email       string           `json:"email" validate:"omitempty,email"`
	DefaultRate *decimal.Decimal `json:"default_rate" validate:"omitempty,gte=0"`
	Currency    currency.Code    `json:"currency" validate:"required,currency"`
	Notes       string           `json:"notes" validate:"max=2000"`
}

func (p Params) check() error {
	return validate.Struct(p)
}

func (p Params) apply(c *Client) {
	c.Name = strings.TrimSpace(p.Name)
	c.NIP = nip.Normalize(p.NIP)
	c.Address = Address{
		Street:     strings.TrimSpace(p.Street),
		City:       strings.TrimSpace(p.City),
		PostalCode: strings.TrimSpace(p.PostalCode),
		Country:    countries.ByName(p.Country).Alpha2(),
	}
	c.Email = strings.TrimSpace(p.Email)
	c.DefaultRate = p.DefaultRate
	c.Currency = p.Currency
	c.Notes = p.Notes
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params Params) (*Client, error) {
	if err := params.check(); err != nil {
		return nil, err
	}

	c := &Client{UserID: userID}
	params.apply(c)

	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Client, error) {
	return s.repo.GetClient(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Client, error) {
	return s.repo.ListClients(ctx, userID)
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params Params) (*Client, error) {
	if err := params.check(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetClient(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	params.apply(c)

	if err := s.repo.UpdateClient(ctx, c); err != nil {
		return nil, fmt.Errorf("updating client: %w", err)
	}

	return c, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteClient(ctx, userID, id)
}

// Lookup fetches company data for a NIP from the VAT registry. A registry
// outage is reported as an external error so the caller can type the data in.
func (s *Service) Lookup(ctx context.Context, rawNIP string) (*Prefill, error) {
	n := nip.Normalize(rawNIP)
	if !nip.Valid(n) {
		return nil, apperror.Field("nip", "invalid NIP checksum")
	}

	company, err := s.registry.LookupNIP(ctx, n)
	if errors.Is(err, registry.ErrNotRegistered) {
		return nil, apperror.Field("nip", "no company registered under this NIP")
	}

	if err != nil {
		return nil, apperror.External("registry", err)
	}

	return &Prefill{
		Name: company.Name,
		NIP:  company.NIP,
		Address: Address{
			Street:     company.Street,
			City:       company.City,
			PostalCode: company.PostalCode,
			Country:    countries.Poland.Alpha2(),
		},
		StatusVAT: company.StatusVAT,
	}, nil
}
