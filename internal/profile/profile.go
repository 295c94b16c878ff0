// Package profile keeps the seller details printed on a user's invoices.
package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/biter777/countries"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/billable/internal/nip"
	"github.com/MrJamesThe3rd/billable/internal/validate"
)

type Profile struct {
	UserID      uuid.UUID `json:"-"`
	Name        string    `json:"name"`
	NIP         string    `json:"nip"`
	Street      string    `json:"street"`
	City        string    `json:"city"`
	PostalCode  string    `json:"postal_code"`
	Country     string    `json:"country"`
	Email       string    `json:"email"`
	BankAccount string    `json:"bank_account"`
	BankName    string    `json:"bank_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

//go:generate mockgen -source=profile.go -destination=repository_mock.go -package=profile
type Repository interface {
	// GetProfile returns apperror.ErrNotFound until the user saves a profile.
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpsertProfile(ctx context.Context, p *Profile) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type Params struct {
	Name        string `json:"name" validate:"required,max=200"`
	NIP         string `json:"nip" validate:"required,nip"`
	Street      string `json:"street" validate:"required,max=200"`
	City        string `json:"city" validate:"required,max=100"`
	PostalCode  string `json:"postal_code" validate:"required,max=20"`
	Country     string `json:"country" validate:"required,country"`
	Email       string `json:"email" validate:"omitempty,email"`
	BankAccount string `json:"bank_account" validate:"max=40"`
	BankName    string `json:"bank_name" validate:"max=100"`
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *Service) Save(ctx context.Context, userID uuid.UUID, params Params) (*Profile, error) {
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	p := &Profile{
		UserID:      userID,
		Name:        strings.TrimSpace(params.Name),
		NIP:         nip.Normalize(params.NIP),
		Street:      strings.TrimSpace(params.Street),
		City:        strings.TrimSpace(params.City),
		PostalCode:  strings.TrimSpace(params.PostalCode),
		Country:     countries.ByName(params.Country).Alpha2(),
		Email:       strings.TrimSpace(params.Email),
		BankAccount: strings.ReplaceAll(params.BankAccount, " ", ""),
		BankName:    strings.TrimSpace(params.BankName),
	}

	if err := s.repo.UpsertProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}

	return p, nil
}
