package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/client"
	"github.com/MrJamesThe3rd/billable/internal/invoice"
	"github.com/MrJamesThe3rd/billable/internal/profile"
	"github.com/MrJamesThe3rd/billable/internal/storage"
)

// ErrArchiveDisabled is returned by Archive when no object storage is configured.
var ErrArchiveDisabled = errors.New("pdf archive is not configured")

//go:generate mockgen -source=service.go -destination=service_mock.go -package=render
type InvoiceSource interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error)
	SetPDFKey(ctx context.Context, userID, id uuid.UUID, key string) error
}

type ProfileSource interface {
	Get(ctx context.Context, userID uuid.UUID) (*profile.Profile, error)
}

type ClientSource interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*client.Client, error)
}

type Archive interface {
	Put(ctx context.Context, key string, pdf []byte) error
	URL(ctx context.Context, key string) (string, time.Time, error)
}

type Service struct {
	invoices InvoiceSource
	profiles ProfileSource
	clients  ClientSource
	renderer Renderer
	archive  Archive
}

// NewService builds the PDF service. archive may be nil.
func NewService(invoices InvoiceSource, profiles ProfileSource, clients ClientSource, renderer Renderer, archive Archive) *Service {
	return &Service{
		invoices: invoices,
		profiles: profiles,
		clients:  clients,
		renderer: renderer,
		archive:  archive,
	}
}

// Document gathers the invoice with its seller and buyer.
func (s *Service) Document(ctx context.Context, userID, id uuid.UUID) (*Document, error) {
	inv, err := s.invoices.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	seller, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.Field("profile", "fill in your billing profile before printing invoices")
		}

		return nil, fmt.Errorf("getting profile: %w", err)
	}

	buyer, err := s.clients.Get(ctx, userID, inv.ClientID)
	if err != nil {
		return nil, fmt.Errorf("getting client: %w", err)
	}

	return NewDocument(inv, seller, buyer), nil
}

// PDF renders the invoice and returns the bytes with a download file name.
func (s *Service) PDF(ctx context.Context, userID, id uuid.UUID) ([]byte, string, error) {
	doc, err := s.Document(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}

	pdf, err := s.renderer.Render(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("rendering invoice: %w", err)
	}

	return pdf, doc.Filename(), nil
}

// Archive stores the rendered PDF of an issued invoice and returns a
// temporary download link. Drafts are not archived.
func (s *Service) Archive(ctx context.Context, userID, id uuid.UUID) (string, time.Time, error) {
	if s.archive == nil {
		return "", time.Time{}, ErrArchiveDisabled
	}

	doc, err := s.Document(ctx, userID, id)
	if err != nil {
		return "", time.Time{}, err
	}

	inv := doc.Invoice
	if inv.Status == invoice.StatusDraft {
		return "", time.Time{}, apperror.Field("status", "issue the invoice before archiving it")
	}

	key := inv.PDFKey
	if key == "" {
		pdf, err := s.renderer.Render(ctx, doc)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("rendering invoice: %w", err)
		}

		key = storage.Key(userID, inv.ID, inv.Number)

		if err := s.archive.Put(ctx, key, pdf); err != nil {
			return "", time.Time{}, err
		}

		if err := s.invoices.SetPDFKey(ctx, userID, inv.ID, key); err != nil {
			return "", time.Time{}, fmt.Errorf("saving pdf key: %w", err)
		}
	}

	return s.archive.URL(ctx, key)
}
