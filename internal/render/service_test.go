package render_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/client"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/invoice"
	"github.com/MrJamesThe3rd/billable/internal/profile"
	"github.com/MrJamesThe3rd/billable/internal/render"
)

type stubRenderer struct {
	calls int
	err   error
}

func (s *stubRenderer) Render(context.Context, *render.Document) ([]byte, error) {
	s.calls++
	return []byte("%PDF-stub"), s.err
}

type mocks struct {
	invoices *render.MockInvoiceSource
	profiles *render.MockProfileSource
	clients  *render.MockClientSource
	archive  *render.MockArchive
	renderer *stubRenderer
}

func newService(t *testing.T, withArchive bool) (*render.Service, mocks) {
	ctrl := gomock.NewController(t)

	m := mocks{
		invoices: render.NewMockInvoiceSource(ctrl),
		profiles: render.NewMockProfileSource(ctrl),
		clients:  render.NewMockClientSource(ctrl),
		archive:  render.NewMockArchive(ctrl),
		renderer: &stubRenderer{},
	}

	var archive render.Archive
	if withArchive {
		archive = m.archive
	}

	return render.NewService(m.invoices, m.profiles, m.clients, m.renderer, archive), m
}

func expectDocument(m mocks, userID uuid.UUID, inv *invoice.Invoice) {
	m.invoices.EXPECT().Get(gomock.Any(), userID, inv.ID).Return(inv, nil)
	m.profiles.EXPECT().Get(gomock.Any(), userID).Return(&profile.Profile{Name: "Seller"}, nil)
	m.clients.EXPECT().Get(gomock.Any(), userID, inv.ClientID).Return(&client.Client{Name: "Buyer"}, nil)
}

func TestService_PDF(t *testing.T) {
	svc, m := newService(t, false)
	userID := uuid.New()
	inv := sampleInvoice(currency.PLN)

	expectDocument(m, userID, inv)

	pdf, name, err := svc.PDF(context.Background(), userID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-stub"), pdf)
	assert.Equal(t, "FV-2025-03-7.pdf", name)
}

func TestService_PDF_MissingProfile(t *testing.T) {
	svc, m := newService(t, false)
	userID := uuid.New()
	inv := sampleInvoice(currency.PLN)

	m.invoices.EXPECT().Get(gomock.Any(), userID, inv.ID).Return(inv, nil)
	m.profiles.EXPECT().Get(gomock.Any(), userID).Return(nil, apperror.ErrNotFound)

	_, _, err := svc.PDF(context.Background(), userID, inv.ID)
	assert.True(t, apperror.IsValidation(err))
}

func TestService_PDF_RenderFailure(t *testing.T) {
	svc, m := newService(t, false)
	userID := uuid.New()
	inv := sampleInvoice(currency.PLN)
	m.renderer.err = errors.New("chrome unreachable")

	expectDocument(m, userID, inv)

	_, _, err := svc.PDF(context.Background(), userID, inv.ID)
	assert.ErrorContains(t, err, "chrome unreachable")
}

func TestService_Archive(t *testing.T) {
	expires := time.Now().Add(15 * time.Minute)

	t.Run("UploadsOnce", func(t *testing.T) {
		svc, m := newService(t, true)
		userID := uuid.New()
		inv := sampleInvoice(currency.PLN)

		expectDocument(m, userID, inv)

		var stored string

		m.archive.EXPECT().Put(gomock.Any(), gomock.Any(), []byte("%PDF-stub")).
			DoAndReturn(func(_ context.Context, key string, _ []byte) error {
				stored = key
				return nil
			})
		m.invoices.EXPECT().SetPDFKey(gomock.Any(), userID, inv.ID, gomock.Any()).Return(nil)
		m.archive.EXPECT().URL(gomock.Any(), gomock.Any()).Return("https://s3/presigned", expires, nil)

		url, _, err := svc.Archive(context.Background(), userID, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://s3/presigned", url)
		assert.Equal(t, userID.String()+"/"+inv.ID.String()+"/FV-2025-03-7.pdf", stored)
		assert.Equal(t, 1, m.renderer.calls)
	})

	t.Run("ReusesStoredKey", func(t *testing.T) {
		svc, m := newService(t, true)
		userID := uuid.New()
		inv := sampleInvoice(currency.PLN)
		inv.PDFKey = "existing.pdf"

		expectDocument(m, userID, inv)
		m.archive.EXPECT().URL(gomock.Any(), "existing.pdf").Return("https://s3/existing", expires, nil)

		url, _, err := svc.Archive(context.Background(), userID, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://s3/existing", url)
		assert.Zero(t, m.renderer.calls)
	})

	t.Run("DraftRejected", func(t *testing.T) {
		svc, m := newService(t, true)
		userID := uuid.New()
		inv := sampleInvoice(currency.PLN)
		inv.Status = invoice.StatusDraft

		expectDocument(m, userID, inv)

		_, _, err := svc.Archive(context.Background(), userID, inv.ID)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("Disabled", func(t *testing.T) {
		svc, _ := newService(t, false)

		_, _, err := svc.Archive(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, render.ErrArchiveDisabled)
	})
}
