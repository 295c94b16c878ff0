package invoice_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/client"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/invoice"
	"github.com/MrJamesThe3rd/billable/internal/matching"
	"github.com/MrJamesThe3rd/billable/internal/payterm"
	"github.com/MrJamesThe3rd/billable/internal/rate"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
)

var (
	userID   = uuid.New()
	clientID = uuid.New()
	issue    = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
)

type mocks struct {
	repo     *invoice.MockRepository
	clients  *invoice.MockClientSource
	entries  *invoice.MockEntrySource
	rates    *invoice.MockRateResolver
	matchers *invoice.MockMatcherSource
}

func newService(t *testing.T) (*invoice.Service, mocks) {
	ctrl := gomock.NewController(t)

	m := mocks{
		repo:     invoice.NewMockRepository(ctrl),
		clients:  invoice.NewMockClientSource(ctrl),
		entries:  invoice.NewMockEntrySource(ctrl),
		rates:    invoice.NewMockRateResolver(ctrl),
		matchers: invoice.NewMockMatcherSource(ctrl),
	}

	return invoice.NewService(m.repo, m.clients, m.entries, m.rates, m.matchers), m
}

func manualParams(cur currency.Code) invoice.DraftParams {
	return invoice.DraftParams{
		ClientID:    clientID,
		Mode:        invoice.ModeManual,
		Items:       []invoice.ItemInput{{Description: "Consulting", Quantity: d("10"), UnitPrice: d("100")}},
		IssueDate:   issue,
		PaymentTerm: payterm.Days(14),
		VATRate:     d("23"),
		Currency:    cur,
	}
}

func expectClient(m mocks) {
	m.clients.EXPECT().Get(gomock.Any(), userID, clientID).Return(&client.Client{ID: clientID}, nil)
}

func timeEntry(desc, hours string) *timeentry.Entry {
	e := entry(desc, hours, "100")
	e.ClientID = clientID

	return e
}

func TestService_Preview(t *testing.T) {
	type testCase struct {
		name       string
		params     func() invoice.DraftParams
		setupMock  func(m mocks)
		wantFields []string
		wantErr    error
		check      func(t *testing.T, inv *invoice.Invoice, sum invoice.Summary)
	}

	tests := []testCase{
		{
			name:   "ManualPLN",
			params: func() invoice.DraftParams { return manualParams(currency.PLN) },
			setupMock: func(m mocks) {
				expectClient(m)
			},
			check: func(t *testing.T, inv *invoice.Invoice, sum invoice.Summary) {
				assert.Equal(t, invoice.StatusDraft, inv.Status)
				assert.Equal(t, issue, inv.SaleDate)
				assert.Equal(t, time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC), inv.DueDate)
				assert.Nil(t, inv.ExchangeRate)
				assert.True(t, d("1230").Equal(sum.Gross))
				assert.Nil(t, sum.GrossBase)
			},
		},
		{
			name:   "ForeignCurrencyResolvesDayBeforeIssue",
			params: func() invoice.DraftParams { return manualParams(currency.EUR) },
			setupMock: func(m mocks) {
				expectClient(m)
				m.rates.EXPECT().
					Resolve(gomock.Any(), currency.EUR, time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)).
					Return(&rate.Resolution{Currency: currency.EUR, Rate: d("4.1838"), Source: rate.SourceAPI}, nil)
			},
			check: func(t *testing.T, inv *invoice.Invoice, sum invoice.Summary) {
				require.NotNil(t, inv.ExchangeRate)
				assert.True(t, d("4.1838").Equal(*inv.ExchangeRate))
				assert.False(t, inv.IsCustomExchangeRate)
				require.NotNil(t, sum.GrossBase)
				assert.True(t, d("5146.074").Equal(*sum.GrossBase))
			},
		},
		{
			name: "CustomRateSkipsResolver",
			params: func() invoice.DraftParams {
				p := manualParams(currency.USD)
				p.ExchangeRate = new(d("3.9"))

				return p
			},
			setupMock: func(m mocks) {
				expectClient(m)
			},
			check: func(t *testing.T, inv *invoice.Invoice, _ invoice.Summary) {
				assert.True(t, inv.IsCustomExchangeRate)
				assert.True(t, d("3.9").Equal(*inv.ExchangeRate))
			},
		},
		{
			name:    "RateFeedDown",
			params:  func() invoice.DraftParams { return manualParams(currency.EUR) },
			wantErr: errors.New("nbp"),
			setupMock: func(m mocks) {
				expectClient(m)
				m.rates.EXPECT().
					Resolve(gomock.Any(), currency.EUR, gomock.Any()).
					Return(nil, apperror.External("nbp", errors.New("timeout")))
			},
		},
		{
			name: "RateForBaseCurrencyRejected",
			params: func() invoice.DraftParams {
				p := manualParams(currency.PLN)
				p.ExchangeRate = new(d("1"))

				return p
			},
			wantFields: []string{"exchange_rate"},
		},
		{
			name: "ZeroCustomRateRejected",
			params: func() invoice.DraftParams {
				p := manualParams(currency.EUR)
				p.ExchangeRate = new(decimal.Zero)

				return p
			},
			wantFields: []string{"exchange_rate"},
		},
		{
			name: "InvalidSettings",
			params: func() invoice.DraftParams {
				return invoice.DraftParams{Mode: "weird", VATRate: d("101"), Currency: "GBP"}
			},
			wantFields: []string{"client_id", "mode", "issue_date", "vat_rate", "currency"},
		},
		{
			name: "UnknownPaymentTermAndLongNotes",
			params: func() invoice.DraftParams {
				p := manualParams(currency.PLN)
				p.PaymentTerm = "11"
				p.Notes = strings.Repeat("x", 2001)

				return p
			},
			wantFields: []string{"payment_term", "notes"},
		},
		{
			name: "ModeRulesCheckedAfterFields",
			params: func() invoice.DraftParams {
				p := manualParams(currency.EUR)
				p.Items = nil
				p.ExchangeRate = new(d("4.3"))

				return p
			},
			wantFields: []string{"items"},
		},
		{
			name: "SaleDateTooLate",
			params: func() invoice.DraftParams {
				p := manualParams(currency.PLN)
				p.SaleDate = new(issue.AddDate(0, 0, 31))

				return p
			},
			wantFields: []string{"sale_date"},
		},
		{
			name:   "UnknownClient",
			params: func() invoice.DraftParams { return manualParams(currency.PLN) },
			setupMock: func(m mocks) {
				m.clients.EXPECT().Get(gomock.Any(), userID, clientID).Return(nil, apperror.ErrNotFound)
			},
			wantFields: []string{"client_id"},
		},
		{
			name: "TimeEntriesGroupedWithMappings",
			params: func() invoice.DraftParams {
				p := manualParams(currency.PLN)
				p.Mode = invoice.ModeTimeEntries
				p.Items = nil

				return p
			},
			setupMock: func(m mocks) {
				expectClient(m)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			p := tt.params()

			if p.Mode == invoice.ModeTimeEntries {
				e1, e2, e3 := timeEntry("PR review #12", "2"), timeEntry("standup", "0.25"), timeEntry("PR review #13", "1")
				p.TimeEntryIDs = []uuid.UUID{e1.ID, e2.ID, e3.ID}

				m.entries.EXPECT().
					List(gomock.Any(), userID, timeentry.ListFilter{IDs: p.TimeEntryIDs}).
					Return([]*timeentry.Entry{e3, e2, e1}, nil)
				m.matchers.EXPECT().
					Matcher(gomock.Any(), userID).
					Return(matching.NewMatcher([]matching.Mapping{{RawPattern: "pr review", PreferredDescription: "Code review"}}), nil)

				tt.check = func(t *testing.T, inv *invoice.Invoice, sum invoice.Summary) {
					require.Len(t, inv.Items, 2)
					assert.Equal(t, "Code review", inv.Items[0].Description)
					assert.True(t, d("3").Equal(inv.Items[0].Quantity))
					assert.Equal(t, []uuid.UUID{e1.ID, e3.ID}, inv.Items[0].TimeEntryIDs)
					assert.Equal(t, "standup", inv.Items[1].Description)
					assert.True(t, d("325").Equal(sum.Net))
				}
			}

			inv, sum, err := svc.Preview(context.Background(), userID, p)

			if tt.wantFields != nil {
				var verr *apperror.ValidationError
				require.ErrorAs(t, err, &verr)

				var got []string
				for _, f := range verr.Fields {
					got = append(got, f.Field)
				}

				assert.Equal(t, tt.wantFields, got)

				return
			}

			if tt.wantErr != nil {
				assert.True(t, apperror.IsExternal(err))
				return
			}

			require.NoError(t, err)
			tt.check(t, inv, sum)
		})
	}
}

func TestService_Preview_RejectsForeignEntries(t *testing.T) {
	svc, m := newService(t)
	expectClient(m)

	mine := timeEntry("Design", "1")
	other := timeEntry("Design", "1")
	other.ClientID = uuid.New()
	taken := timeEntry("Design", "1")
	taken.InvoiceID = new(uuid.New())
	euro := timeEntry("Design", "1")
	euro.Currency = currency.EUR

	p := manualParams(currency.PLN)
	p.Mode = invoice.ModeTimeEntries
	p.TimeEntryIDs = []uuid.UUID{mine.ID, other.ID, taken.ID, euro.ID, uuid.New()}

	m.entries.EXPECT().List(gomock.Any(), userID, gomock.Any()).Return([]*timeentry.Entry{mine, other, taken, euro}, nil)

	_, _, err := svc.Preview(context.Background(), userID, p)

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []apperror.FieldError{
		{Field: "time_entry_ids[1]", Message: "belongs to another client"},
		{Field: "time_entry_ids[2]", Message: "already invoiced"},
		{Field: "time_entry_ids[3]", Message: "billed in EUR"},
		{Field: "time_entry_ids[4]", Message: "unknown time entry"},
	}, verr.Fields)
}

func TestService_Preview_RateMismatchIsValidation(t *testing.T) {
	svc, m := newService(t)
	expectClient(m)

	a := timeEntry("Design", "1")
	b := timeEntry("Design", "1")
	b.Rate = d("120")

	p := manualParams(currency.PLN)
	p.Mode = invoice.ModeTimeEntries
	p.TimeEntryIDs = []uuid.UUID{a.ID, b.ID}

	m.entries.EXPECT().List(gomock.Any(), userID, gomock.Any()).Return([]*timeentry.Entry{a, b}, nil)
	m.matchers.EXPECT().Matcher(gomock.Any(), userID).Return(matching.NewMatcher(nil), nil)

	_, _, err := svc.Preview(context.Background(), userID, p)
	assert.True(t, apperror.IsValidation(err))
	assert.NotErrorIs(t, err, apperror.ErrPrecondition)
}

func TestService_Create(t *testing.T) {
	svc, m := newService(t)
	expectClient(m)

	m.repo.EXPECT().
		CreateInvoice(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
			assert.Equal(t, userID, inv.UserID)
			assert.Len(t, inv.Items, 1)
			inv.ID = uuid.New()
			inv.Number = "FV/2025/03/1"

			return nil
		})

	inv, err := svc.Create(context.Background(), userID, manualParams(currency.PLN))
	require.NoError(t, err)
	assert.Equal(t, "FV/2025/03/1", inv.Number)
}

func draftInvoice(status invoice.Status) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:       uuid.New(),
		UserID:   userID,
		ClientID: clientID,
		Status:   status,
		Items:    []invoice.LineItem{item("1", "100")},
	}
	inv.Currency = currency.PLN
	inv.IssueDate = issue

	return inv
}

func TestService_StatusTransitions(t *testing.T) {
	type testCase struct {
		name      string
		status    invoice.Status
		run       func(svc *invoice.Service, id uuid.UUID) error
		setupMock func(m mocks, id uuid.UUID)
		wantErr   bool
	}

	issueFn := func(svc *invoice.Service, id uuid.UUID) error {
		_, err := svc.Issue(context.Background(), userID, id)
		return err
	}
	paidFn := func(svc *invoice.Service, id uuid.UUID) error {
		_, err := svc.MarkPaid(context.Background(), userID, id)
		return err
	}
	deleteFn := func(svc *invoice.Service, id uuid.UUID) error {
		return svc.Delete(context.Background(), userID, id)
	}

	tests := []testCase{
		{
			name:   "IssueDraft",
			status: invoice.StatusDraft,
			run:    issueFn,
			setupMock: func(m mocks, id uuid.UUID) {
				m.repo.EXPECT().UpdateStatus(gomock.Any(), userID, id, invoice.StatusIssued).Return(nil)
			},
		},
		{name: "IssueTwice", status: invoice.StatusIssued, run: issueFn, wantErr: true},
		{
			name:   "PayIssued",
			status: invoice.StatusIssued,
			run:    paidFn,
			setupMock: func(m mocks, id uuid.UUID) {
				m.repo.EXPECT().UpdateStatus(gomock.Any(), userID, id, invoice.StatusPaid).Return(nil)
			},
		},
		{name: "PayDraft", status: invoice.StatusDraft, run: paidFn, wantErr: true},
		{
			name:   "DeleteDraft",
			status: invoice.StatusDraft,
			run:    deleteFn,
			setupMock: func(m mocks, id uuid.UUID) {
				m.repo.EXPECT().DeleteInvoice(gomock.Any(), userID, id).Return(nil)
			},
		},
		{name: "DeleteIssued", status: invoice.StatusIssued, run: deleteFn, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			inv := draftInvoice(tt.status)

			m.repo.EXPECT().GetInvoice(gomock.Any(), userID, inv.ID).Return(inv, nil)

			if tt.setupMock != nil {
				tt.setupMock(m, inv.ID)
			}

			err := tt.run(svc, inv.ID)
			if tt.wantErr {
				assert.True(t, apperror.IsValidation(err))
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestService_Issue_RequiresRateForForeignCurrency(t *testing.T) {
	svc, m := newService(t)
	inv := draftInvoice(invoice.StatusDraft)
	inv.Currency = currency.EUR

	m.repo.EXPECT().GetInvoice(gomock.Any(), userID, inv.ID).Return(inv, nil)

	_, err := svc.Issue(context.Background(), userID, inv.ID)
	assert.True(t, apperror.IsValidation(err))
}

func TestService_Update_KeepsResolvedRate(t *testing.T) {
	svc, m := newService(t)

	current := draftInvoice(invoice.StatusDraft)
	current.Number = "FV/2025/03/4"
	current.Currency = currency.EUR
	current.ExchangeRate = new(d("4.2"))

	m.repo.EXPECT().GetInvoice(gomock.Any(), userID, current.ID).Return(current, nil)
	expectClient(m)
	m.rates.EXPECT().
		Resolve(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperror.External("nbp", errors.New("down"))).
		Times(0)
	m.repo.EXPECT().UpdateInvoice(gomock.Any(), gomock.Any()).Return(nil)

	inv, err := svc.Update(context.Background(), userID, current.ID, manualParams(currency.EUR))
	require.NoError(t, err)
	assert.Equal(t, current.ID, inv.ID)
	assert.Equal(t, "FV/2025/03/4", inv.Number)
	assert.True(t, d("4.2").Equal(*inv.ExchangeRate))
	assert.False(t, inv.IsCustomExchangeRate)
}

func TestService_Update_ResolvesRateWhenIssueDateMoves(t *testing.T) {
	svc, m := newService(t)

	current := draftInvoice(invoice.StatusDraft)
	current.Currency = currency.EUR
	current.ExchangeRate = new(d("4.2"))

	params := manualParams(currency.EUR)
	params.IssueDate = issue.AddDate(0, 0, 3)

	m.repo.EXPECT().GetInvoice(gomock.Any(), userID, current.ID).Return(current, nil)
	expectClient(m)
	m.rates.EXPECT().
		Resolve(gomock.Any(), currency.EUR, time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)).
		Return(&rate.Resolution{Currency: currency.EUR, Rate: d("4.3")}, nil)
	m.repo.EXPECT().UpdateInvoice(gomock.Any(), gomock.Any()).Return(nil)

	inv, err := svc.Update(context.Background(), userID, current.ID, params)
	require.NoError(t, err)
	assert.True(t, d("4.3").Equal(*inv.ExchangeRate))
}

func TestService_Update_IssuedIsFrozen(t *testing.T) {
	svc, m := newService(t)
	current := draftInvoice(invoice.StatusIssued)

	m.repo.EXPECT().GetInvoice(gomock.Any(), userID, current.ID).Return(current, nil)

	_, err := svc.Update(context.Background(), userID, current.ID, manualParams(currency.PLN))
	assert.True(t, apperror.IsValidation(err))
}
