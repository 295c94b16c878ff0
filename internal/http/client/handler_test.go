package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/auth"
	"github.com/MrJamesThe3rd/billable/internal/client"
	clienthttp "github.com/MrJamesThe3rd/billable/internal/http/client"
	"github.com/MrJamesThe3rd/billable/internal/http/respond"
	"github.com/MrJamesThe3rd/billable/internal/registry"
)

var userID = uuid.New()

func newRouter(t *testing.T) (http.Handler, *client.MockRepository, *client.MockRegistry) {
	ctrl := gomock.NewController(t)
	repo := client.NewMockRepository(ctrl)
	reg := client.NewMockRegistry(ctrl)

	r := chi.NewRouter()
	r.Route("/clients", clienthttp.NewHandler(client.NewService(repo, reg)).Routes)

	return r, repo, reg
}

func do(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	req = req.WithContext(auth.WithUser(req.Context(), userID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Create(t *testing.T) {
	router, repo, _ := newRouter(t)

	repo.EXPECT().CreateClient(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *client.Client) error {
			c.ID = uuid.New()
			return nil
		})

	body := `{"name":"Acme","nip":"526-025-02-74","street":"Prosta 1","city":"Warszawa","postal_code":"00-001","country":"Poland","currency":"EUR"}`
	rec := do(router, httptest.NewRequest(http.MethodPost, "/clients/", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got client.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "5260250274", got.NIP)
	assert.Equal(t, "PL", got.Address.Country)
}

func TestHandler_Delete(t *testing.T) {
	router, repo, _ := newRouter(t)
	id := uuid.New()

	repo.EXPECT().DeleteClient(gomock.Any(), userID, id).Return(nil)

	rec := do(router, httptest.NewRequest(http.MethodDelete, "/clients/"+id.String(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_Lookup(t *testing.T) {
	type testCase struct {
		name       string
		query      string
		setupMock  func(m *client.MockRegistry)
		wantStatus int
		wantBody   func(t *testing.T, body []byte)
	}

	tests := []testCase{
		{
			name:  "Found",
			query: "?nip=PL5260250274",
			setupMock: func(m *client.MockRegistry) {
				m.EXPECT().LookupNIP(gomock.Any(), "5260250274").Return(&registry.Company{
					Name:       "Acme",
					NIP:        "5260250274",
					Street:     "Prosta 1",
					PostalCode: "00-001",
					City:       "Warszawa",
					StatusVAT:  "Czynny",
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody: func(t *testing.T, body []byte) {
				var p client.Prefill
				require.NoError(t, json.Unmarshal(body, &p))
				assert.Equal(t, "Acme", p.Name)
				assert.Equal(t, "Warszawa", p.Address.City)
			},
		},
		{
			name:       "Missing",
			query:      "",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "BadChecksum",
			query:      "?nip=1234567890",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:  "RegistryDown",
			query: "?nip=5260250274",
			setupMock: func(m *client.MockRegistry) {
				m.EXPECT().LookupNIP(gomock.Any(), "5260250274").Return(nil, errors.New("timeout"))
			},
			wantStatus: http.StatusBadGateway,
			wantBody: func(t *testing.T, body []byte) {
				var e respond.ErrorBody
				require.NoError(t, json.Unmarshal(body, &e))
				assert.Equal(t, "registry", e.Service)
				assert.True(t, e.ManualEntry)
			},
		},
		{
			name:  "NotRegistered",
			query: "?nip=5260250274",
			setupMock: func(m *client.MockRegistry) {
				m.EXPECT().LookupNIP(gomock.Any(), "5260250274").Return(nil, registry.ErrNotRegistered)
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _, reg := newRouter(t)
			if tt.setupMock != nil {
				tt.setupMock(reg)
			}

			rec := do(router, httptest.NewRequest(http.MethodGet, "/clients/lookup"+tt.query, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody != nil {
				tt.wantBody(t, rec.Body.Bytes())
			}
		})
	}
}

func TestHandler_GetNotFound(t *testing.T) {
	router, repo, _ := newRouter(t)
	id := uuid.New()

	repo.EXPECT().GetClient(gomock.Any(), userID, id).Return(nil, apperror.ErrNotFound)

	rec := do(router, httptest.NewRequest(http.MethodGet, "/clients/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
