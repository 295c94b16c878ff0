package matching_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/billable/internal/auth"
	matchinghttp "github.com/MrJamesThe3rd/billable/internal/http/matching"
	"github.com/MrJamesThe3rd/billable/internal/matching"
)

var userID = uuid.New()

func newRouter(t *testing.T) (http.Handler, *matching.MockRepository) {
	repo := matching.NewMockRepository(gomock.NewController(t))

	r := chi.NewRouter()
	r.Route("/matching", matchinghttp.NewHandler(matching.NewService(repo)).Routes)

	return r, repo
}

func do(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	req = req.WithContext(auth.WithUser(req.Context(), userID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Suggest(t *testing.T) {
	type testCase struct {
		name       string
		query      string
		setupMock  func(m *matching.MockRepository)
		wantStatus int
		wantBody   string
	}

	tests := []testCase{
		{
			name:  "Match",
			query: "?raw_description=PR%20review%20%2312",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindMatch(gomock.Any(), userID, "PR review #12").Return("Code review", nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"raw_description":"PR review #12","preferred_description":"Code review"}`,
		},
		{
			name:       "MissingQuery",
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, repo := newRouter(t)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			rec := do(router, httptest.NewRequest(http.MethodGet, "/matching/suggest"+tt.query, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestHandler_Learn(t *testing.T) {
	router, repo := newRouter(t)

	repo.EXPECT().UpsertMapping(gomock.Any(), userID, "standup", "Meetings").Return(nil)

	rec := do(router, httptest.NewRequest(http.MethodPost, "/matching/",
		strings.NewReader(`{"raw_pattern":" standup ","preferred_description":"Meetings"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(router, httptest.NewRequest(http.MethodPost, "/matching/",
		strings.NewReader(`{"raw_pattern":"standup"}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandler_List(t *testing.T) {
	router, repo := newRouter(t)

	repo.EXPECT().ListMappings(gomock.Any(), userID).Return(nil, nil)

	rec := do(router, httptest.NewRequest(http.MethodGet, "/matching/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
