package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/billable/internal/http/respond"
)

// Middleware rejects requests without a valid bearer token.
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				respond.Message(w, r, http.StatusUnauthorized, ErrMissingToken.Error())
				return
			}

			userID, err := v.Verify(token)
			if err != nil {
				slog.Debug("rejected token", "error", err, "request_id", middleware.GetReqID(r.Context()))
				respond.Message(w, r, http.StatusUnauthorized, ErrInvalidToken.Error())

				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
		})
	}
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

// Require returns the authenticated user or answers 401.
func Require(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := UserID(r.Context())
	if err != nil {
		respond.Message(w, r, http.StatusUnauthorized, err.Error())
		return uuid.Nil, false
	}

	return userID, true
}
