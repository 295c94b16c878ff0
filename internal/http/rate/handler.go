package rate

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/auth"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/http/param"
	"github.com/MrJamesThe3rd/billable/internal/http/respond"
	"github.com/MrJamesThe3rd/billable/internal/rate"
)

type Handler struct {
	svc *rate.Service
	now func() time.Time
}

func NewHandler(svc *rate.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{currency}", h.resolve)
}

// resolve answers with the rate for a foreign currency on ?date=, today by default.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.Require(w, r); !ok {
		return
	}

	cur := currency.Code(strings.ToUpper(chi.URLParam(r, "currency")))
	if !cur.IsForeign() {
		respond.Error(w, r, apperror.Field("currency", "must be a supported foreign currency"))
		return
	}

	date, err := param.OptionalDate(r, "date")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if date == nil {
		date = new(h.now())
	}

	res, err := h.svc.Resolve(r.Context(), cur, *date)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, res)
}
