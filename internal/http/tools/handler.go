// Package tools exposes the stateless helpers the invoice form calls while the
// user types: payment term reconciliation, NIP checks and hour formatting.
package tools

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/hours"
	"github.com/MrJamesThe3rd/billable/internal/http/respond"
	"github.com/MrJamesThe3rd/billable/internal/nip"
	"github.com/MrJamesThe3rd/billable/internal/payterm"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/payment-term", h.paymentTerm)
	r.Get("/nip/{nip}", h.checkNIP)
	r.Get("/hours", h.formatHours)
}

type paymentTermRequest struct {
	IssueDate   time.Time    `json:"issue_date"`
	DueDate     *time.Time   `json:"due_date"`
	PaymentTerm payterm.Term `json:"payment_term"`
}

type paymentTermResponse struct {
	DueDate     time.Time    `json:"due_date"`
	PaymentTerm payterm.Term `json:"payment_term"`
	Days        int          `json:"days"`
}

// paymentTerm reconciles a term with a due date the way a saved invoice would.
func (h *Handler) paymentTerm(w http.ResponseWriter, r *http.Request) {
	var req paymentTermRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if req.IssueDate.IsZero() {
		respond.Error(w, r, apperror.Field("issue_date", "required"))
		return
	}

	due, term, err := payterm.Reconcile(req.IssueDate, req.DueDate, req.PaymentTerm)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, paymentTermResponse{
		DueDate:     due,
		PaymentTerm: term,
		Days:        payterm.DaysBetween(req.IssueDate, due),
	})
}

type nipResponse struct {
	NIP   string `json:"nip"`
	Valid bool   `json:"valid"`
}

func (h *Handler) checkNIP(w http.ResponseWriter, r *http.Request) {
	n := nip.Normalize(chi.URLParam(r, "nip"))

	respond.JSON(w, r, http.StatusOK, nipResponse{NIP: n, Valid: nip.Valid(n)})
}

type hoursResponse struct {
	Hours     decimal.Decimal `json:"hours"`
	Label     string          `json:"label"`
	Canonical string          `json:"canonical"`
}

// formatHours parses ?value= in any accepted notation, e.g. "1:30" or "1h 30m".
func (h *Handler) formatHours(w http.ResponseWriter, r *http.Request) {
	v, err := hours.Parse(r.URL.Query().Get("value"))
	if err != nil {
		respond.Error(w, r, apperror.Field("value", "%v", err))
		return
	}

	respond.JSON(w, r, http.StatusOK, hoursResponse{
		Hours:     v,
		Label:     hours.Format(v),
		Canonical: hours.Canonical(v),
	})
}
