package invoice

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/auth"
	"github.com/MrJamesThe3rd/billable/internal/http/param"
	"github.com/MrJamesThe3rd/billable/internal/http/respond"
	"github.com/MrJamesThe3rd/billable/internal/invoice"
	"github.com/MrJamesThe3rd/billable/internal/render"
)

type Handler struct {
	svc *invoice.Service
	pdf *render.Service
}

func NewHandler(svc *invoice.Service, pdf *render.Service) *Handler {
	return &Handler{svc: svc, pdf: pdf}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/preview", h.preview)
	r.Get("/totals", h.totals)
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/issue", h.issue)
	r.Post("/{id}/paid", h.markPaid)
	r.Get("/{id}/pdf", h.downloadPDF)
	r.Post("/{id}/archive", h.archive)
}

type invoiceResponse struct {
	*invoice.Invoice
	Summary invoice.Summary `json:"summary"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	return invoiceResponse{Invoice: inv, Summary: inv.Summary()}
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	var req invoice.DraftParams
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, summary, err := h.svc.Preview(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, invoiceResponse{Invoice: inv, Summary: summary})
}

func listFilter(r *http.Request) (invoice.ListFilter, error) {
	var (
		filter invoice.ListFilter
		err    error
	)

	if filter.ClientID, err = param.OptionalID(r, "client_id"); err != nil {
		return filter, err
	}

	if s := r.URL.Query().Get("status"); s != "" {
		status := invoice.Status(s)
		if !status.Valid() {
			return filter, apperror.Field("status", "must be one of draft issued paid")
		}

		filter.Status = &status
	}

	if filter.StartDate, err = param.OptionalDate(r, "start_date"); err != nil {
		return filter, err
	}

	if filter.EndDate, err = param.OptionalDate(r, "end_date"); err != nil {
		return filter, err
	}

	return filter, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	filter, err := listFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	invoices, err := h.svc.List(r.Context(), userID, filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]invoiceResponse, len(invoices))
	for i, inv := range invoices {
		resp[i] = toResponse(inv)
	}

	respond.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	filter, err := listFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	totals, err := h.svc.Totals(r.Context(), userID, filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, totals)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	var req invoice.DraftParams
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Create(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, toResponse(inv))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	id, err := param.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(inv))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	id, err := param.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req invoice.DraftParams
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Update(r.Context(), userID, id, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(inv))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	id, err := param.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	id, err := param.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.Issue(r.Context(), userID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(inv))
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	id, err := param.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inv, err := h.svc.MarkPaid(r.Context(), userID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, toResponse(inv))
}

func (h *Handler) downloadPDF(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	id, err := param.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	pdf, filename, err := h.pdf.PDF(r.Context(), userID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))

	_, _ = w.Write(pdf)
}

type archiveResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	id, err := param.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	url, expires, err := h.pdf.Archive(r.Context(), userID, id)
	if errors.Is(err, render.ErrArchiveDisabled) {
		respond.Message(w, r, http.StatusServiceUnavailable, err.Error())
		return
	}

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, archiveResponse{URL: url, ExpiresAt: expires})
}
