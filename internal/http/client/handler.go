package client

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/auth"
	"github.com/MrJamesThe3rd/billable/internal/client"
	"github.com/MrJamesThe3rd/billable/internal/http/param"
	"github.com/MrJamesThe3rd/billable/internal/http/respond"
)

type Handler struct {
	svc *client.Service
}

func NewHandler(svc *client.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/lookup", h.lookup)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	var req client.Params
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.Create(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, c)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	clients, err := h.svc.List(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if clients == nil {
		clients = []*client.Client{}
	}

	respond.JSON(w, r, http.StatusOK, clients)
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

	c, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, c)
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

	var req client.Params
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.Update(r.Context(), userID, id, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, c)
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

// lookup prefills a client form from the VAT registry.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.Require(w, r); !ok {
		return
	}

	n := r.URL.Query().Get("nip")
	if n == "" {
		respond.Error(w, r, apperror.Field("nip", "required"))
		return
	}

	prefill, err := h.svc.Lookup(r.Context(), n)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, prefill)
}
