package matching

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/auth"
	"github.com/MrJamesThe3rd/billable/internal/http/respond"
	"github.com/MrJamesThe3rd/billable/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Get("/", h.list)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	RawDescription       string `json:"raw_description"`
	PreferredDescription string `json:"preferred_description"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	rawDesc := r.URL.Query().Get("raw_description")
	if rawDesc == "" {
		respond.Error(w, r, apperror.Field("raw_description", "required"))
		return
	}

	preferred, err := h.svc.Suggest(r.Context(), userID, rawDesc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, suggestResponse{
		RawDescription:       rawDesc,
		PreferredDescription: preferred,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	mappings, err := h.svc.List(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if mappings == nil {
		mappings = []matching.Mapping{}
	}

	respond.JSON(w, r, http.StatusOK, mappings)
}

type learnRequest struct {
	RawPattern           string `json:"raw_pattern"`
	PreferredDescription string `json:"preferred_description"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	var req learnRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Learn(r.Context(), userID, req.RawPattern, req.PreferredDescription); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
