package timeentry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/auth"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/export"
	"github.com/MrJamesThe3rd/billable/internal/http/param"
	"github.com/MrJamesThe3rd/billable/internal/http/respond"
	"github.com/MrJamesThe3rd/billable/internal/importer"
	"github.com/MrJamesThe3rd/billable/internal/importer/timesheet"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
)

const maxUpload = 10 << 20

type Handler struct {
	svc       *timeentry.Service
	importSvc *importer.Service
	exportSvc *export.Service
}

func NewHandler(svc *timeentry.Service, importSvc *importer.Service, exportSvc *export.Service) *Handler {
	return &Handler{
		svc:       svc,
		importSvc: importSvc,
		exportSvc: exportSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/import", h.importCSV)
	r.Post("/import/confirm", h.confirmImport)
	r.Get("/export", h.exportCSV)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	var req timeentry.CreateParams
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := h.svc.Create(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, e)
}

func listFilter(r *http.Request) (timeentry.ListFilter, error) {
	var (
		filter timeentry.ListFilter
		err    error
	)

	if filter.ClientID, err = param.OptionalID(r, "client_id"); err != nil {
		return filter, err
	}

	if filter.StartDate, err = param.OptionalDate(r, "start_date"); err != nil {
		return filter, err
	}

	if filter.EndDate, err = param.OptionalDate(r, "end_date"); err != nil {
		return filter, err
	}

	if filter.Invoiced, err = param.OptionalBool(r, "invoiced"); err != nil {
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

	entries, err := h.svc.List(r.Context(), userID, filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if entries == nil {
		entries = []*timeentry.Entry{}
	}

	respond.JSON(w, r, http.StatusOK, entries)
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

	e, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, e)
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

	var req timeentry.CreateParams
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	e, err := h.svc.Update(r.Context(), userID, id, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, e)
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

type importResponse struct {
	Imported []*timeentry.Entry `json:"imported"`
}

type conflictDTO struct {
	Incoming timeentry.CreateParams `json:"incoming"`
	Existing *timeentry.Entry       `json:"existing"`
}

type conflictResponse struct {
	New       []timeentry.CreateParams `json:"new"`
	Conflicts []conflictDTO            `json:"conflicts"`
}

type confirmRequest struct {
	Params []timeentry.CreateParams `json:"params"`
}

func importOptions(r *http.Request) (importer.Options, error) {
	var opts importer.Options

	clientID, err := uuid.Parse(r.FormValue("client_id"))
	if err != nil {
		return opts, apperror.Field("client_id", "required")
	}

	opts.ClientID = clientID

	if s := r.FormValue("rate"); s != "" {
		rate, err := decimal.NewFromString(s)
		if err != nil || rate.IsNegative() {
			return opts, apperror.Field("rate", "must be a non-negative number")
		}

		opts.Rate = &rate
	}

	if s := r.FormValue("currency"); s != "" {
		opts.Currency = currency.Code(s)
		if !opts.Currency.Valid() {
			return opts, apperror.Field("currency", "unsupported currency")
		}
	}

	return opts, nil
}

// importCSV stores the rows of an uploaded timesheet. When some rows match
// existing entries nothing is stored and the split is returned with 409, the
// client then posts the rows it wants to /import/confirm.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respond.Error(w, r, apperror.Field("file", "failed to parse form: %v", err))
		return
	}

	opts, err := importOptions(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	parser := timesheet.NewParser()
	if format := r.FormValue("format"); format != "" {
		if parser, err = timesheet.WithProfile(format); err != nil {
			respond.Error(w, r, err)
			return
		}
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, apperror.Field("file", "required"))
		return
	}
	defer file.Close()

	params, err := h.importSvc.Params(r.Context(), userID, parser, file, opts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	result, err := h.svc.ImportBatch(r.Context(), userID, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := conflictResponse{
			New:       result.New,
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}

		if resp.New == nil {
			resp.New = []timeentry.CreateParams{}
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{Incoming: c.Incoming, Existing: c.Existing})
		}

		respond.JSON(w, r, http.StatusConflict, resp)

		return
	}

	imported := result.Imported
	if imported == nil {
		imported = []*timeentry.Entry{}
	}

	respond.JSON(w, r, http.StatusCreated, importResponse{Imported: imported})
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	var req confirmRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	entries, err := h.svc.CreateBatch(r.Context(), userID, req.Params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if entries == nil {
		entries = []*timeentry.Entry{}
	}

	respond.JSON(w, r, http.StatusCreated, importResponse{Imported: entries})
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.Require(w, r)
	if !ok {
		return
	}

	filter, err := listFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(filter, time.Now())))

	// Listing happens before the first byte is written, so lookup failures
	// still get a JSON error.
	if _, err := h.exportSvc.WriteCSV(r.Context(), w, userID, filter); err != nil {
		respond.Error(w, r, err)
		return
	}
}
