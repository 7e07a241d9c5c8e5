package query

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/leg100/lastquery/internal"
	"github.com/leg100/lastquery/internal/logr"
)

const (
	// Path is the route on which the query handler is served.
	Path = "/api/query"
	// PersistentPath is an alias of Path served only when the record may be
	// cleared, i.e. when backed by a durable store.
	PersistentPath = "/api/query-persistent"
)

type (
	// Handler serves the query API. Both the volatile and the durable
	// deployments use this handler; they differ only in the store behind the
	// service and in whether clearing is permitted.
	Handler struct {
		logr.Logger

		svc       *Service
		clearable bool
		methods   string
	}

	errorResponse struct {
		Error   string `json:"error"`
		Message string `json:"message,omitempty"`
	}

	successResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    Record `json:"data,omitempty"`
	}
)

// NewHandler constructs a query handler. If clearable is true then DELETE
// requests clear the stored record; otherwise they are not allowed.
func NewHandler(logger logr.Logger, svc *Service, clearable bool) *Handler {
	methods := []string{http.MethodGet, http.MethodPost}
	if clearable {
		methods = append(methods, http.MethodDelete)
	}
	methods = append(methods, http.MethodOptions)
	return &Handler{
		Logger:    logger,
		svc:       svc,
		clearable: clearable,
		methods:   strings.Join(methods, ","),
	}
}

// AddHandlers registers the query routes. No method matcher is set on the
// routes so that the handler itself answers disallowed methods with CORS
// headers and a JSON body.
func (h *Handler) AddHandlers(r *mux.Router) {
	r.Handle(Path, h)
	if h.clearable {
		r.Handle(PersistentPath, h)
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", h.methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	switch {
	case r.Method == http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		observe(r.Method, http.StatusOK)
	case r.Method == http.MethodPost:
		h.save(w, r)
	case r.Method == http.MethodGet:
		h.get(w, r)
	case r.Method == http.MethodDelete && h.clearable:
		h.clear(w, r)
	default:
		h.respond(w, r, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	}
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Save(r.Context(), r.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, successResponse{
		Success: true,
		Message: "Query saved successfully",
		Data:    rec,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Latest(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, rec)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, successResponse{
		Success: true,
		Message: "Query data cleared",
	})
}

// writeError maps an error to a status code and JSON error body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *internal.ErrMissingParameter
	switch {
	case errors.As(err, &missing):
		h.respond(w, r, http.StatusBadRequest, errorResponse{Error: "Email is required"})
	case errors.Is(err, internal.ErrResourceNotFound):
		h.respond(w, r, http.StatusNotFound, errorResponse{
			Error:   "No query data found",
			Message: "Please submit a query first",
		})
	default:
		h.Error(err, "handling query request", "method", r.Method)
		h.respond(w, r, http.StatusInternalServerError, errorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		})
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, code int, body any) {
	observe(r.Method, code)

	b, err := json.Marshal(body)
	if err != nil {
		h.Error(err, "encoding response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b)
}
