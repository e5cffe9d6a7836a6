// Package api exposes literal coercion over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/psantana5/vaultmod/internal/coerce"
	"github.com/psantana5/vaultmod/internal/overrides"
	"github.com/psantana5/vaultmod/internal/report"
	"github.com/psantana5/vaultmod/pkg/logging"
	"github.com/psantana5/vaultmod/pkg/models"
	"github.com/psantana5/vaultmod/pkg/vlthash"
)

// maxBodyBytes bounds request bodies; literals are short
const maxBodyBytes = 64 << 10

// CoerceRequest asks for one literal to be coerced. Type selects the
// attribute-typed path; Like selects the value-inferred path.
type CoerceRequest struct {
	Type    string `json:"type,omitempty"`
	Like    string `json:"like,omitempty"`
	Literal string `json:"literal"`
}

// HashResponse is the hash32 of a literal
type HashResponse struct {
	Literal string `json:"literal"`
	Hash    uint32 `json:"hash"`
	Hex     string `json:"hex"`
	Signed  int32  `json:"signed"`
}

// ErrorResponse describes a rejected request
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Handler serves the coercion API
type Handler struct {
	applier  *overrides.Applier
	metrics  *report.Metrics
	failures *report.FailureLog
	logger   *logging.Logger
	started  time.Time
}

// NewHandler creates a handler. metrics and failures may be nil.
func NewHandler(applier *overrides.Applier, metrics *report.Metrics, failures *report.FailureLog, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{
		applier:  applier,
		metrics:  metrics,
		failures: failures,
		logger:   logger,
		started:  time.Now(),
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/coerce", h.Coerce).Methods("POST")
	r.HandleFunc("/coerce/example", h.CoerceByExample).Methods("POST")
	r.HandleFunc("/hash/{literal}", h.Hash).Methods("GET")
	r.HandleFunc("/failures", h.RecentFailures).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")
	if h.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{})).Methods("GET")
	}
}

// Coerce handles POST /coerce
func (h *Handler) Coerce(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.Type == "" {
		writeError(w, http.StatusBadRequest, "type is required", "request")
		return
	}
	h.apply(w, overrides.FieldOverride{Field: "request", Type: req.Type, Value: req.Literal})
}

// CoerceByExample handles POST /coerce/example
func (h *Handler) CoerceByExample(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.Type != "" {
		writeError(w, http.StatusBadRequest, "use like, not type, on this route", "request")
		return
	}
	h.apply(w, overrides.FieldOverride{Field: "request", Like: req.Like, Value: req.Literal})
}

func (h *Handler) apply(w http.ResponseWriter, f overrides.FieldOverride) {
	out, err := h.applier.ApplyField(f)
	if err != nil {
		kind := models.ErrorTypeOf(err)
		if h.failures != nil {
			h.failures.Record(report.Failure{
				Field:   f.Type + f.Like,
				Literal: f.Value,
				Kind:    kind.String(),
				Reason:  err.Error(),
			})
		}
		h.logger.Debug("coercion rejected", logging.Fields{"literal": f.Value, "error": err.Error()})
		writeError(w, statusFor(err), err.Error(), kind.String())
		return
	}
	out.Field = ""
	writeJSON(w, http.StatusOK, out)
}

// Hash handles GET /hash/{literal}
func (h *Handler) Hash(w http.ResponseWriter, r *http.Request) {
	literal := mux.Vars(r)["literal"]
	sum := vlthash.Hash32(literal)
	writeJSON(w, http.StatusOK, HashResponse{
		Literal: literal,
		Hash:    sum,
		Hex:     coerce.FormatHex(sum),
		Signed:  int32(sum),
	})
}

// RecentFailures handles GET /failures?limit=N
func (h *Handler) RecentFailures(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", "request")
			return
		}
		limit = n
	}
	failures := []report.Failure{}
	if h.failures != nil {
		failures = h.failures.GetRecent(limit)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"failures": failures,
		"count":    len(failures),
	})
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "healthy",
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"process": processStats(),
	}
	if h.metrics != nil {
		resp["counters"] = h.metrics.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (CoerceRequest, bool) {
	var req CoerceRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error(), "request")
		return req, false
	}
	return req, true
}

// statusFor maps coercion errors to HTTP statuses. An unknown wrapper type
// is a schema problem, not a bad literal.
func statusFor(err error) int {
	if errors.Is(err, models.ErrSchema) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, kind string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Kind: kind})
}
