package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/alexiusacademia/goliq/internal/liquefaction"
	"github.com/alexiusacademia/goliq/internal/metrics"
	"github.com/alexiusacademia/goliq/internal/report"
	"github.com/alexiusacademia/goliq/internal/screening"
	"github.com/alexiusacademia/goliq/internal/siteio"
)

// maxBodyBytes bounds request documents
const maxBodyBytes = 1 << 20

// Options configures the API router
type Options struct {
	Assessor *screening.Assessor
	Logger   *slog.Logger
	Metrics  *metrics.Collector

	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit float64
	Burst     int

	// Report fills the header of generated PDF reports.
	Report report.Meta

	// BatchWorkers bounds concurrent assessments of one batch request.
	BatchWorkers int
}

// Handler serves the screening API
type Handler struct {
	assessor *screening.Assessor
	logger   *slog.Logger
	metrics  *metrics.Collector
	report   report.Meta
	workers  int
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// SafetyFactorResponse is the outcome of a single calculation
type SafetyFactorResponse struct {
	liquefaction.Result
	Class          liquefaction.FSClass `json:"class"`
	Interpretation string               `json:"interpretation"`
}

// ProfileResponse is the evaluation of every layer of a profile. Classifier
// is set when a model is loaded, one entry per layer in the same order.
type ProfileResponse struct {
	Name string `json:"name,omitempty"`
	*liquefaction.ProfileResult
	Classifier []screening.LayerRisk `json:"classifier,omitempty"`
}

// BatchRequest holds the sites of a batch assessment
type BatchRequest struct {
	Sites []screening.Input `json:"sites"`
}

// BatchResponse holds one assessment per requested site, in request order
type BatchResponse struct {
	Count   int                     `json:"count"`
	Results []*screening.Assessment `json:"results"`
}

// HealthResponse reports liveness and classifier availability
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// NewRouter builds the API with its middleware chain.
func NewRouter(opts Options) *mux.Router {
	h := &Handler{
		assessor: opts.Assessor,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		report:   opts.Report,
		workers:  opts.BatchWorkers,
	}
	if h.assessor == nil {
		h.assessor = screening.NewAssessor(nil, opts.Logger)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	router := mux.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(accessMiddleware(h.logger, h.metrics))

	api := router.PathPrefix("/api/v1").Subrouter()
	if opts.RateLimit > 0 {
		limiter := NewIPRateLimiter(rate.Limit(opts.RateLimit), opts.Burst, h.metrics)
		api.Use(limiter.LimitMiddleware)
	}
	h.RegisterRoutes(api)

	router.HandleFunc("/healthz", h.Health).Methods("GET")
	if h.metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(h.metrics.Registry, promhttp.HandlerOpts{})).Methods("GET")
	}

	return router
}

// RegisterRoutes registers the calculation routes on an /api/v1 router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/safety-factor", h.SafetyFactor).Methods("POST")
	router.HandleFunc("/assess", h.Assess).Methods("POST")
	router.HandleFunc("/profile", h.Profile).Methods("POST")
	router.HandleFunc("/report", h.Report).Methods("POST")
	router.HandleFunc("/batch", h.Batch).Methods("POST")
}

// SafetyFactor handles POST /api/v1/safety-factor. Calculation failures
// are part of a successful response.
func (h *Handler) SafetyFactor(w http.ResponseWriter, r *http.Request) {
	var in liquefaction.SiteInput
	if !h.decode(w, r, siteio.SchemaSite, &in) {
		return
	}

	res := liquefaction.ComputeInput(in)
	h.recordResult(r, res)

	class := res.Class()
	h.sendJSON(w, SafetyFactorResponse{Result: res, Class: class, Interpretation: class.Interpretation()}, http.StatusOK)
}

// Assess handles POST /api/v1/assess
func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	var in screening.Input
	if !h.decode(w, r, siteio.SchemaSite, &in) {
		return
	}

	a := h.assess(r, in)
	h.sendJSON(w, a, http.StatusOK)
}

// Profile handles POST /api/v1/profile
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	var p liquefaction.Profile
	if !h.decode(w, r, siteio.SchemaProfile, &p) {
		return
	}

	res, err := p.Evaluate()
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, lr := range res.Layers {
		h.recordResult(r, lr.Result)
	}

	resp := ProfileResponse{Name: p.Name, ProfileResult: res}
	if h.assessor.Loaded() {
		resp.Classifier = h.assessor.ProfileRisks(res)
		for _, lr := range resp.Classifier {
			if lr.Probability != nil && h.metrics != nil {
				h.metrics.RecordProbability(*lr.Probability)
			}
		}
	}
	h.sendJSON(w, resp, http.StatusOK)
}

// Batch handles POST /api/v1/batch
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !h.decode(w, r, siteio.SchemaBatch, &req) {
		return
	}

	start := time.Now()
	results, err := h.assessor.AssessAll(r.Context(), req.Sites, h.workers)
	if err != nil {
		h.sendError(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}
	for _, a := range results {
		h.recordResult(r, a.Traditional)
		if a.Probability != nil && h.metrics != nil {
			h.metrics.RecordProbability(*a.Probability)
		}
	}
	if h.metrics != nil {
		h.metrics.RecordBatch(len(results), time.Since(start))
	}

	h.sendJSON(w, BatchResponse{Count: len(results), Results: results}, http.StatusOK)
}

// Report handles POST /api/v1/report
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	var in screening.Input
	if !h.decode(w, r, siteio.SchemaSite, &in) {
		return
	}

	a := h.assess(r, in)
	meta := h.report
	meta.Date = time.Now()

	var buf bytes.Buffer
	if err := report.Write(&buf, a, meta); err != nil {
		h.logger.Error("api: report generation failed", "request_id", RequestID(r.Context()), "err", err)
		h.sendError(w, "report generation error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="liquefaction-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, HealthResponse{Status: "ok", ModelLoaded: h.assessor.Loaded()}, http.StatusOK)
}

func (h *Handler) assess(r *http.Request, in screening.Input) *screening.Assessment {
	a := h.assessor.Assess(in)
	h.recordResult(r, a.Traditional)
	if a.Probability != nil && h.metrics != nil {
		h.metrics.RecordProbability(*a.Probability)
	}
	if a.ClassifierError != "" {
		h.logger.Debug("api: classifier unavailable",
			"request_id", RequestID(r.Context()), "reason", a.ClassifierError)
	}
	return a
}

// decode reads the body, validates it against schema and decodes it into v.
// It writes a 400 response and returns false on any error.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, schema string, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.sendError(w, fmt.Sprintf("read body: %v", err), http.StatusBadRequest)
		return false
	}
	if err := siteio.Decode(body, siteio.FormatJSON, schema, v); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) recordResult(r *http.Request, res liquefaction.Result) {
	kind := ""
	if res.Failure != nil {
		kind = res.Failure.Kind.String()
		h.logger.Info("api: calculation failed",
			"request_id", RequestID(r.Context()),
			"kind", kind,
			"step", res.Failure.Step,
			"err", res.Failure.Detail,
		)
	}
	if h.metrics != nil {
		h.metrics.RecordCalculation(string(res.Class()), res.SafetyFactor(), kind)
	}
}

// sendJSON sends a JSON response
func (h *Handler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, message string, statusCode int) {
	sendError(w, message, statusCode)
}

func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}
