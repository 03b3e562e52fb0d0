// Package server exposes the affordability engine over HTTP. Every request
// is an independent, side-effect-free engine invocation; only the scenario
// store carries state between requests.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/mlachapelle/maisonqc/internal/config"
	"github.com/mlachapelle/maisonqc/internal/engine"
	"github.com/mlachapelle/maisonqc/internal/store"
)

type handler struct {
	logger      *zap.Logger
	store       *store.Store
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler serving the calculation API and the
// scenario store.
func NewHandler(logger *zap.Logger, scenarioStore *store.Store, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		store:       scenarioStore,
		maxBodySize: cfg.BodySizeBytes(),
		version:     trimmedVersion,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", h.handleCalculate)
		r.Post("/export", h.handleExport)
		r.Post("/import", h.handleImport)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.handleScenarioList)
			r.Post("/", h.handleScenarioSave)
			r.Get("/{id}", h.handleScenarioGet)
			r.Put("/{id}", h.handleScenarioUpdate)
			r.Delete("/{id}", h.handleScenarioDelete)
			r.Post("/{id}/calculate", h.handleScenarioCalculate)
		})

		r.Get("/health", h.handleHealth)
		r.Get("/version", h.handleVersion)
	})

	return r
}

// requestLogger logs one line per request with structured fields.
func (h *handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)
		h.logger.Info("request handled",
			zap.String("op", "server.request"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type calculateResponse struct {
	Snapshot engine.Snapshot `json:"snapshot"`
	Warnings []string        `json:"warnings,omitempty"`
	Duration string          `json:"duration"`
}

func (h *handler) decodeConfiguration(w http.ResponseWriter, r *http.Request, op string) (*config.Configuration, bool) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var cfg config.Configuration
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return nil, false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode scenario: %v", err), op)
		return nil, false
	}
	return &cfg, true
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"
	start := time.Now()

	cfg, ok := h.decodeConfiguration(w, r, op)
	if !ok {
		return
	}

	warnings := cfg.ValidateConfiguration()
	snapshot := engine.Compute(h.logger, cfg.EngineInput())

	h.writeJSON(w, http.StatusOK, calculateResponse{
		Snapshot: snapshot,
		Warnings: warnings,
		Duration: time.Since(start).String(),
	})
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"

	cfg, ok := h.decodeConfiguration(w, r, op)
	if !ok {
		return
	}

	state := cfg.ExportState(time.Now())
	h.writeJSON(w, http.StatusOK, state)
}

func (h *handler) handleImport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleImport"

	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to read state: %v", err), op)
		return
	}

	cfg, err := config.ImportState(raw)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusOK, cfg)
}

type scenarioSaveRequest struct {
	Name  string          `json:"name"`
	State json.RawMessage `json:"state"`
}

func (h *handler) handleScenarioSave(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioSave"

	name, state, ok := h.decodeScenarioSave(w, r, op)
	if !ok {
		return
	}

	scenario, err := h.store.Save(r.Context(), name, state)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save scenario: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusCreated, scenario)
}

func (h *handler) handleScenarioUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioUpdate"

	name, state, ok := h.decodeScenarioSave(w, r, op)
	if !ok {
		return
	}

	scenario, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), name, state)
	if errors.Is(err, store.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "scenario not found", op)
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to update scenario: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, scenario)
}

func (h *handler) decodeScenarioSave(w http.ResponseWriter, r *http.Request, op string) (string, []byte, bool) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}

	var request scenarioSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode scenario: %v", err), op)
		return "", nil, false
	}
	if strings.TrimSpace(request.Name) == "" {
		h.respondError(w, http.StatusBadRequest, "scenario name is required", op)
		return "", nil, false
	}

	// Reject states the engine could not reconstruct an input from.
	if _, err := config.ImportState(request.State); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return "", nil, false
	}

	return request.Name, request.State, true
}

func (h *handler) handleScenarioList(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioList"

	scenarios, err := h.store.List(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list scenarios: %v", err), op)
		return
	}
	if scenarios == nil {
		scenarios = []store.Scenario{}
	}

	h.writeJSON(w, http.StatusOK, scenarios)
}

func (h *handler) handleScenarioGet(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioGet"

	scenario, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "scenario not found", op)
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load scenario: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, scenario)
}

func (h *handler) handleScenarioDelete(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioDelete"

	err := h.store.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "scenario not found", op)
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete scenario: %v", err), op)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleScenarioCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScenarioCalculate"
	start := time.Now()

	scenario, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "scenario not found", op)
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load scenario: %v", err), op)
		return
	}

	cfg, err := config.ImportState(scenario.State)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, err.Error(), op)
		return
	}

	warnings := cfg.ValidateConfiguration()
	snapshot := engine.Compute(h.logger, cfg.EngineInput())

	h.writeJSON(w, http.StatusOK, calculateResponse{
		Snapshot: snapshot,
		Warnings: warnings,
		Duration: time.Since(start).String(),
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.HealthCheck(r.Context()); err != nil {
			h.respondError(w, http.StatusServiceUnavailable, fmt.Sprintf("database unavailable: %v", err), "server.handleHealth")
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
