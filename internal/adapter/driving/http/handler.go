package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/paygate/internal/application"
	"github.com/ericfisherdev/paygate/internal/domain/model"
	"github.com/ericfisherdev/paygate/internal/domain/port/driven"
)

// maxBodyBytes caps promotion request bodies.
const maxBodyBytes = 64 << 10

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	resolver  *application.OriginResolver
	promotion *application.PromotionService
	db        Pinger
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	resolver *application.OriginResolver,
	promotion *application.PromotionService,
	db Pinger,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		resolver:  resolver,
		promotion: promotion,
		db:        db,
		logger:    logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware. metricsHandler is mounted at /metrics
// and observer receives one observation per request; either may be nil.
func NewServeMux(h *Handler, logger *slog.Logger, metricsHandler http.Handler, observer RequestObserver) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/providers/{provider}/origins", h.ResolveOrigins)
	mux.HandleFunc("POST /api/v1/providers/{provider}/promotions", h.Promote)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, observer, wrapped)

	return wrapped
}

// ResolveOrigins returns every candidate credential for the provider and the
// one currently in effect for the requested target scope.
func (h *Handler) ResolveOrigins(w http.ResponseWriter, r *http.Request) {
	provider := strings.TrimSpace(r.PathValue("provider"))

	target := model.ScopeType(strings.TrimSpace(r.URL.Query().Get("target")))
	if target != "" && !target.Valid() {
		writeError(w, http.StatusBadRequest, "target must be one of platform, partner, tenant")
		return
	}

	res, err := h.resolver.Resolve(r.Context(), provider, target)
	if err != nil {
		h.writeServiceError(w, "failed to resolve origins", err, "provider", provider)
		return
	}

	writeJSON(w, http.StatusOK, toResolutionResponse(res))
}

// Promote copies a candidate credential to platform scope after
// reauthenticating the acting operator.
func (h *Handler) Promote(w http.ResponseWriter, r *http.Request) {
	provider := strings.TrimSpace(r.PathValue("provider"))

	var req PromotionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	candidate, msg := req.Candidate.toCandidate(provider)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if strings.TrimSpace(req.Identity) == "" {
		writeError(w, http.StatusBadRequest, "identity is required")
		return
	}

	account, err := h.promotion.Promote(r.Context(), candidate, req.Identity, req.Secret)
	if err != nil {
		h.writeServiceError(w, "failed to promote credential", err,
			"provider", provider, "candidate_id", candidate.ID)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(*account))
}

// Health returns the service health status. The store is pinged when configured.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			h.logger.Error("health check ping failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "unavailable",
				Time:   time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeServiceError maps application and port sentinels to HTTP statuses.
// Only unexpected failures are logged here; the services log their own outcomes.
func (h *Handler) writeServiceError(w http.ResponseWriter, msg string, err error, attrs ...any) {
	switch {
	case errors.Is(err, application.ErrInvalidCredential):
		writeError(w, http.StatusUnauthorized, "incorrect password, try again")
	case errors.Is(err, application.ErrSourceNotFound):
		writeError(w, http.StatusNotFound, "promotion source not found")
	case errors.Is(err, driven.ErrConflict):
		writeError(w, http.StatusConflict, "credential conflicts with stored state")
	case errors.Is(err, driven.ErrEncryptionKeyNotSet):
		writeError(w, http.StatusServiceUnavailable, "credential encryption key not configured")
	case errors.Is(err, driven.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "credential store unavailable")
	default:
		h.logger.Error(msg, append(attrs, "error", err)...)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
