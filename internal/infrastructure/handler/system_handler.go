package handler

import (
	"context"
	"net/http"
	"time"

	_ "github.com/damon-houk/ppd-ingest-service/docs"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/logger"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/metrics"
	"github.com/damon-houk/ppd-ingest-service/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

const docsIndex = "/docs/index.html"

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the operational endpoints: docs, health and metrics
type SystemHandler struct {
	store  Pinger
	logger logger.Logger
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(store Pinger, log logger.Logger) *SystemHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &SystemHandler{
		store:  store,
		logger: log,
	}
}

// Root redirects to the interactive API documentation
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, docsIndex, http.StatusTemporaryRedirect)
}

// Health godoc
// @Summary      Liveness and store reachability
// @Tags         system
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /health [get]
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Health check failed", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Service unavailable",
			"The record store is not reachable", http.StatusServiceUnavailable, requestID)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// RegisterRoutes registers the system routes
func (h *SystemHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.Root).Methods("GET")
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")
	router.PathPrefix("/docs/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	)).Methods("GET")

	h.logger.Info("System routes registered", map[string]interface{}{
		"routes": []string{
			"GET /",
			"GET /health",
			"GET /metrics",
			"GET /docs/*",
		},
	})
}
