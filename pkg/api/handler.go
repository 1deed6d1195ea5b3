package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aopsample/exectime/pkg/logging"
)

// OrderProcessor runs one order. The server receives it already timed.
type OrderProcessor func(ctx context.Context) error

// Handler serves the order API
type Handler struct {
	process OrderProcessor
	logger  *logging.Logger
}

// NewHandler creates a new handler around process
func NewHandler(process OrderProcessor, logger *logging.Logger) *Handler {
	return &Handler{
		process: process,
		logger:  logger,
	}
}

// RegisterRoutes registers the API routes. Extra middleware is applied to
// /order only.
func (h *Handler) RegisterRoutes(r *mux.Router, orderMiddleware ...mux.MiddlewareFunc) {
	var order http.Handler = http.HandlerFunc(h.ProcessOrder)
	for i := len(orderMiddleware) - 1; i >= 0; i-- {
		order = orderMiddleware[i](order)
	}

	r.Handle("/order", order).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
}

// ProcessOrder runs one order and answers with an empty body
func (h *Handler) ProcessOrder(w http.ResponseWriter, r *http.Request) {
	err := h.process(r.Context())
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	logger := LoggerFromContext(r.Context(), h.logger)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		logger.Warn("Order processing did not finish", map[string]interface{}{"error": err})
		http.Error(w, "order processing timed out", http.StatusGatewayTimeout)
	default:
		logger.Error("Order processing failed", map[string]interface{}{"error": err})
		http.Error(w, "order processing failed", http.StatusInternalServerError)
	}
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}
