package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aopsample/exectime/pkg/logging"
	"github.com/aopsample/exectime/pkg/ratelimit"
	"github.com/aopsample/exectime/pkg/tracing"
)

// RouterOptions selects the optional parts of the router
type RouterOptions struct {
	// Metrics is served at /metrics when set
	Metrics http.Handler
	// Tracer wraps every route in a server span when set
	Tracer *tracing.Provider
	// Limiter guards /order per client IP when set
	Limiter *ratelimit.Limiter
}

// NewRouter builds the service router
func NewRouter(h *Handler, logger *logging.Logger, opts RouterOptions) *mux.Router {
	router := mux.NewRouter()

	router.Use(RequestID(logger))
	if opts.Tracer != nil {
		router.Use(tracing.HTTPMiddleware(opts.Tracer, routeSpanName))
	}

	var orderMiddleware []mux.MiddlewareFunc
	if opts.Limiter != nil {
		orderMiddleware = append(orderMiddleware, opts.Limiter.Middleware(ratelimit.IPKeyFunc))
	}
	h.RegisterRoutes(router, orderMiddleware...)

	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics).Methods(http.MethodGet)
	}

	return router
}
