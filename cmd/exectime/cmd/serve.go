package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aopsample/exectime/internal/config"
	"github.com/aopsample/exectime/internal/observe"
	"github.com/aopsample/exectime/internal/order"
	"github.com/aopsample/exectime/internal/report"
	"github.com/aopsample/exectime/pkg/api"
	"github.com/aopsample/exectime/pkg/logging"
	"github.com/aopsample/exectime/pkg/ratelimit"
	"github.com/aopsample/exectime/pkg/shutdown"
	"github.com/aopsample/exectime/pkg/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the order HTTP service",
	Long: `Starts the HTTP service. Each GET /order runs OrderService.ProcessOrder once
through the execution timer.

Example:
  exectime serve --port 8080
  curl http://localhost:8080/order`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "8080", "HTTP listen port")
	bindFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cfg.Log, "exectime")
	if err != nil {
		return err
	}

	// closed after the manager's last log line
	defer logger.Close()

	mgr := shutdown.New(cfg.Shutdown.Timeout, logger)

	srv, err := buildServer(cmd.Context(), cfg, logger, mgr)
	if err != nil {
		_ = mgr.Shutdown()
		return err
	}

	errc := make(chan error, 1)
	logger.Info("HTTP server listening", map[string]interface{}{"addr": srv.Addr})
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http server: %w", err)
		}
	}()

	serveErr := mgr.Wait(cmd.Context(), errc)
	return errors.Join(serveErr, mgr.Shutdown())
}

// buildServer composes the timed order service into the HTTP server and
// registers everything that needs releasing on mgr.
func buildServer(ctx context.Context, cfg *config.Config, logger *logging.Logger, mgr *shutdown.Manager) (*http.Server, error) {
	tracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Tracing.Environment,
		OTLPEndpoint:   cfg.Tracing.Endpoint,
		Enabled:        cfg.Tracing.Enabled,
	}, logger)
	if err != nil {
		return nil, err
	}
	mgr.Register("tracer", tracer.Shutdown)

	sinks := []observe.Sink{observe.LogSink(logger), tracing.SpanSink{}}
	opts := api.RouterOptions{Tracer: tracer}

	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sinks = append(sinks, report.NewMetrics(registry))
		opts.Metrics = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	if cfg.RateLimit.Enabled {
		limiter, err := ratelimit.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.MaxClients)
		if err != nil {
			return nil, err
		}
		opts.Limiter = limiter
	}

	timer := observe.NewTimer(observe.Multi(sinks...))
	svc := order.NewService(logger, cfg.Order.Delay, nil)
	handler := api.NewHandler(observe.WrapErr(timer, order.Operation, svc.ProcessOrder), logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(handler, logger, opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	mgr.Register("http server", shutdown.StopHTTPServer(srv))

	logger.Info("Service configured", map[string]interface{}{
		"order_delay":       cfg.Order.Delay.String(),
		"metrics_enabled":   cfg.Metrics.Enabled,
		"tracing_enabled":   cfg.Tracing.Enabled,
		"ratelimit_enabled": cfg.RateLimit.Enabled,
	})
	return srv, nil
}
