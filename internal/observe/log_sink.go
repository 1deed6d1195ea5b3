package observe

import (
	"context"

	"github.com/aopsample/exectime/pkg/logging"
)

// Logger is the subset of logging.Logger the log sink needs
type Logger interface {
	Info(message string, fields ...map[string]interface{})
	Warn(message string, fields ...map[string]interface{})
}

// LogSink writes one line per measurement:
//
//	OrderService.ProcessOrder executed in 3001ms
//
// Failed and panicking invocations are logged at warn level with the error.
// A logger carried by the invocation's context takes precedence over logger,
// so request scoped fields end up on the line.
func LogSink(logger Logger) Sink {
	return SinkFunc(func(ctx context.Context, m Measurement) {
		logger := logger
		if l, ok := logging.FromContext(ctx); ok {
			logger = l
		}
		fields := map[string]interface{}{
			"operation":   m.Operation,
			"duration_ms": m.Millis(),
		}

		switch m.Outcome() {
		case OutcomeSuccess:
			logger.Info(m.String(), fields)
		case OutcomeError:
			fields["error"] = m.Err
			logger.Warn(m.String(), fields)
		case OutcomePanic:
			fields["outcome"] = string(OutcomePanic)
			logger.Warn(m.String(), fields)
		}
	})
}
