package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/aopsample/exectime/internal/observe"
)

// SpanSink attaches each measurement to the span carried by the context.
// Without a recording span it does nothing.
type SpanSink struct{}

func (SpanSink) Record(ctx context.Context, m observe.Measurement) {
	AddEvent(ctx, "measurement",
		attribute.String("operation", m.Operation),
		attribute.Int64("duration_ms", m.Millis()),
		attribute.String("outcome", string(m.Outcome())),
	)
	if m.Err != nil {
		SetError(ctx, m.Err)
	}
}
