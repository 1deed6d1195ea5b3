package observe

import (
	"context"
	"sync"
)

// Sink receives one Measurement per timed invocation
type Sink interface {
	Record(ctx context.Context, m Measurement)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, m Measurement)

func (f SinkFunc) Record(ctx context.Context, m Measurement) {
	f(ctx, m)
}

// Discard drops every measurement
var Discard Sink = SinkFunc(func(context.Context, Measurement) {})

type multiSink []Sink

func (s multiSink) Record(ctx context.Context, m Measurement) {
	for _, sink := range s {
		sink.Record(ctx, m)
	}
}

// Multi fans a measurement out to every non-nil sink, in order
func Multi(sinks ...Sink) Sink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return Discard
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

// Collector keeps measurements in memory, in the order they were recorded
type Collector struct {
	mu           sync.Mutex
	measurements []Measurement
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Record(_ context.Context, m Measurement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.measurements = append(c.measurements, m)
}

// Measurements returns a copy of everything recorded so far
func (c *Collector) Measurements() []Measurement {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Measurement, len(c.measurements))
	copy(out, c.measurements)
	return out
}

// Len returns the number of recorded measurements
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.measurements)
}

// Reset drops all recorded measurements
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.measurements = nil
}
