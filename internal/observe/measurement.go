package observe

import (
	"fmt"
	"time"
)

// Outcome classifies how a timed invocation ended
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
	OutcomePanic   Outcome = "panic"
)

// Measurement is the single timing record produced per invocation.
// It is handed to a Sink once and never retained by the timer.
type Measurement struct {
	Operation string
	Elapsed   time.Duration

	// Err and Panicked classify the outcome for sinks only.
	// The caller always observes the operation's own outcome.
	Err error
	// Panicked reports that the operation did not return normally: it
	// panicked or its goroutine exited through runtime.Goexit.
	Panicked bool
}

// Millis returns the elapsed time in whole milliseconds, never negative
func (m Measurement) Millis() int64 {
	if m.Elapsed < 0 {
		return 0
	}
	return m.Elapsed.Milliseconds()
}

// Outcome returns how the invocation ended
func (m Measurement) Outcome() Outcome {
	switch {
	case m.Panicked:
		return OutcomePanic
	case m.Err != nil:
		return OutcomeError
	default:
		return OutcomeSuccess
	}
}

func (m Measurement) String() string {
	return fmt.Sprintf("%s executed in %dms", m.Operation, m.Millis())
}
