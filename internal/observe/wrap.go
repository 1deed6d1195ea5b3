package observe

import (
	"context"
	"reflect"
	"runtime"
	"strings"

	"github.com/jonboulle/clockwork"
)

// Timer is the around-advice applied to an operation: it runs the operation
// once, measures it, hands one Measurement to its sink and returns the
// operation's outcome untouched.
//
// A Timer holds no per-call state and is safe for concurrent use.
type Timer struct {
	clock clockwork.Clock
	sink  Sink
}

// Option configures a Timer
type Option func(*Timer)

// WithClock sets the clock used for readings. Tests pass a fake clock.
func WithClock(clock clockwork.Clock) Option {
	return func(t *Timer) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// NewTimer creates a timer reporting to sink. A nil sink discards.
func NewTimer(sink Sink, opts ...Option) *Timer {
	if sink == nil {
		sink = Discard
	}
	t := &Timer{
		clock: clockwork.NewRealClock(),
		sink:  sink,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Wrap returns op wrapped by t. An empty id is replaced by op's function name.
func Wrap[T any](t *Timer, id string, op func(context.Context) (T, error)) func(context.Context) (T, error) {
	t = orDefault(t)
	id = resolveID(id, op)
	return func(ctx context.Context) (T, error) {
		return invoke(ctx, t, id, op)
	}
}

// WrapFunc is Wrap for operations that take no context
func WrapFunc[T any](t *Timer, id string, op func() (T, error)) func() (T, error) {
	t = orDefault(t)
	id = resolveID(id, op)
	return func() (T, error) {
		return invoke(context.Background(), t, id, func(context.Context) (T, error) {
			return op()
		})
	}
}

// WrapErr is Wrap for operations that only report an error
func WrapErr(t *Timer, id string, op func(context.Context) error) func(context.Context) error {
	t = orDefault(t)
	id = resolveID(id, op)
	return func(ctx context.Context) error {
		return t.Run(ctx, id, op)
	}
}

// Run times a single call of op
func (t *Timer) Run(ctx context.Context, id string, op func(context.Context) error) error {
	t = orDefault(t)
	id = resolveID(id, op)
	_, err := invoke(ctx, t, id, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// invoke measures from a deferred func so that a panicking op is still
// measured. The panic is not recovered and keeps unwinding.
func invoke[T any](ctx context.Context, t *Timer, id string, op func(context.Context) (T, error)) (result T, err error) {
	timing := NewTiming(t.clock)
	returned := false
	defer func() {
		timing.Complete()
		t.sink.Record(ctx, Measurement{
			Operation: id,
			Elapsed:   timing.Duration(),
			Err:       err,
			Panicked:  !returned,
		})
	}()

	result, err = op(ctx)
	returned = true
	return result, err
}

var defaultTimer = NewTimer(nil)

func orDefault(t *Timer) *Timer {
	if t == nil {
		return defaultTimer
	}
	return t
}

func resolveID(id string, fn any) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return FuncName(fn)
}

// FuncName returns a short qualified name for fn, such as
// "order.Service.ProcessOrder" for a method value.
func FuncName(fn any) string {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return "unknown"
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "unknown"
	}

	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	name = strings.NewReplacer("(*", "", "(", "", ")", "").Replace(name)
	if name == "" {
		return "unknown"
	}
	return name
}
