package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gopkg.in/yaml.v3"

	"github.com/aopsample/exectime/internal/observe"
)

var sample = []observe.Measurement{
	{Operation: "OrderService.ProcessOrder", Elapsed: 3001 * time.Millisecond},
	{Operation: "OrderService.ProcessOrder", Elapsed: 2 * time.Millisecond, Err: errors.New("declined")},
}

func TestRunOrdersCallsEveryOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls, inFlight, maxInFlight atomic.Int32
	process := func(context.Context) error {
		calls.Add(1)
		n := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	}

	require.NoError(t, runOrders(context.Background(), process, 9, 3))
	assert.Equal(t, int32(9), calls.Load())
	assert.LessOrEqual(t, maxInFlight.Load(), int32(3))
}

func TestRunOrdersReturnsFailureAfterAllCalls(t *testing.T) {
	errDeclined := errors.New("declined")
	var calls atomic.Int32
	process := func(context.Context) error {
		if calls.Add(1) == 1 {
			return errDeclined
		}
		return nil
	}

	err := runOrders(context.Background(), process, 4, 1)
	assert.ErrorIs(t, err, errDeclined)
	assert.Equal(t, int32(4), calls.Load())
}

func TestRunOrdersValidatesArguments(t *testing.T) {
	noop := func(context.Context) error { return nil }
	assert.Error(t, runOrders(context.Background(), noop, 0, 1))
	assert.Error(t, runOrders(context.Background(), noop, 1, 0))
}

func TestWriteMeasurementsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMeasurements(&buf, sample, "json"))

	var rows []measurementRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, measurementRow{Index: 1, Operation: "OrderService.ProcessOrder", DurationMS: 3001, Outcome: "success"}, rows[0])
	assert.Equal(t, "error", rows[1].Outcome)
	assert.Equal(t, "declined", rows[1].Error)
}

func TestWriteMeasurementsYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMeasurements(&buf, sample, "yaml"))

	var rows []measurementRow
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, int64(3001), rows[0].DurationMS)
}

func TestWriteMeasurementsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMeasurements(&buf, sample, "table"))

	out := buf.String()
	assert.Contains(t, out, "OrderService.ProcessOrder")
	assert.Contains(t, out, "3001")
	assert.Contains(t, out, "declined")
}

func TestWriteMeasurementsUnknownFormat(t *testing.T) {
	assert.Error(t, writeMeasurements(&bytes.Buffer{}, sample, "xml"))
}

func TestRunOrderRejectsUnknownOutputBeforeRunning(t *testing.T) {
	prevCfg, prevOutput, prevCount := cfg, orderOutput, orderCount
	t.Cleanup(func() { cfg, orderOutput, orderCount = prevCfg, prevOutput, prevCount })

	cfg = testConfig(t)
	cfg.Order.Delay = time.Hour
	orderOutput = "xml"
	orderCount = 1

	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	done := make(chan error, 1)
	go func() { done <- runOrder(cmd, nil) }()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, `"xml"`)
		assert.Empty(t, stdout.String())
		assert.NotContains(t, stderr.String(), "Processing order")
	case <-time.After(5 * time.Second):
		t.Fatal("runOrder processed orders before validating --output")
	}
}
