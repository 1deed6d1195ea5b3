package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/aopsample/exectime/internal/observe"
	"github.com/aopsample/exectime/internal/order"
	"github.com/aopsample/exectime/pkg/logging"
)

var (
	orderCount       int
	orderConcurrency int
	orderOutput      string
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Process orders locally and print their measurements",
	Long: `Runs OrderService.ProcessOrder through the execution timer without starting
the HTTP service, then prints one measurement per call.

Example:
  exectime order
  exectime order --count 8 --concurrency 4 --delay 500ms --output json`,
	RunE: runOrder,
}

func init() {
	rootCmd.AddCommand(orderCmd)

	orderCmd.Flags().IntVarP(&orderCount, "count", "n", 1, "number of orders to process")
	orderCmd.Flags().IntVarP(&orderConcurrency, "concurrency", "c", 1, "orders processed at the same time")
	orderCmd.Flags().Duration("delay", order.DefaultDelay, "simulated processing time per order")
	orderCmd.Flags().StringVarP(&orderOutput, "output", "o", "table", "output format: table, json, yaml")

	bindFlag("order.delay", orderCmd.Flags().Lookup("delay"))
}

// measurementRow is the printed form of a measurement
type measurementRow struct {
	Index      int    `json:"index" yaml:"index"`
	Operation  string `json:"operation" yaml:"operation"`
	DurationMS int64  `json:"duration_ms" yaml:"duration_ms"`
	Outcome    string `json:"outcome" yaml:"outcome"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runOrder(cmd *cobra.Command, args []string) error {
	if err := validateOutput(orderOutput); err != nil {
		return err
	}

	// stdout carries the report, so logs go to stderr and never to log.dir
	logger := logging.NewLogger(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format == "json")
	logger.SetOutput(cmd.ErrOrStderr())

	collector := observe.NewCollector()
	timer := observe.NewTimer(observe.Multi(collector, observe.LogSink(logger)))
	svc := order.NewService(logger, cfg.Order.Delay, nil)
	process := observe.WrapErr(timer, order.Operation, svc.ProcessOrder)

	runErr := runOrders(cmd.Context(), process, orderCount, orderConcurrency)
	if err := writeMeasurements(cmd.OutOrStdout(), collector.Measurements(), orderOutput); err != nil {
		return err
	}
	return runErr
}

// runOrders calls process count times, at most concurrency at once.
// Every call runs even if an earlier one failed; the first error is returned.
func runOrders(ctx context.Context, process func(context.Context) error, count, concurrency int) error {
	if count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", count)
	}
	if concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", concurrency)
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			return process(ctx)
		})
	}
	return g.Wait()
}

func toRows(ms []observe.Measurement) []measurementRow {
	rows := make([]measurementRow, len(ms))
	for i, m := range ms {
		rows[i] = measurementRow{
			Index:      i + 1,
			Operation:  m.Operation,
			DurationMS: m.Millis(),
			Outcome:    string(m.Outcome()),
		}
		if m.Err != nil {
			rows[i].Error = m.Err.Error()
		}
	}
	return rows
}

func validateOutput(format string) error {
	switch format {
	case "table", "json", "yaml":
		return nil
	default:
		return validateOutput(format)
	}
}

func writeMeasurements(w io.Writer, ms []observe.Measurement, format string) error {
	rows := toRows(ms)

	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)

	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(rows); err != nil {
			return err
		}
		return encoder.Close()

	case "table":
		table := tablewriter.NewWriter(w)
		table.Header("#", "Operation", "Duration (ms)", "Outcome", "Error")
		for _, r := range rows {
			if err := table.Append([]string{
				strconv.Itoa(r.Index),
				r.Operation,
				strconv.FormatInt(r.DurationMS, 10),
				r.Outcome,
				r.Error,
			}); err != nil {
				return err
			}
		}
		return table.Render()

	default:
		return validateOutput(format)
	}
}
