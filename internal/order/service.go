package order

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aopsample/exectime/pkg/logging"
)

// Operation identifies ProcessOrder in measurements
const Operation = "OrderService.ProcessOrder"

// DefaultDelay stands in for the time real order processing takes
const DefaultDelay = 3 * time.Second

// Service simulates order processing
type Service struct {
	logger *logging.Logger
	delay  time.Duration
	clock  clockwork.Clock
}

// NewService creates a service that takes delay per order.
// A nil clock uses the real clock.
func NewService(logger *logging.Logger, delay time.Duration, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		logger: logger,
		delay:  delay,
		clock:  clock,
	}
}

// ProcessOrder processes one order. It returns early with the context's
// error when ctx is done before processing finishes.
func (s *Service) ProcessOrder(ctx context.Context) error {
	s.logger.Info("Processing order...")

	if s.delay > 0 {
		select {
		case <-s.clock.After(s.delay):
		case <-ctx.Done():
			s.logger.Warn("Order processing interrupted", map[string]interface{}{"error": ctx.Err()})
			return fmt.Errorf("process order: %w", ctx.Err())
		}
	}

	s.logger.Info("Order processed.")
	return nil
}
