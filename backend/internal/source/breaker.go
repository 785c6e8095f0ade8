package source

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"graph-explorer/backend/internal/graph"
	apperrors "graph-explorer/backend/pkg/errors"
	"graph-explorer/backend/pkg/logger"
)

// BreakerSettings holds configuration for the fetch circuit breaker
type BreakerSettings struct {
	Name             string
	FailureThreshold float64 // failure ratio that trips the breaker
	MinRequests      uint32  // requests observed before the ratio is evaluated
	Interval         time.Duration
	OpenTimeout      time.Duration // how long the breaker stays open
	MaxHalfOpen      uint32
}

// DefaultBreakerSettings returns a default configuration for the breaker
func DefaultBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:             name,
		FailureThreshold: 0.6,
		MinRequests:      3,
		Interval:         60 * time.Second,
		OpenTimeout:      30 * time.Second,
		MaxHalfOpen:      1,
	}
}

// BreakerFetcher stops calling a failing backend for a while so every
// expansion does not wait out the full fetch timeout.
type BreakerFetcher struct {
	next   Fetcher
	cb     *gobreaker.CircuitBreaker
	name   string
	logger *zap.Logger
}

// NewBreakerFetcher wraps next with a circuit breaker.
func NewBreakerFetcher(next Fetcher, settings BreakerSettings) *BreakerFetcher {
	b := &BreakerFetcher{
		next:   next,
		name:   settings.Name,
		logger: logger.With("breaker"),
	}

	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxHalfOpen,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			b.logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// A malformed response means the backend answered; only transport
		// failures and timeouts count against it.
		IsSuccessful: func(err error) bool {
			return err == nil || !apperrors.IsRetryable(err)
		},
	})
	return b
}

// Fetch implements Fetcher.
func (b *BreakerFetcher) Fetch(ctx context.Context, req Request) (*graph.Fragment, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Fetch(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperrors.NewTransport(b.name, 0, errors.New("graph backend temporarily unavailable"))
		}
		return nil, err
	}
	return result.(*graph.Fragment), nil
}

// State reports the breaker state ("closed", "half-open", "open").
func (b *BreakerFetcher) State() string {
	return b.cb.State().String()
}
