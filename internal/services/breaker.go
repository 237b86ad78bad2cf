package services

import (
	"errors"
	"time"

	"musicbot/internal/metrics"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/sony/gobreaker/v2"
)

const (
	breakerConsecutiveFailures = 5
	breakerOpenTimeout         = 30 * time.Second
)

func newBreaker(name string, log logger.Logger) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrLyricsNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// guarded runs fn through the breaker and records the call against provider.
func guarded[T any](cb *gobreaker.CircuitBreaker[any], provider string, fn func() (T, error)) (T, error) {
	result, err := cb.Execute(func() (any, error) {
		value, err := fn()
		return value, err
	})
	metrics.ObserveCatalog(provider, err)

	var zero T
	if err != nil {
		return zero, err
	}
	value, ok := result.(T)
	if !ok {
		return zero, nil
	}
	return value, nil
}
