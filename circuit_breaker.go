package nntp

import (
	"errors"
	"time"

	"github.com/pior/nntp/wire"
	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards connection attempts to one server.
type CircuitBreaker = *gobreaker.CircuitBreaker[*Conn]

// NewCircuitBreakerConfig returns a function that creates circuit breakers for servers.
// This is a helper for common use cases: the breaker opens once at least 3
// connection attempts were made and 60% of them failed.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(string) CircuitBreaker {
	return func(serverAddr string) CircuitBreaker {
		settings := gobreaker.Settings{
			Name:        serverAddr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			IsSuccessful: isDialSuccessful,
		}
		return gobreaker.NewCircuitBreaker[*Conn](settings)
	}
}

// isDialSuccessful counts a rejected login or an unsupported MODE READER as a
// success: the server is up and answering.
func isDialSuccessful(err error) bool {
	var se *wire.StatusError
	if errors.As(err, &se) {
		return !se.ShouldCloseConnection()
	}
	return err == nil
}
