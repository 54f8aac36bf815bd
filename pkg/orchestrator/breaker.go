package orchestrator

import (
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/ebl-digital/chat-orchestrator/pkg/aierrors"
)

// newBreaker builds a per-collaborator circuit breaker that trips on a
// failure ratio over a rolling window, giving the retry-once-then-fail
// rule a backstop against a collaborator that is down hard rather than
// merely slow: once tripped, calls fail fast instead of queuing behind a
// dead service.
func newBreaker[T any](name string) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
	})
}

// withRetry runs fn once, and once more if the first attempt returns a
// retriable classified error: at most one retry, and only for idempotent
// calls. Non-retriable errors (and circuit-breaker
// rejections, which are never classified and therefore never retriable)
// fail immediately.
func withRetry[T any](retries int, fn func() (T, error)) (T, error) {
	var out T
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		out, err = fn()
		if err == nil {
			return out, nil
		}
		if !aierrors.IsRetriable(err) {
			return out, err
		}
	}
	return out, err
}
