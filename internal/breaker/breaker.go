package breaker

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/Skotchmaster/local_market/internal/metrics"
)

// ErrUnavailable is returned while the breaker is open or probing.
var ErrUnavailable = errors.New("dependency unavailable")

type Breaker struct {
	cb   *gobreaker.CircuitBreaker
	name string
}

func New(name string) *Breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(cbName string, from gobreaker.State, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(cbName).Set(stateValue(to))
			zap.S().Infow("circuit breaker state changed", "circuit", cbName, "from", from.String(), "to", to.String())
		},
	})

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return &Breaker{cb: cb, name: name}
}

func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	if err == nil {
		return nil
	}

	metrics.CircuitBreakerFailures.WithLabelValues(b.name).Inc()
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit %s is %s", ErrUnavailable, b.name, b.cb.State())
	}
	return err
}

func (b *Breaker) State() string {
	return b.cb.State().String()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
