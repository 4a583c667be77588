package resilience

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/domainerr"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/metrics"
)

var ErrUnavailable = domainerr.New(domainerr.KindInfrastructure, "DEPENDENCY_UNAVAILABLE", "dependency temporarily unavailable")

// CircuitBreaker wraps gobreaker and reports its state to Prometheus.
type CircuitBreaker struct {
	cb   *gobreaker.CircuitBreaker
	name string
}

type Settings struct {
	Name string
	// Failures that should not count against the dependency, such as a
	// 404 for an unknown customer.
	IsSuccessful func(err error) bool
	Timeout      time.Duration
}

func NewCircuitBreaker(s Settings, logger logrus.FieldLogger) *CircuitBreaker {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: s.IsSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(metrics.Service, name).Set(stateValue(to))
			logger.WithFields(logrus.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(metrics.Service, s.Name).Set(0)

	return &CircuitBreaker{cb: cb, name: s.Name}
}

// Execute runs fn through the breaker. An open breaker yields ErrUnavailable.
func (c *CircuitBreaker) Execute(fn func() (any, error)) (any, error) {
	res, err := c.cb.Execute(fn)
	if err != nil {
		metrics.CircuitBreakerFailures.WithLabelValues(metrics.Service, c.name).Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrUnavailable.Withf("%s is unavailable", c.name).Wrap(err)
		}
	}
	return res, err
}

func (c *CircuitBreaker) State() string {
	return c.cb.State().String()
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
