package payment

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/domainerr"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/resilience"
)

type breakerGateway struct {
	next    Gateway
	breaker *resilience.CircuitBreaker
}

// WithCircuitBreaker guards a Gateway. Domain answers from the provider
// (unknown payment, refused refund) do not count as failures.
func WithCircuitBreaker(next Gateway, logger logrus.FieldLogger) Gateway {
	return &breakerGateway{
		next: next,
		breaker: resilience.NewCircuitBreaker(resilience.Settings{
			Name: "payment-gateway",
			IsSuccessful: func(err error) bool {
				return err == nil || domainerr.IsDomain(err) || errors.Is(err, context.Canceled)
			},
		}, logger),
	}
}

func (g *breakerGateway) CreatePreference(ctx context.Context, req PreferenceRequest) (Preference, error) {
	v, err := g.breaker.Execute(func() (any, error) {
		return g.next.CreatePreference(ctx, req)
	})
	if err != nil {
		return Preference{}, err
	}
	return v.(Preference), nil
}

func (g *breakerGateway) GetPayment(ctx context.Context, paymentID string) (Payment, error) {
	v, err := g.breaker.Execute(func() (any, error) {
		return g.next.GetPayment(ctx, paymentID)
	})
	if err != nil {
		return Payment{}, err
	}
	return v.(Payment), nil
}

func (g *breakerGateway) Refund(ctx context.Context, paymentID string, amount *money.Money) (Refund, error) {
	v, err := g.breaker.Execute(func() (any, error) {
		return g.next.Refund(ctx, paymentID, amount)
	})
	if err != nil {
		return Refund{}, err
	}
	return v.(Refund), nil
}
