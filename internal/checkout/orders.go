package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
)

func (s *Service) GetOrder(ctx context.Context, orderID string) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", orderID, err)
	}
	if o == nil {
		return nil, order.ErrOrderNotFound.Withf("order %s not found", orderID)
	}
	return o, nil
}

func (s *Service) ListCustomerOrders(ctx context.Context, customerID string) ([]*order.Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrInvalidRequest.Withf("customer id is required")
	}
	orders, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", customerID, err)
	}
	return orders, nil
}

// CancelOrder cancels the order. Orders with an approved payment are refunded
// in full first.
func (s *Service) CancelOrder(ctx context.Context, orderID, reason string) (*order.Order, error) {
	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if p, ok := o.Payment(); ok && p.Status == order.PaymentApproved {
		return s.refund(ctx, o, nil, reason)
	}

	if reason == "" {
		reason = "cancelled"
	}
	if err := o.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	s.publish(ctx, o, s.events.PublishOrderCancelled)
	return o, nil
}

// RefundOrder refunds the payment through the gateway and cancels the order.
// A nil amount refunds the order total.
func (s *Service) RefundOrder(ctx context.Context, orderID string, amount *money.Money, reason string) (*order.Order, error) {
	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if p, ok := o.Payment(); ok && p.Status == order.PaymentRefunded {
		return o, nil
	}
	return s.refund(ctx, o, amount, reason)
}

func (s *Service) refund(ctx context.Context, o *order.Order, amount *money.Money, reason string) (*order.Order, error) {
	if err := o.CheckRefundable(); err != nil {
		return nil, err
	}
	if amount != nil && amount.IsGreaterThan(o.CalculateTotal()) {
		return nil, order.ErrInvalidRefund.Withf("refund %s exceeds order total %s", amount, o.CalculateTotal())
	}

	p, _ := o.Payment()
	r, err := s.gateway.Refund(ctx, p.GatewayPaymentID, amount)
	if err != nil {
		return nil, err
	}
	if err := o.Refund(r.RefundID, r.Amount, reason); err != nil {
		return nil, err
	}
	if err := s.save(ctx, o); err != nil {
		if !errors.Is(err, order.ErrConcurrentUpdate) {
			return nil, err
		}
		// The gateway already refunded; record it on the latest revision.
		if o, err = s.GetOrder(ctx, o.ID()); err != nil {
			return nil, err
		}
		if err := o.Refund(r.RefundID, r.Amount, reason); err != nil {
			return nil, err
		}
		if err := s.save(ctx, o); err != nil {
			return nil, err
		}
	}
	s.log(ctx).WithField("order_id", o.ID()).WithField("refund_id", r.RefundID).Info("order refunded")
	s.publish(ctx, o, s.events.PublishOrderCancelled)
	return o, nil
}

// AdvanceOrder moves a paid order through fulfillment. CANCELLED delegates
// to CancelOrder.
func (s *Service) AdvanceOrder(ctx context.Context, orderID string, target order.Status, reason string) (*order.Order, error) {
	if target == order.StatusCancelled {
		return s.CancelOrder(ctx, orderID, reason)
	}

	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch target {
	case order.StatusInPreparation:
		err = o.StartPreparation()
	case order.StatusReady:
		err = o.MarkReady()
	case order.StatusDelivered:
		err = o.MarkDelivered()
	default:
		return nil, ErrInvalidTransition.Withf("status %s cannot be set directly", target)
	}
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) save(ctx context.Context, o *order.Order) error {
	if err := s.orders.Save(ctx, o); err != nil {
		return fmt.Errorf("save order %s: %w", o.ID(), err)
	}
	metrics.OrderTransitionsTotal.WithLabelValues(string(o.Status())).Inc()
	return nil
}
