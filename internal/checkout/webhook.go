package checkout

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/payment"
)

const (
	notificationSource = "payment-gateway"
	paymentTopic       = "payment"
)

// HandlePaymentNotification applies a gateway payment notification to its
// order. Redelivered notifications and notifications for payments the order
// already reflects leave the order untouched.
func (s *Service) HandlePaymentNotification(ctx context.Context, n Notification) (NotificationResult, error) {
	res, err := s.handlePaymentNotification(ctx, n)
	if err != nil {
		metrics.PaymentNotificationsTotal.WithLabelValues("error").Inc()
		return NotificationResult{}, err
	}
	metrics.PaymentNotificationsTotal.WithLabelValues(string(res.Outcome)).Inc()
	return res, nil
}

func (s *Service) handlePaymentNotification(ctx context.Context, n Notification) (NotificationResult, error) {
	if n.Type != paymentTopic {
		return NotificationResult{Outcome: OutcomeIgnored}, nil
	}
	if n.DataID == "" {
		return NotificationResult{}, ErrInvalidRequest.Withf("payment notification without payment id")
	}

	key := notificationKey(n)
	if s.notifications != nil {
		done, err := s.notifications.IsProcessed(ctx, notificationSource, key)
		if err != nil {
			return NotificationResult{}, fmt.Errorf("check notification %s: %w", key, err)
		}
		if done {
			return NotificationResult{Outcome: OutcomeDuplicate}, nil
		}
	}

	p, err := s.gateway.GetPayment(ctx, n.DataID)
	if err != nil {
		return NotificationResult{}, err
	}

	o, err := s.findOrderForPayment(ctx, p)
	if err != nil {
		return NotificationResult{}, err
	}

	log := s.log(ctx).WithFields(logrus.Fields{
		"order_id":       o.ID(),
		"payment_id":     p.ID,
		"payment_status": p.Status,
	})

	before := o.Status()
	outcome := OutcomePending
	switch p.Status {
	case payment.StatusApproved:
		if err := o.ConfirmPayment(p.ID, p.PaymentType, p.Installments, p.Amount); err != nil {
			log.WithError(err).Warn("payment confirmation refused")
			return NotificationResult{}, err
		}
		outcome = OutcomeConfirmed
	case payment.StatusRejected, payment.StatusCancelled:
		if err := o.RejectPayment(p.ID, rejectionReason(p)); err != nil {
			log.WithError(err).Warn("payment rejection refused")
			return NotificationResult{}, err
		}
		outcome = OutcomeRejected
	}

	changed := o.Status() != before
	if changed {
		if err := s.save(ctx, o); err != nil {
			return NotificationResult{}, err
		}
		log.WithField("status", o.Status()).Info("order payment updated")

		switch o.Status() {
		case order.StatusPaid:
			s.publish(ctx, o, s.events.PublishOrderPaid)
		case order.StatusPaymentRejected:
			s.publish(ctx, o, s.events.PublishOrderPaymentRejected)
		}
	} else if outcome != OutcomePending {
		outcome = OutcomeUnchanged
	}

	if s.notifications != nil && outcome != OutcomePending {
		if _, err := s.notifications.MarkProcessed(ctx, notificationSource, key); err != nil {
			log.WithError(err).Warn("notification not recorded as processed")
		}
	}

	return NotificationResult{Outcome: outcome, OrderID: o.ID(), Status: o.Status()}, nil
}

// findOrderForPayment resolves the order by external reference first, then
// by preference or payment id.
func (s *Service) findOrderForPayment(ctx context.Context, p payment.Payment) (*order.Order, error) {
	if p.ExternalReference != "" {
		o, err := s.orders.FindByID(ctx, p.ExternalReference)
		if err != nil {
			return nil, fmt.Errorf("find order %s: %w", p.ExternalReference, err)
		}
		if o != nil {
			return o, nil
		}
	}
	for _, ref := range []string{p.PreferenceID, p.ID} {
		if ref == "" {
			continue
		}
		o, err := s.orders.FindByPaymentReference(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("find order by payment reference %s: %w", ref, err)
		}
		if o != nil {
			return o, nil
		}
	}
	return nil, order.ErrOrderNotFound.Withf("no order for payment %s", p.ID)
}

// notificationKey identifies a delivery. Gateways reuse the notification id
// on retries; without one the payment id and action stand in.
func notificationKey(n Notification) string {
	if n.ID != "" {
		return n.ID
	}
	return n.DataID + ":" + n.Action
}

func rejectionReason(p payment.Payment) string {
	if p.StatusDetail != "" {
		return p.StatusDetail
	}
	return "payment " + string(p.Status)
}
