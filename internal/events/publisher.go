package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/sequence"
)

const publishTimeout = 3 * time.Second

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher emits order lifecycle events to the topic exchange. Every event
// carries the next sequence number for its order.
type Publisher struct {
	ch     channel
	seq    sequence.Repository
	logger logrus.FieldLogger
}

func NewPublisher(conn *amqp.Connection, seq sequence.Repository, logger logrus.FieldLogger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the exchange so publish never fails due to missing infra.
	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare %s: %w", EventsExchange, err)
	}

	return newPublisher(ch, seq, logger), nil
}

func newPublisher(ch channel, seq sequence.Repository, logger logrus.FieldLogger) *Publisher {
	return &Publisher{ch: ch, seq: seq, logger: logger}
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, o *order.Order) error {
	seq, meta, err := p.next(ctx, o)
	if err != nil {
		return err
	}
	return publishEnvelope(ctx, p, BuildOrderCreatedEnvelope(o, seq, meta))
}

func (p *Publisher) PublishOrderPaid(ctx context.Context, o *order.Order) error {
	seq, meta, err := p.next(ctx, o)
	if err != nil {
		return err
	}
	return publishEnvelope(ctx, p, BuildOrderPaidEnvelope(o, seq, meta))
}

func (p *Publisher) PublishOrderPaymentRejected(ctx context.Context, o *order.Order) error {
	seq, meta, err := p.next(ctx, o)
	if err != nil {
		return err
	}
	return publishEnvelope(ctx, p, BuildOrderPaymentRejectedEnvelope(o, seq, meta))
}

func (p *Publisher) PublishOrderCancelled(ctx context.Context, o *order.Order) error {
	seq, meta, err := p.next(ctx, o)
	if err != nil {
		return err
	}
	return publishEnvelope(ctx, p, BuildOrderCancelledEnvelope(o, seq, meta))
}

func (p *Publisher) next(ctx context.Context, o *order.Order) (int64, EnvelopeMetadata, error) {
	seq, err := p.seq.NextSequence(ctx, o.ID())
	if err != nil {
		return 0, EnvelopeMetadata{}, fmt.Errorf("sequence for order %s: %w", o.ID(), err)
	}
	return seq, EnvelopeMetadata{CorrelationID: logging.CorrelationID(ctx)}, nil
}

func publishEnvelope[T any](ctx context.Context, p *Publisher, env EventEnvelope[T]) error {
	key := routingKeyFor(env.EventName)

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", env.EventName, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     env.EventID,
			CorrelationId: env.CorrelationID,
			Timestamp:     env.OccurredAt,
			Type:          env.EventName,
			Body:          body,
		},
	)
	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(key, "error").Inc()
		return fmt.Errorf("publish %s: %w", env.EventName, err)
	}

	metrics.EventsPublishedTotal.WithLabelValues(key, "ok").Inc()
	p.logger.WithFields(logrus.Fields{
		"event":         env.EventName,
		"event_id":      env.EventID,
		"partition_key": env.PartitionKey,
		"sequence":      *env.Sequence,
	}).Debug("event published")
	return nil
}

func routingKeyFor(eventName string) string {
	for _, et := range []eventType{orderCreated, orderPaid, orderPaymentRejected, orderCancelled} {
		if et.name == eventName {
			return et.routingKey
		}
	}
	return ""
}
