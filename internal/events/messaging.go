package events

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "ecommerce.events"

	OrderCreatedRoutingKey         = "order.created.v1"
	OrderPaidRoutingKey            = "order.paid.v1"
	OrderPaymentRejectedRoutingKey = "order.payment_rejected.v1"
	OrderCancelledRoutingKey       = "order.cancelled.v1"

	producerName = "checkout-service"
)

var (
	orderCreated         = eventType{name: "OrderCreated", version: 1, routingKey: OrderCreatedRoutingKey}
	orderPaid            = eventType{name: "OrderPaid", version: 1, routingKey: OrderPaidRoutingKey}
	orderPaymentRejected = eventType{name: "OrderPaymentRejected", version: 1, routingKey: OrderPaymentRejectedRoutingKey}
	orderCancelled       = eventType{name: "OrderCancelled", version: 1, routingKey: OrderCancelledRoutingKey}
)

func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
