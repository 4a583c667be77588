package events

import (
	"time"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
)

type OrderItem struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	Price     money.Money `json:"price"`
}

type OrderCreatedPayload struct {
	OrderID       string      `json:"orderId"`
	CustomerID    string      `json:"customerId"`
	Items         []OrderItem `json:"items"`
	Subtotal      money.Money `json:"subtotal"`
	ShippingCost  money.Money `json:"shippingCost"`
	TotalAmount   money.Money `json:"totalAmount"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	DeliveryType  string      `json:"deliveryType"`
	Timestamp     time.Time   `json:"timestamp"`
}

type OrderPaidPayload struct {
	OrderID    string      `json:"orderId"`
	CustomerID string      `json:"customerId"`
	PaymentID  string      `json:"paymentId"`
	Amount     money.Money `json:"amount"`
	Currency   string      `json:"currency,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

type OrderPaymentRejectedPayload struct {
	OrderID    string    `json:"orderId"`
	CustomerID string    `json:"customerId"`
	PaymentID  string    `json:"paymentId"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}

type OrderCancelledPayload struct {
	OrderID    string    `json:"orderId"`
	CustomerID string    `json:"customerId"`
	Reason     string    `json:"reason"`
	Refunded   bool      `json:"refunded"`
	Timestamp  time.Time `json:"timestamp"`
}

type (
	OrderCreatedEnvelope         = EventEnvelope[OrderCreatedPayload]
	OrderPaidEnvelope            = EventEnvelope[OrderPaidPayload]
	OrderPaymentRejectedEnvelope = EventEnvelope[OrderPaymentRejectedPayload]
	OrderCancelledEnvelope       = EventEnvelope[OrderCancelledPayload]
)

func BuildOrderCreatedEnvelope(o *order.Order, seq int64, meta EnvelopeMetadata) OrderCreatedEnvelope {
	items := make([]OrderItem, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
		})
	}

	var method string
	if p, ok := o.Payment(); ok {
		method = string(p.Method)
	}

	return newEnvelope(orderCreated, o.ID(), seq, meta, OrderCreatedPayload{
		OrderID:       o.ID(),
		CustomerID:    o.Customer().ID,
		Items:         items,
		Subtotal:      o.CalculateSubtotal(),
		ShippingCost:  o.CalculateShippingCost(),
		TotalAmount:   o.CalculateTotal(),
		PaymentMethod: method,
		DeliveryType:  string(o.Delivery().Type),
		Timestamp:     o.CreatedAt(),
	})
}

func BuildOrderPaidEnvelope(o *order.Order, seq int64, meta EnvelopeMetadata) OrderPaidEnvelope {
	p, _ := o.Payment()
	return newEnvelope(orderPaid, o.ID(), seq, meta, OrderPaidPayload{
		OrderID:    o.ID(),
		CustomerID: o.Customer().ID,
		PaymentID:  p.GatewayPaymentID,
		Amount:     p.Amount,
		Currency:   p.Currency,
		Timestamp:  o.UpdatedAt(),
	})
}

func BuildOrderPaymentRejectedEnvelope(o *order.Order, seq int64, meta EnvelopeMetadata) OrderPaymentRejectedEnvelope {
	p, _ := o.Payment()
	return newEnvelope(orderPaymentRejected, o.ID(), seq, meta, OrderPaymentRejectedPayload{
		OrderID:    o.ID(),
		CustomerID: o.Customer().ID,
		PaymentID:  p.GatewayPaymentID,
		Reason:     p.RejectionReason,
		Timestamp:  o.UpdatedAt(),
	})
}

func BuildOrderCancelledEnvelope(o *order.Order, seq int64, meta EnvelopeMetadata) OrderCancelledEnvelope {
	var reason string
	if h := o.History(); len(h) > 0 {
		reason = h[len(h)-1].Reason
	}
	p, _ := o.Payment()
	return newEnvelope(orderCancelled, o.ID(), seq, meta, OrderCancelledPayload{
		OrderID:    o.ID(),
		CustomerID: o.Customer().ID,
		Reason:     reason,
		Refunded:   p.Status == order.PaymentRefunded,
		Timestamp:  o.UpdatedAt(),
	})
}
