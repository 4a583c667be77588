package checkout

import (
	"context"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/customer"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/domainerr"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
)

var (
	ErrCustomerNotEligible = domainerr.New(domainerr.KindBusiness, "CUSTOMER_NOT_ELIGIBLE", "customer is not allowed to place orders")
	ErrCheckoutFailed      = domainerr.New(domainerr.KindInfrastructure, "CHECKOUT_FAILED", "checkout could not be completed")
	ErrInvalidRequest      = domainerr.New(domainerr.KindValidation, "INVALID_CHECKOUT_REQUEST", "checkout request is invalid")
	ErrInvalidTransition   = domainerr.New(domainerr.KindValidation, "INVALID_TRANSITION", "requested order status cannot be set directly")
	ErrCartAdjustments     = domainerr.New(domainerr.KindBusiness, "CART_HAS_ADJUSTMENTS", "cart discount or tax cannot be carried into an order")
)

// Customers is the customer collaborator.
type Customers interface {
	ValidateEligibility(ctx context.Context, customerID string) (bool, error)
	Profile(ctx context.Context, customerID string) (customer.Profile, error)
	RecordOrder(ctx context.Context, customerID string, amount money.Money, productIDs, categories []string) error
}

// EventPublisher emits order lifecycle events.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o *order.Order) error
	PublishOrderPaid(ctx context.Context, o *order.Order) error
	PublishOrderPaymentRejected(ctx context.Context, o *order.Order) error
	PublishOrderCancelled(ctx context.Context, o *order.Order) error
}

type ItemInput struct {
	ProductID string
	Name      string
	Category  string
	Price     money.Money
	Quantity  int
}

type DeliveryInput struct {
	Type         order.DeliveryType
	Address      string
	Instructions string
}

// Request is one checkout. Items may be omitted when CartID names a stored
// cart.
type Request struct {
	CustomerID    string
	CartID        string
	Items         []ItemInput
	Delivery      DeliveryInput
	PaymentMethod order.PaymentMethod
	Notes         string
}

type PaymentConfig struct {
	PreferenceID string
	InitPoint    string
}

type Summary struct {
	Subtotal      money.Money
	ShippingCost  money.Money
	Total         money.Money
	ItemCount     int
	PaymentMethod order.PaymentMethod
	DeliveryType  order.DeliveryType

	// FormattedTotal is Total rendered for the configured currency and locale.
	FormattedTotal string
}

type Result struct {
	Order         *order.Order
	Customer      customer.Profile
	PaymentConfig *PaymentConfig
	Summary       Summary
}

// Notification is a payment gateway webhook call.
type Notification struct {
	ID     string
	Type   string
	Action string
	DataID string
}

type NotificationOutcome string

const (
	OutcomeIgnored   NotificationOutcome = "ignored"
	OutcomeDuplicate NotificationOutcome = "duplicate"
	OutcomePending   NotificationOutcome = "pending"
	OutcomeConfirmed NotificationOutcome = "confirmed"
	OutcomeRejected  NotificationOutcome = "rejected"
	OutcomeUnchanged NotificationOutcome = "unchanged"
)

type NotificationResult struct {
	Outcome NotificationOutcome
	OrderID string
	Status  order.Status
}

// ShippingPolicy prices DELIVERY orders. PICKUP is always free.
type ShippingPolicy struct {
	DeliveryFee money.Money
	// FreeThreshold waives the fee for subtotals at or above it. Zero
	// disables the waiver.
	FreeThreshold money.Money
}

func (p ShippingPolicy) Cost(t order.DeliveryType, subtotal money.Money) money.Money {
	if t != order.DeliveryDelivery {
		return money.Zero()
	}
	if !p.FreeThreshold.IsZero() && !subtotal.IsLessThan(p.FreeThreshold) {
		return money.Zero()
	}
	return p.DeliveryFee
}
