package payment

import (
	"context"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/domainerr"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
)

var (
	ErrPaymentNotFound = domainerr.New(domainerr.KindNotFound, "PAYMENT_NOT_FOUND", "payment not found")
	ErrRefundRejected  = domainerr.New(domainerr.KindBusiness, "REFUND_REJECTED", "payment cannot be refunded")
	ErrInvalidRequest  = domainerr.New(domainerr.KindValidation, "INVALID_PAYMENT_REQUEST", "payment request is invalid")
)

// Status is the gateway's view of a payment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

type Item struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Quantity  int         `json:"quantity"`
	UnitPrice money.Money `json:"unitPrice"`
}

type Payer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PreferenceRequest struct {
	// ExternalReference is echoed back on every payment for the preference.
	ExternalReference string
	Items             []Item
	Shipping          money.Money
	Currency          string
	Payer             Payer
	NotificationURL   string
}

type Preference struct {
	PreferenceID      string `json:"preferenceId"`
	InitPoint         string `json:"initPoint"`
	ExternalReference string `json:"externalReference"`
}

type Payment struct {
	ID                string
	PreferenceID      string
	ExternalReference string
	Status            Status
	StatusDetail      string
	Amount            money.Money
	Method            string
	PaymentType       string
	Installments      int
}

type Refund struct {
	RefundID string
	Amount   money.Money
}

// Gateway is the payment provider contract the checkout flow relies on.
type Gateway interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (Preference, error)
	GetPayment(ctx context.Context, paymentID string) (Payment, error)
	// Refund returns the full payment when amount is nil.
	Refund(ctx context.Context, paymentID string, amount *money.Money) (Refund, error)
}
