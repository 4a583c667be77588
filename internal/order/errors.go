package order

import "github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/domainerr"

var (
	ErrEmptyOrder              = domainerr.New(domainerr.KindBusiness, "EMPTY_ORDER", "order must contain at least one item")
	ErrInvalidOrderState       = domainerr.New(domainerr.KindBusiness, "INVALID_ORDER_STATE", "operation not allowed in current order state")
	ErrPaymentAlreadyConfirmed = domainerr.New(domainerr.KindBusiness, "PAYMENT_ALREADY_CONFIRMED", "order payment is already confirmed")
	ErrAmountMismatch          = domainerr.New(domainerr.KindBusiness, "AMOUNT_MISMATCH", "paid amount does not match order total")
	ErrInvalidRefund           = domainerr.New(domainerr.KindBusiness, "INVALID_REFUND", "refund amount exceeds order total")
	ErrInvalidOrderItem        = domainerr.New(domainerr.KindValidation, "INVALID_ORDER_ITEM", "order item is invalid")
	ErrInvalidCustomer         = domainerr.New(domainerr.KindValidation, "INVALID_CUSTOMER", "customer is required")
	ErrInvalidDelivery         = domainerr.New(domainerr.KindValidation, "INVALID_DELIVERY", "delivery information is invalid")
	ErrInvalidPaymentMethod    = domainerr.New(domainerr.KindValidation, "INVALID_PAYMENT_METHOD", "payment method is not supported")
	ErrInvalidStatus           = domainerr.New(domainerr.KindValidation, "INVALID_STATUS", "order status is invalid")
	ErrOrderNotFound           = domainerr.New(domainerr.KindNotFound, "ORDER_NOT_FOUND", "order not found")
	ErrConcurrentUpdate        = domainerr.New(domainerr.KindBusiness, "ORDER_CONCURRENT_UPDATE", "order was changed by another request, retry")
)
