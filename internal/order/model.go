package order

import (
	"strings"
	"time"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
)

var now = func() time.Time { return time.Now().UTC() }

type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Item is a line of the order with the price captured at order time.
type Item struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	Category  string      `json:"category,omitempty"`
	UnitPrice money.Money `json:"price"`
	Quantity  int         `json:"quantity"`
}

func (i Item) Subtotal() money.Money {
	return i.UnitPrice.Times(i.Quantity)
}

type Delivery struct {
	Type          DeliveryType `json:"type"`
	Address       string       `json:"address,omitempty"`
	Instructions  string       `json:"instructions,omitempty"`
	EstimatedDate *time.Time   `json:"estimatedDate,omitempty"`
	ShippingCost  money.Money  `json:"shippingCost"`
}

type PaymentInfo struct {
	Method           PaymentMethod `json:"method"`
	Status           PaymentStatus `json:"status"`
	Amount           money.Money   `json:"amount"`
	Currency         string        `json:"currency"`
	PreferenceID     string        `json:"preferenceId,omitempty"`
	GatewayPaymentID string        `json:"gatewayPaymentId,omitempty"`
	PaymentType      string        `json:"paymentType,omitempty"`
	Installments     int           `json:"installments,omitempty"`
	RejectionReason  string        `json:"rejectionReason,omitempty"`
	RefundID         string        `json:"refundId,omitempty"`
	RefundedAmount   *money.Money  `json:"refundedAmount,omitempty"`
	ConfirmedAt      *time.Time    `json:"confirmedAt,omitempty"`
}

type StatusChange struct {
	From   Status    `json:"from,omitempty"`
	To     Status    `json:"to"`
	At     time.Time `json:"at"`
	Reason string    `json:"reason,omitempty"`
}

// Order is the purchase aggregate. State changes only through its methods;
// it is not safe for concurrent use.
type Order struct {
	id        string
	customer  Customer
	items     []Item
	delivery  Delivery
	payment   *PaymentInfo
	status    Status
	history   []StatusChange
	notes     string
	createdAt time.Time
	updatedAt time.Time

	// version is the stored revision this aggregate was loaded from; zero
	// until the first save.
	version int64
}

// New creates an order in PENDING_PAYMENT. Items are copied so later catalog
// changes never reach the order.
func New(id string, customer Customer, items []Item, delivery Delivery, notes string) (*Order, error) {
	if strings.TrimSpace(customer.ID) == "" {
		return nil, ErrInvalidCustomer
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}
	if err := validateDelivery(delivery); err != nil {
		return nil, err
	}
	if delivery.Type == DeliveryPickup {
		delivery.ShippingCost = money.Zero()
	}

	ts := now()
	lines := make([]Item, len(items))
	copy(lines, items)

	return &Order{
		id:        id,
		customer:  customer,
		items:     lines,
		delivery:  delivery,
		status:    StatusPendingPayment,
		history:   []StatusChange{{To: StatusPendingPayment, At: ts, Reason: "order created"}},
		notes:     strings.TrimSpace(notes),
		createdAt: ts,
		updatedAt: ts,
	}, nil
}

func validateItems(items []Item) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.ProductID) == "" || strings.TrimSpace(it.Name) == "" {
			return ErrInvalidOrderItem.Withf("product id and name are required")
		}
		if it.Quantity <= 0 {
			return ErrInvalidOrderItem.Withf("quantity for %s must be positive, got %d", it.ProductID, it.Quantity)
		}
		if _, dup := seen[it.ProductID]; dup {
			return ErrInvalidOrderItem.Withf("product %s appears more than once", it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}

func validateDelivery(d Delivery) error {
	if !d.Type.Valid() {
		return ErrInvalidDelivery.Withf("unknown delivery type %q", d.Type)
	}
	if d.Type == DeliveryDelivery && strings.TrimSpace(d.Address) == "" {
		return ErrInvalidDelivery.Withf("delivery address is required")
	}
	return nil
}

func (o *Order) ID() string           { return o.id }
func (o *Order) Customer() Customer   { return o.customer }
func (o *Order) Delivery() Delivery   { return o.delivery }
func (o *Order) Status() Status       { return o.status }
func (o *Order) Notes() string        { return o.notes }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }
func (o *Order) Version() int64       { return o.version }

func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

func (o *Order) History() []StatusChange {
	out := make([]StatusChange, len(o.history))
	copy(out, o.history)
	return out
}

// Payment returns a copy of the payment info, if any was configured.
func (o *Order) Payment() (PaymentInfo, bool) {
	if o.payment == nil {
		return PaymentInfo{}, false
	}
	return *o.payment, true
}

func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.items {
		n += it.Quantity
	}
	return n
}

func (o *Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.items))
	for _, it := range o.items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

// Categories returns the distinct non-empty item categories in item order.
func (o *Order) Categories() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, it := range o.items {
		if it.Category == "" {
			continue
		}
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		out = append(out, it.Category)
	}
	return out
}

func (o *Order) CalculateSubtotal() money.Money {
	total := money.Zero()
	for _, it := range o.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (o *Order) CalculateShippingCost() money.Money {
	if o.delivery.Type == DeliveryPickup {
		return money.Zero()
	}
	return o.delivery.ShippingCost
}

func (o *Order) CalculateTotal() money.Money {
	return o.CalculateSubtotal().Add(o.CalculateShippingCost())
}

// SetPaymentMethod records how the customer intends to pay.
func (o *Order) SetPaymentMethod(method PaymentMethod, currency string) error {
	if !method.Valid() {
		return ErrInvalidPaymentMethod.Withf("unknown payment method %q", method)
	}
	if o.status != StatusPendingPayment {
		return ErrInvalidOrderState.Withf("cannot set payment method on %s order", o.status)
	}
	o.payment = &PaymentInfo{
		Method:   method,
		Status:   PaymentPending,
		Amount:   o.CalculateTotal(),
		Currency: currency,
	}
	o.touch()
	return nil
}

// ConfigurePayment attaches the gateway preference created for this order.
func (o *Order) ConfigurePayment(preferenceID string) error {
	if o.status != StatusPendingPayment {
		return ErrInvalidOrderState.Withf("cannot configure payment on %s order", o.status)
	}
	if strings.TrimSpace(preferenceID) == "" {
		return ErrInvalidOrderState.Withf("preference id is required")
	}
	if o.payment == nil {
		o.payment = &PaymentInfo{Method: MethodGateway, Status: PaymentPending, Amount: o.CalculateTotal()}
	}
	o.payment.PreferenceID = preferenceID
	o.touch()
	return nil
}

// ConfirmPayment marks the order PAID. A repeated confirmation for the same
// payment id is a no-op so redelivered notifications are harmless.
func (o *Order) ConfirmPayment(paymentID, paymentType string, installments int, paid money.Money) error {
	if o.payment != nil && o.payment.Status == PaymentApproved {
		if o.payment.GatewayPaymentID == paymentID {
			return nil
		}
		return ErrPaymentAlreadyConfirmed.Withf("order %s already paid with payment %s", o.id, o.payment.GatewayPaymentID)
	}
	if !o.status.CanTransitionTo(StatusPaid) {
		return ErrInvalidOrderState.Withf("cannot confirm payment on %s order", o.status)
	}
	total := o.CalculateTotal()
	if !paid.Equals(total) {
		return ErrAmountMismatch.Withf("paid %s, order %s totals %s", paid, o.id, total)
	}

	if o.payment == nil {
		o.payment = &PaymentInfo{Method: MethodGateway}
	}
	ts := now()
	o.payment.Status = PaymentApproved
	o.payment.GatewayPaymentID = paymentID
	o.payment.PaymentType = paymentType
	o.payment.Installments = installments
	o.payment.Amount = paid
	o.payment.RejectionReason = ""
	o.payment.ConfirmedAt = &ts

	return o.transition(StatusPaid, "payment "+paymentID+" approved")
}

// RejectPayment moves a pending order to PAYMENT_REJECTED. Once the payment
// has reached a final state further rejections are ignored.
func (o *Order) RejectPayment(paymentID, reason string) error {
	if o.payment != nil && o.payment.Status.IsFinal() {
		return nil
	}
	if o.status != StatusPendingPayment {
		return ErrInvalidOrderState.Withf("cannot reject payment on %s order", o.status)
	}
	if o.payment == nil {
		o.payment = &PaymentInfo{Method: MethodGateway, Amount: o.CalculateTotal()}
	}
	o.payment.Status = PaymentRejected
	o.payment.GatewayPaymentID = paymentID
	o.payment.RejectionReason = reason

	return o.transition(StatusPaymentRejected, reason)
}

// Refund records a refund of an approved payment and cancels the order.
func (o *Order) Refund(refundID string, amount money.Money, reason string) error {
	if o.payment != nil && o.payment.Status == PaymentRefunded && o.payment.RefundID == refundID {
		return nil
	}
	if err := o.CheckRefundable(); err != nil {
		return err
	}
	if total := o.CalculateTotal(); amount.IsGreaterThan(total) && !amount.Equals(total) {
		return ErrInvalidRefund.Withf("refund %s exceeds order total %s", amount, total)
	}

	o.payment.Status = PaymentRefunded
	o.payment.RefundID = refundID
	o.payment.RefundedAmount = &amount

	if reason == "" {
		reason = "payment refunded"
	}
	return o.transition(StatusCancelled, reason)
}

// CheckRefundable reports why the order cannot be refunded, or nil when it
// holds an approved payment and has not been delivered.
func (o *Order) CheckRefundable() error {
	if o.payment == nil || o.payment.Status != PaymentApproved {
		return ErrInvalidOrderState.Withf("order %s has no approved payment to refund", o.id)
	}
	switch o.status {
	case StatusPaid, StatusInPreparation, StatusReady:
		return nil
	default:
		return ErrInvalidOrderState.Withf("cannot refund %s order", o.status)
	}
}

func (o *Order) Cancel(reason string) error {
	if o.status.IsTerminal() {
		return ErrInvalidOrderState.Withf("cannot cancel %s order", o.status)
	}
	return o.transition(StatusCancelled, reason)
}

func (o *Order) StartPreparation() error {
	return o.transition(StatusInPreparation, "")
}

func (o *Order) MarkReady() error {
	return o.transition(StatusReady, "")
}

func (o *Order) MarkDelivered() error {
	return o.transition(StatusDelivered, "")
}

func (o *Order) transition(to Status, reason string) error {
	if !o.status.CanTransitionTo(to) {
		return ErrInvalidOrderState.Withf("cannot move order %s from %s to %s", o.id, o.status, to)
	}
	o.history = append(o.history, StatusChange{From: o.status, To: to, At: now(), Reason: reason})
	o.status = to
	o.touch()
	return nil
}

func (o *Order) touch() {
	ts := now()
	if !ts.After(o.updatedAt) {
		ts = o.updatedAt.Add(time.Nanosecond)
	}
	o.updatedAt = ts
}
