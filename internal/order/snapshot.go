package order

import (
	"time"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
)

// Snapshot is the serialisable view of an order used by storage and
// transport. Derived totals are included for readers and ignored by
// FromSnapshot.
type Snapshot struct {
	ID           string         `json:"orderId"`
	Customer     Customer       `json:"customer"`
	Items        []Item         `json:"items"`
	Delivery     Delivery       `json:"delivery"`
	Payment      *PaymentInfo   `json:"payment,omitempty"`
	Status       Status         `json:"status"`
	History      []StatusChange `json:"statusHistory"`
	Notes        string         `json:"notes,omitempty"`
	Subtotal     money.Money    `json:"subtotal"`
	ShippingCost money.Money    `json:"shippingCost"`
	Total        money.Money    `json:"totalAmount"`
	ItemCount    int            `json:"itemCount"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	Version      int64          `json:"version"`
}

func (o *Order) Snapshot() Snapshot {
	var p *PaymentInfo
	if o.payment != nil {
		cp := *o.payment
		p = &cp
	}
	return Snapshot{
		ID:           o.id,
		Customer:     o.customer,
		Items:        o.Items(),
		Delivery:     o.delivery,
		Payment:      p,
		Status:       o.status,
		History:      o.History(),
		Notes:        o.notes,
		Subtotal:     o.CalculateSubtotal(),
		ShippingCost: o.CalculateShippingCost(),
		Total:        o.CalculateTotal(),
		ItemCount:    o.ItemCount(),
		CreatedAt:    o.createdAt,
		UpdatedAt:    o.updatedAt,
		Version:      o.version,
	}
}

// FromSnapshot rebuilds an order, re-checking the invariants New enforces.
func FromSnapshot(s Snapshot) (*Order, error) {
	if s.Customer.ID == "" {
		return nil, ErrInvalidCustomer
	}
	if len(s.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if err := validateItems(s.Items); err != nil {
		return nil, err
	}
	if err := validateDelivery(s.Delivery); err != nil {
		return nil, err
	}
	if !s.Status.Valid() {
		return nil, ErrInvalidStatus.Withf("unknown order status %q", s.Status)
	}

	o := &Order{
		id:        s.ID,
		customer:  s.Customer,
		items:     append([]Item(nil), s.Items...),
		delivery:  s.Delivery,
		status:    s.Status,
		history:   append([]StatusChange(nil), s.History...),
		notes:     s.Notes,
		createdAt: s.CreatedAt,
		updatedAt: s.UpdatedAt,
		version:   s.Version,
	}
	if s.Payment != nil {
		cp := *s.Payment
		o.payment = &cp
	}
	return o, nil
}
