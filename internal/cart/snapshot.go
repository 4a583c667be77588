package cart

import (
	"fmt"
	"time"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
)

// ItemSnapshot is the storage and transport shape of a cart line.
type ItemSnapshot struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	UnitPrice money.Money `json:"price"`
	Quantity  int         `json:"quantity"`
	Image     string      `json:"image,omitempty"`
	Subtotal  money.Money `json:"subtotal"`
}

// Snapshot is the storage and transport shape of a cart.
type Snapshot struct {
	ID        string         `json:"cartId"`
	OwnerID   string         `json:"ownerId"`
	Items     []ItemSnapshot `json:"items"`
	Discount  *money.Money   `json:"discount,omitempty"`
	Tax       *money.Money   `json:"tax,omitempty"`
	Subtotal  money.Money    `json:"subtotal"`
	Total     money.Money    `json:"totalAmount"`
	ItemCount int            `json:"itemCount"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Snapshot copies the cart state, including derived totals.
func (c *Cart) Snapshot() Snapshot {
	s := Snapshot{
		ID:        c.id,
		OwnerID:   c.ownerID,
		Items:     make([]ItemSnapshot, 0, len(c.items)),
		Subtotal:  c.Subtotal(),
		Total:     c.CalculateTotal(),
		ItemCount: c.ItemCount(),
		CreatedAt: c.createdAt,
		UpdatedAt: c.updatedAt,
	}
	for _, it := range c.items {
		s.Items = append(s.Items, ItemSnapshot{
			ProductID: it.productID,
			Name:      it.name,
			UnitPrice: it.unitPrice,
			Quantity:  it.quantity,
			Image:     it.image,
			Subtotal:  it.Subtotal(),
		})
	}
	if c.discount != nil {
		d := *c.discount
		s.Discount = &d
	}
	if c.tax != nil {
		t := *c.tax
		s.Tax = &t
	}
	return s
}

// FromSnapshot rebuilds a cart, re-checking line invariants. Derived fields
// of the snapshot are ignored.
func FromSnapshot(s Snapshot) (*Cart, error) {
	c := &Cart{
		id:        s.ID,
		ownerID:   s.OwnerID,
		items:     make([]Item, 0, len(s.Items)),
		createdAt: s.CreatedAt,
		updatedAt: s.UpdatedAt,
	}
	for _, is := range s.Items {
		if c.indexOf(is.ProductID) >= 0 {
			return nil, ErrInvalidItem.Withf("duplicate product %s in cart %s", is.ProductID, s.ID)
		}
		item, err := NewItem(is.ProductID, is.Name, is.UnitPrice, is.Quantity, is.Image)
		if err != nil {
			return nil, fmt.Errorf("cart %s: %w", s.ID, err)
		}
		c.items = append(c.items, item)
	}
	if s.Discount != nil {
		d := *s.Discount
		c.discount = &d
	}
	if s.Tax != nil {
		t := *s.Tax
		c.tax = &t
	}
	return c, nil
}
