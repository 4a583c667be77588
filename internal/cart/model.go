package cart

import (
	"strings"
	"time"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
)

var now = func() time.Time { return time.Now().UTC() }

// Cart is the aggregate a customer assembles before checkout. It is not safe
// for concurrent use; callers own one cart per request.
type Cart struct {
	id        string
	ownerID   string
	items     []Item
	discount  *money.Money
	tax       *money.Money
	createdAt time.Time
	updatedAt time.Time
}

// New returns an empty cart for a customer or session.
func New(id, ownerID string) *Cart {
	ts := now()
	return &Cart{
		id:        id,
		ownerID:   ownerID,
		items:     []Item{},
		createdAt: ts,
		updatedAt: ts,
	}
}

func (c *Cart) ID() string           { return c.id }
func (c *Cart) OwnerID() string      { return c.ownerID }
func (c *Cart) CreatedAt() time.Time { return c.createdAt }
func (c *Cart) UpdatedAt() time.Time { return c.updatedAt }

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Item returns the line for productID.
func (c *Cart) Item(productID string) (Item, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.items[i], true
	}
	return Item{}, false
}

func (c *Cart) Discount() (money.Money, bool) {
	if c.discount == nil {
		return money.Zero(), false
	}
	return *c.discount, true
}

func (c *Cart) Tax() (money.Money, bool) {
	if c.tax == nil {
		return money.Zero(), false
	}
	return *c.tax, true
}

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// ItemCount is the total number of units across lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.items {
		n += it.quantity
	}
	return n
}

// AddItem appends a line or, when the product is already in the cart,
// increments its quantity keeping the stored name and price.
func (c *Cart) AddItem(productID, name string, price money.Money, quantity int, image string) error {
	if quantity <= 0 {
		return ErrInvalidQuantity.Withf("quantity must be positive, got %d", quantity)
	}
	if i := c.indexOf(productID); i >= 0 {
		c.items[i] = c.items[i].withQuantity(c.items[i].quantity + quantity)
		c.touch()
		return nil
	}

	item, err := NewItem(productID, name, price, quantity, image)
	if err != nil {
		return err
	}
	c.items = append(c.items, item)
	c.touch()
	return nil
}

// UpdateItemQuantity sets the quantity of a line; zero removes it.
func (c *Cart) UpdateItemQuantity(productID string, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity.Withf("quantity must not be negative, got %d", quantity)
	}
	if quantity == 0 {
		return c.RemoveItem(productID)
	}
	i := c.indexOf(productID)
	if i < 0 {
		return ErrCartItemNotFound.Withf("product %s is not in cart", productID)
	}
	c.items[i] = c.items[i].withQuantity(quantity)
	c.touch()
	return nil
}

func (c *Cart) RemoveItem(productID string) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrCartItemNotFound.Withf("product %s is not in cart", productID)
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.touch()
	return nil
}

// ApplyDiscount replaces the discount. It must not exceed the subtotal.
func (c *Cart) ApplyDiscount(discount money.Money) error {
	if discount.IsGreaterThan(c.Subtotal()) {
		return ErrInvalidDiscount.Withf("discount %s exceeds subtotal %s", discount, c.Subtotal())
	}
	d := discount
	c.discount = &d
	c.touch()
	return nil
}

func (c *Cart) RemoveDiscount() {
	c.discount = nil
	c.touch()
}

func (c *Cart) ApplyTax(tax money.Money) {
	t := tax
	c.tax = &t
	c.touch()
}

func (c *Cart) RemoveTax() {
	c.tax = nil
	c.touch()
}

func (c *Cart) Subtotal() money.Money {
	total := money.Zero()
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// CalculateTotal is subtotal - discount + tax. A discount applied before
// lines were removed counts at most up to the current subtotal.
func (c *Cart) CalculateTotal() money.Money {
	subtotal := c.Subtotal()
	afterDiscount := subtotal
	if c.discount != nil {
		if d, err := subtotal.Subtract(*c.discount); err == nil {
			afterDiscount = d
		} else {
			afterDiscount = money.Zero()
		}
	}
	if c.tax != nil {
		return afterDiscount.Add(*c.tax)
	}
	return afterDiscount
}

func (c *Cart) ValidateForCheckout() error {
	if len(c.items) == 0 {
		return ErrEmptyCart
	}
	return nil
}

// Clear drops all lines, the discount and the tax.
func (c *Cart) Clear() {
	c.items = []Item{}
	c.discount = nil
	c.tax = nil
	c.touch()
}

// indexOf looks up a line by product id. Ids are stored trimmed.
func (c *Cart) indexOf(productID string) int {
	productID = strings.TrimSpace(productID)
	for i := range c.items {
		if c.items[i].productID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) touch() {
	ts := now()
	if !ts.After(c.updatedAt) {
		ts = c.updatedAt.Add(time.Nanosecond)
	}
	c.updatedAt = ts
}
