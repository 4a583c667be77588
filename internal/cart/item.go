package cart

import (
	"strings"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
)

// Item is an immutable cart line. Identity is the product id.
type Item struct {
	productID string
	name      string
	unitPrice money.Money
	quantity  int
	image     string
}

// NewItem validates and builds a cart line.
func NewItem(productID, name string, unitPrice money.Money, quantity int, image string) (Item, error) {
	productID = strings.TrimSpace(productID)
	name = strings.TrimSpace(name)
	if productID == "" {
		return Item{}, ErrInvalidItem.Withf("productId is required")
	}
	if name == "" {
		return Item{}, ErrInvalidItem.Withf("name is required for product %s", productID)
	}
	if quantity <= 0 {
		return Item{}, ErrInvalidQuantity.Withf("quantity must be positive, got %d", quantity)
	}
	return Item{
		productID: productID,
		name:      name,
		unitPrice: unitPrice,
		quantity:  quantity,
		image:     image,
	}, nil
}

func (i Item) ProductID() string      { return i.productID }
func (i Item) Name() string           { return i.name }
func (i Item) UnitPrice() money.Money { return i.unitPrice }
func (i Item) Quantity() int          { return i.quantity }
func (i Item) Image() string          { return i.image }

// Subtotal is unit price times quantity.
func (i Item) Subtotal() money.Money {
	return i.unitPrice.Times(i.quantity)
}

func (i Item) withQuantity(q int) Item {
	i.quantity = q
	return i
}
