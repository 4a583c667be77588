package cart

import "github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/domainerr"

var (
	ErrInvalidItem      = domainerr.New(domainerr.KindValidation, "INVALID_CART_ITEM", "cart item is invalid")
	ErrInvalidQuantity  = domainerr.New(domainerr.KindValidation, "INVALID_QUANTITY", "quantity must be a positive integer")
	ErrInvalidDiscount  = domainerr.New(domainerr.KindBusiness, "INVALID_DISCOUNT", "discount exceeds cart subtotal")
	ErrEmptyCart        = domainerr.New(domainerr.KindBusiness, "EMPTY_CART", "cart is empty, nothing to checkout")
	ErrCartItemNotFound = domainerr.New(domainerr.KindNotFound, "CART_ITEM_NOT_FOUND", "item not found in cart")
	ErrCartNotFound     = domainerr.New(domainerr.KindNotFound, "CART_NOT_FOUND", "cart not found")
)
