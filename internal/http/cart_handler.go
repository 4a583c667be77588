package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/cart"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r)(h.carts.Get(r.Context(), chi.URLParam(r, "cartId")))
}

func (h *Handler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Delete(r.Context(), chi.URLParam(r, "cartId")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.writeCart(w, r)(h.carts.AddItem(r.Context(), chi.URLParam(r, "cartId"), req.OwnerID, cart.AddItemInput{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Image:     req.Image,
	}))
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.writeCart(w, r)(h.carts.UpdateItemQuantity(r.Context(), chi.URLParam(r, "cartId"), chi.URLParam(r, "productId"), req.Quantity))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r)(h.carts.RemoveItem(r.Context(), chi.URLParam(r, "cartId"), chi.URLParam(r, "productId")))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r)(h.carts.Clear(r.Context(), chi.URLParam(r, "cartId")))
}

func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.writeCart(w, r)(h.carts.ApplyDiscount(r.Context(), chi.URLParam(r, "cartId"), req.Amount))
}

func (h *Handler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r)(h.carts.RemoveDiscount(r.Context(), chi.URLParam(r, "cartId")))
}

func (h *Handler) ApplyTax(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.writeCart(w, r)(h.carts.ApplyTax(r.Context(), chi.URLParam(r, "cartId"), req.Amount))
}

func (h *Handler) RemoveTax(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r)(h.carts.RemoveTax(r.Context(), chi.URLParam(r, "cartId")))
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request) func(*cart.Cart, error) {
	return func(c *cart.Cart, err error) {
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, c.Snapshot())
	}
}
