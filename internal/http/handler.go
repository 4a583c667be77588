package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
)

// CheckoutService is the part of checkout.Service the API exposes.
type CheckoutService interface {
	ProcessCheckout(ctx context.Context, req checkout.Request) (*checkout.Result, error)
	HandlePaymentNotification(ctx context.Context, n checkout.Notification) (checkout.NotificationResult, error)
	GetOrder(ctx context.Context, orderID string) (*order.Order, error)
	ListCustomerOrders(ctx context.Context, customerID string) ([]*order.Order, error)
	CancelOrder(ctx context.Context, orderID, reason string) (*order.Order, error)
	RefundOrder(ctx context.Context, orderID string, amount *money.Money, reason string) (*order.Order, error)
	AdvanceOrder(ctx context.Context, orderID string, target order.Status, reason string) (*order.Order, error)
}

// CartService is the part of cart.Service the API exposes.
type CartService interface {
	Get(ctx context.Context, cartID string) (*cart.Cart, error)
	AddItem(ctx context.Context, cartID, ownerID string, in cart.AddItemInput) (*cart.Cart, error)
	UpdateItemQuantity(ctx context.Context, cartID, productID string, quantity int) (*cart.Cart, error)
	RemoveItem(ctx context.Context, cartID, productID string) (*cart.Cart, error)
	ApplyDiscount(ctx context.Context, cartID string, discount money.Money) (*cart.Cart, error)
	RemoveDiscount(ctx context.Context, cartID string) (*cart.Cart, error)
	ApplyTax(ctx context.Context, cartID string, tax money.Money) (*cart.Cart, error)
	RemoveTax(ctx context.Context, cartID string) (*cart.Cart, error)
	Clear(ctx context.Context, cartID string) (*cart.Cart, error)
	Delete(ctx context.Context, cartID string) error
}

type Handler struct {
	checkout CheckoutService
	carts    CartService
	logger   logrus.FieldLogger
}

func NewHandler(checkout CheckoutService, carts CartService, logger logrus.FieldLogger) *Handler {
	return &Handler{checkout: checkout, carts: carts, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "checkout-service",
	})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.checkout.ProcessCheckout(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCheckoutResponse(res))
}

func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.checkout.HandlePaymentNotification(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, webhookResponse{
		Outcome: string(res.Outcome),
		OrderID: res.OrderID,
		Status:  string(res.Status),
	})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.checkout.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, o.Snapshot())
}

func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.checkout.ListCustomerOrders(r.Context(), chi.URLParam(r, "customerId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	out := make([]order.Snapshot, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.Snapshot())
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var req reasonRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.writeOrder(w, r)(h.checkout.CancelOrder(r.Context(), chi.URLParam(r, "orderId"), req.Reason))
}

func (h *Handler) RefundOrder(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.writeOrder(w, r)(h.checkout.RefundOrder(r.Context(), chi.URLParam(r, "orderId"), req.Amount, req.Reason))
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	target, err := order.ParseStatus(req.Status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.writeOrder(w, r)(h.checkout.AdvanceOrder(r.Context(), chi.URLParam(r, "orderId"), target, req.Reason))
}

func (h *Handler) writeOrder(w http.ResponseWriter, r *http.Request) func(*order.Order, error) {
	return func(o *order.Order, err error) {
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, o.Snapshot())
	}
}

// decodeOptionalJSON accepts an empty body.
func decodeOptionalJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return nil
	}
	if empty, err := decodeBody(r, dst); err != nil && !empty {
		return err
	}
	return nil
}
