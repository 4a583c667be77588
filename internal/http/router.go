package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/metrics"
)

type RouterOptions struct {
	RequestTimeout   time.Duration
	WebhookRateLimit float64
}

func NewRouter(h *Handler, logger logrus.FieldLogger, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(correlationID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metrics.Middleware)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(middleware.Timeout(opts.RequestTimeout))
		}

		r.Post("/api/checkout", h.Checkout)
		r.With(rateLimit(opts.WebhookRateLimit)).Post("/api/payments/webhook", h.PaymentWebhook)

		r.Get("/api/customers/{customerId}/orders", h.ListCustomerOrders)
		r.Route("/api/orders/{orderId}", func(r chi.Router) {
			r.Get("/", h.GetOrder)
			r.Post("/cancel", h.CancelOrder)
			r.Post("/refund", h.RefundOrder)
			r.Post("/status", h.UpdateOrderStatus)
		})

		r.Route("/api/carts/{cartId}", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.DeleteCart)
			r.Post("/items", h.AddCartItem)
			r.Delete("/items", h.ClearCart)
			r.Patch("/items/{productId}", h.UpdateCartItem)
			r.Delete("/items/{productId}", h.RemoveCartItem)
			r.Put("/discount", h.ApplyDiscount)
			r.Delete("/discount", h.RemoveDiscount)
			r.Put("/tax", h.ApplyTax)
			r.Delete("/tax", h.RemoveTax)
		})
	})

	return r
}
