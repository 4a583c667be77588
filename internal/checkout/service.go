package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/dedup"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/domainerr"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/payment"
)

var newOrderID = func() string { return uuid.NewString() }

// Dependencies are the collaborators of the checkout service. Events and
// Notifications are optional.
type Dependencies struct {
	Customers     Customers
	Orders        order.Repository
	Carts         cart.Repository
	Gateway       payment.Gateway
	Notifications dedup.Repository
	Events        EventPublisher
	Logger        logrus.FieldLogger
}

type Options struct {
	Shipping        ShippingPolicy
	Currency        string
	Locale          string
	NotificationURL string
}

// Service coordinates customers, orders, carts and the payment gateway. It
// holds no per-request state.
type Service struct {
	customers     Customers
	orders        order.Repository
	carts         cart.Repository
	gateway       payment.Gateway
	notifications dedup.Repository
	events        EventPublisher
	logger        logrus.FieldLogger

	shipping        ShippingPolicy
	currency        string
	locale          string
	notificationURL string
}

func NewService(deps Dependencies, opts Options) *Service {
	if deps.Events == nil {
		deps.Events = nopPublisher{}
	}
	return &Service{
		customers:       deps.Customers,
		orders:          deps.Orders,
		carts:           deps.Carts,
		gateway:         deps.Gateway,
		notifications:   deps.Notifications,
		events:          deps.Events,
		logger:          deps.Logger,
		shipping:        opts.Shipping,
		currency:        opts.Currency,
		locale:          opts.Locale,
		notificationURL: opts.NotificationURL,
	}
}

// ProcessCheckout validates the customer, creates the order, configures the
// gateway payment when needed and persists the order. Customer statistics,
// the OrderCreated event and cart removal happen after the order is saved
// and never fail the checkout.
func (s *Service) ProcessCheckout(ctx context.Context, req Request) (*Result, error) {
	res, err := s.processCheckout(ctx, req)
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues(checkoutResult(err)).Inc()
		if domainerr.IsDomain(err) {
			return nil, err
		}
		s.log(ctx).WithError(err).WithField("customer_id", req.CustomerID).Error("checkout failed")
		return nil, ErrCheckoutFailed.Wrap(err)
	}

	metrics.CheckoutsTotal.WithLabelValues("success").Inc()
	metrics.OrderTotalAmount.Observe(res.Summary.Total.Float64())
	return res, nil
}

func (s *Service) processCheckout(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.CustomerID) == "" {
		return nil, ErrInvalidRequest.Withf("customer id is required")
	}

	ok, err := s.customers.ValidateEligibility(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCustomerNotEligible.Withf("customer %s is not allowed to place orders", req.CustomerID)
	}
	profile, err := s.customers.Profile(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	items, err := s.resolveItems(ctx, req)
	if err != nil {
		return nil, err
	}

	subtotal := money.Zero()
	for _, it := range items {
		subtotal = subtotal.Add(it.Subtotal())
	}

	o, err := order.New(
		newOrderID(),
		order.Customer{ID: profile.ID, Name: profile.Name, Email: profile.Email, Phone: profile.Phone},
		items,
		order.Delivery{
			Type:         req.Delivery.Type,
			Address:      strings.TrimSpace(req.Delivery.Address),
			Instructions: strings.TrimSpace(req.Delivery.Instructions),
			ShippingCost: s.shipping.Cost(req.Delivery.Type, subtotal),
		},
		req.Notes,
	)
	if err != nil {
		return nil, err
	}
	if err := o.SetPaymentMethod(req.PaymentMethod, s.currency); err != nil {
		return nil, err
	}

	var cfg *PaymentConfig
	if req.PaymentMethod == order.MethodGateway {
		pref, err := s.gateway.CreatePreference(ctx, s.preferenceRequest(o))
		if err != nil {
			return nil, err
		}
		if err := o.ConfigurePayment(pref.PreferenceID); err != nil {
			return nil, err
		}
		cfg = &PaymentConfig{PreferenceID: pref.PreferenceID, InitPoint: pref.InitPoint}
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	log := s.log(ctx).WithFields(logrus.Fields{"order_id": o.ID(), "customer_id": profile.ID})
	log.WithField("total", o.CalculateTotal().String()).Info("order created")

	if err := s.customers.RecordOrder(ctx, profile.ID, o.CalculateTotal(), o.ProductIDs(), o.Categories()); err != nil {
		log.WithError(err).Warn("customer statistics not updated")
	}
	s.publish(ctx, o, s.events.PublishOrderCreated)
	if req.CartID != "" {
		if err := s.carts.Delete(ctx, req.CartID); err != nil {
			log.WithError(err).WithField("cart_id", req.CartID).Warn("cart not removed after checkout")
		}
	}

	return &Result{
		Order:         o,
		Customer:      profile,
		PaymentConfig: cfg,
		Summary: Summary{
			Subtotal:       o.CalculateSubtotal(),
			ShippingCost:   o.CalculateShippingCost(),
			Total:          o.CalculateTotal(),
			ItemCount:      o.ItemCount(),
			PaymentMethod:  req.PaymentMethod,
			DeliveryType:   o.Delivery().Type,
			FormattedTotal: o.CalculateTotal().Format(s.currency, s.locale),
		},
	}, nil
}

// resolveItems prefers inline items and falls back to the stored cart.
func (s *Service) resolveItems(ctx context.Context, req Request) ([]order.Item, error) {
	if len(req.Items) > 0 {
		items := make([]order.Item, 0, len(req.Items))
		for _, in := range req.Items {
			items = append(items, order.Item{
				ProductID: strings.TrimSpace(in.ProductID),
				Name:      strings.TrimSpace(in.Name),
				Category:  strings.TrimSpace(in.Category),
				UnitPrice: in.Price,
				Quantity:  in.Quantity,
			})
		}
		return items, nil
	}
	if req.CartID == "" {
		return nil, order.ErrEmptyOrder
	}

	c, err := s.carts.FindByID(ctx, req.CartID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, cart.ErrCartNotFound.Withf("cart %s not found", req.CartID)
	}
	if err := c.ValidateForCheckout(); err != nil {
		return nil, err
	}
	// Orders carry no discount or tax lines.
	_, hasDiscount := c.Discount()
	_, hasTax := c.Tax()
	if hasDiscount || hasTax {
		return nil, ErrCartAdjustments.Withf("cart %s has a discount or tax, remove it or send the items inline", c.ID())
	}

	items := make([]order.Item, 0, len(c.Items()))
	for _, it := range c.Items() {
		items = append(items, order.Item{
			ProductID: it.ProductID(),
			Name:      it.Name(),
			UnitPrice: it.UnitPrice(),
			Quantity:  it.Quantity(),
		})
	}
	return items, nil
}

func (s *Service) preferenceRequest(o *order.Order) payment.PreferenceRequest {
	items := make([]payment.Item, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, payment.Item{
			ID:        it.ProductID,
			Title:     it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return payment.PreferenceRequest{
		ExternalReference: o.ID(),
		Items:             items,
		Shipping:          o.CalculateShippingCost(),
		Currency:          s.currency,
		Payer:             payment.Payer{Name: o.Customer().Name, Email: o.Customer().Email},
		NotificationURL:   s.notificationURL,
	}
}

// publish runs one event publication and only logs failures.
func (s *Service) publish(ctx context.Context, o *order.Order, fn func(context.Context, *order.Order) error) {
	if err := fn(ctx, o); err != nil {
		s.log(ctx).WithError(err).WithField("order_id", o.ID()).Warn("order event not published")
	}
}

func (s *Service) log(ctx context.Context) logrus.FieldLogger {
	return logging.FromContext(ctx, s.logger)
}

func checkoutResult(err error) string {
	switch domainerr.KindOf(err) {
	case domainerr.KindValidation:
		return "invalid"
	case domainerr.KindBusiness, domainerr.KindNotFound:
		return "rejected"
	default:
		return "error"
	}
}

type nopPublisher struct{}

func (nopPublisher) PublishOrderCreated(context.Context, *order.Order) error         { return nil }
func (nopPublisher) PublishOrderPaid(context.Context, *order.Order) error            { return nil }
func (nopPublisher) PublishOrderPaymentRejected(context.Context, *order.Order) error { return nil }
func (nopPublisher) PublishOrderCancelled(context.Context, *order.Order) error       { return nil }
