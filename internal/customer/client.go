package customer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/domainerr"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/resilience"
)

var (
	ErrCustomerNotFound = domainerr.New(domainerr.KindNotFound, "CUSTOMER_NOT_FOUND", "customer not found")
	ErrServiceFailure   = domainerr.New(domainerr.KindInfrastructure, "CUSTOMER_SERVICE_ERROR", "customer service request failed")
)

// Profile is the customer service view of a customer.
type Profile struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone,omitempty"`
	Active     bool        `json:"active"`
	Blocked    bool        `json:"blocked"`
	TotalSpent money.Money `json:"totalSpent"`
	OrderCount int         `json:"orderCount"`
}

// CanOrder reports whether the customer may place orders.
func (p Profile) CanOrder() bool {
	return p.Active && !p.Blocked
}

type orderRecord struct {
	Amount     money.Money `json:"amount"`
	ProductIDs []string    `json:"productIds"`
	Categories []string    `json:"categories"`
}

// Client talks to the customer service over REST behind a circuit breaker.
type Client struct {
	http    *resty.Client
	breaker *resilience.CircuitBreaker
	logger  logrus.FieldLogger
}

func NewClient(baseURL string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	hc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{
		http: hc,
		breaker: resilience.NewCircuitBreaker(resilience.Settings{
			Name: "customer-service",
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrCustomerNotFound)
			},
		}, logger),
		logger: logger,
	}
}

func (c *Client) Profile(ctx context.Context, customerID string) (Profile, error) {
	v, err := c.breaker.Execute(func() (any, error) {
		resp, err := c.request(ctx).Get("/api/customers/" + url.PathEscape(customerID))
		if err != nil {
			return nil, ErrServiceFailure.Wrap(err)
		}
		switch resp.StatusCode() {
		case http.StatusOK:
		case http.StatusNotFound:
			return nil, ErrCustomerNotFound.Withf("customer %s not found", customerID)
		default:
			return nil, ErrServiceFailure.Withf("get customer %s: status %d", customerID, resp.StatusCode())
		}

		var p Profile
		if err := json.Unmarshal(resp.Body(), &p); err != nil {
			return nil, ErrServiceFailure.Wrap(fmt.Errorf("decode customer: %w", err))
		}
		return p, nil
	})
	if err != nil {
		return Profile{}, err
	}
	return v.(Profile), nil
}

// ValidateEligibility reports whether the customer exists and may order.
func (c *Client) ValidateEligibility(ctx context.Context, customerID string) (bool, error) {
	p, err := c.Profile(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.CanOrder(), nil
}

// RecordOrder updates the customer's purchase statistics.
func (c *Client) RecordOrder(ctx context.Context, customerID string, amount money.Money, productIDs, categories []string) error {
	_, err := c.breaker.Execute(func() (any, error) {
		resp, err := c.request(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(orderRecord{Amount: amount, ProductIDs: productIDs, Categories: categories}).
			Post("/api/customers/" + url.PathEscape(customerID) + "/orders")
		if err != nil {
			return nil, ErrServiceFailure.Wrap(err)
		}
		switch resp.StatusCode() {
		case http.StatusOK, http.StatusCreated, http.StatusNoContent:
			return nil, nil
		case http.StatusNotFound:
			return nil, ErrCustomerNotFound.Withf("customer %s not found", customerID)
		default:
			return nil, ErrServiceFailure.Withf("record order for %s: status %d", customerID, resp.StatusCode())
		}
	})
	return err
}

func (c *Client) request(ctx context.Context) *resty.Request {
	r := c.http.R().SetContext(ctx)
	if cid := logging.CorrelationID(ctx); cid != "" {
		r.SetHeader(logging.HeaderCorrelationID, cid)
	}
	return r
}
