package payment

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
)

// Sandbox is an in-memory Gateway for local runs and tests. Payments are
// created with Pay, standing in for the customer completing the checkout on
// the provider's page.
type Sandbox struct {
	baseURL string

	mu          sync.Mutex
	preferences map[string]PreferenceRequest
	payments    map[string]*Payment
}

func NewSandbox(baseURL string) *Sandbox {
	return &Sandbox{
		baseURL:     strings.TrimRight(baseURL, "/"),
		preferences: map[string]PreferenceRequest{},
		payments:    map[string]*Payment{},
	}
}

func (s *Sandbox) CreatePreference(ctx context.Context, req PreferenceRequest) (Preference, error) {
	if req.ExternalReference == "" || len(req.Items) == 0 {
		return Preference{}, ErrInvalidRequest.Withf("external reference and items are required")
	}

	id := "pref-" + uuid.NewString()

	s.mu.Lock()
	s.preferences[id] = req
	s.mu.Unlock()

	return Preference{
		PreferenceID:      id,
		InitPoint:         s.baseURL + "/checkout?pref_id=" + id,
		ExternalReference: req.ExternalReference,
	}, nil
}

// PreferenceTotal is the amount the customer is asked to pay for a
// preference.
func (s *Sandbox) PreferenceTotal(preferenceID string) (money.Money, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.preferences[preferenceID]
	if !ok {
		return money.Zero(), false
	}
	total := req.Shipping
	for _, it := range req.Items {
		total = total.Add(it.UnitPrice.Times(it.Quantity))
	}
	return total, true
}

// Pay records a payment against a preference and returns its id.
func (s *Sandbox) Pay(preferenceID string, amount money.Money, status Status) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.preferences[preferenceID]
	if !ok {
		return "", ErrInvalidRequest.Withf("unknown preference %s", preferenceID)
	}

	id := uuid.NewString()
	s.payments[id] = &Payment{
		ID:                id,
		PreferenceID:      preferenceID,
		ExternalReference: req.ExternalReference,
		Status:            status,
		Amount:            amount,
		Method:            "visa",
		PaymentType:       "credit_card",
		Installments:      1,
	}
	return id, nil
}

func (s *Sandbox) GetPayment(ctx context.Context, paymentID string) (Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[paymentID]
	if !ok {
		return Payment{}, ErrPaymentNotFound.Withf("payment %s not found", paymentID)
	}
	return *p, nil
}

func (s *Sandbox) Refund(ctx context.Context, paymentID string, amount *money.Money) (Refund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[paymentID]
	if !ok {
		return Refund{}, ErrPaymentNotFound.Withf("payment %s not found", paymentID)
	}
	if p.Status != StatusApproved {
		return Refund{}, ErrRefundRejected.Withf("payment %s is %s", paymentID, p.Status)
	}

	refunded := p.Amount
	if amount != nil {
		if amount.IsGreaterThan(p.Amount) {
			return Refund{}, ErrRefundRejected.Withf("refund %s exceeds payment %s", amount, p.Amount)
		}
		refunded = *amount
	}
	p.Status = StatusRefunded

	return Refund{RefundID: "refund-" + uuid.NewString(), Amount: refunded}, nil
}

var _ Gateway = (*Sandbox)(nil)
