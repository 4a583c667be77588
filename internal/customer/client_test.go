package customer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/resilience"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	logger, _ := test.NewNullLogger()
	return NewClient(srv.URL, 2*time.Second, logger)
}

func writeProfile(w http.ResponseWriter, p Profile) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

func TestProfile(t *testing.T) {
	var gotCID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/customers/cust-1", r.URL.Path)
		gotCID = r.Header.Get(logging.HeaderCorrelationID)
		writeProfile(w, Profile{ID: "cust-1", Name: "Ana", Active: true, TotalSpent: money.MustNew(12000), OrderCount: 2})
	})

	ctx := logging.WithCorrelationID(context.Background(), "cid-9")
	p, err := c.Profile(ctx, "cust-1")
	require.NoError(t, err)

	assert.Equal(t, "Ana", p.Name)
	assert.True(t, p.TotalSpent.Equals(money.MustNew(12000)))
	assert.Equal(t, "cid-9", gotCID)
}

func TestValidateEligibility(t *testing.T) {
	tests := map[string]struct {
		status int
		prof   Profile
		want   bool
	}{
		"active":    {status: http.StatusOK, prof: Profile{ID: "c", Active: true}, want: true},
		"inactive":  {status: http.StatusOK, prof: Profile{ID: "c", Active: false}, want: false},
		"blocked":   {status: http.StatusOK, prof: Profile{ID: "c", Active: true, Blocked: true}, want: false},
		"not found": {status: http.StatusNotFound, want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.status != http.StatusOK {
					w.WriteHeader(tt.status)
					return
				}
				writeProfile(w, tt.prof)
			})

			ok, err := c.ValidateEligibility(context.Background(), "c")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestValidateEligibility_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ValidateEligibility(context.Background(), "c")
	require.ErrorIs(t, err, ErrServiceFailure)
}

func TestBreakerOpensOnRepeatedFailures(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 3; i++ {
		_, err := c.Profile(context.Background(), "c")
		require.ErrorIs(t, err, ErrServiceFailure)
	}

	_, err := c.Profile(context.Background(), "c")
	require.ErrorIs(t, err, resilience.ErrUnavailable)
	assert.Equal(t, 3, calls)
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 5; i++ {
		_, err := c.Profile(context.Background(), "ghost")
		require.ErrorIs(t, err, ErrCustomerNotFound)
	}
}

func TestRecordOrder(t *testing.T) {
	var body orderRecord
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/customers/cust-1/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.RecordOrder(context.Background(), "cust-1", money.MustNew(8600), []string{"p1", "p2"}, []string{"cakes"})
	require.NoError(t, err)

	assert.True(t, body.Amount.Equals(money.MustNew(8600)))
	assert.Equal(t, []string{"p1", "p2"}, body.ProductIDs)
	assert.Equal(t, []string{"cakes"}, body.Categories)
}

func TestRecordOrder_Failure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := c.RecordOrder(context.Background(), "cust-1", money.MustNew(1), nil, nil)
	require.ErrorIs(t, err, ErrServiceFailure)
}
