package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/customer"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
)

type fakeCustomers struct {
	ValidateEligibilityFunc func(ctx context.Context, customerID string) (bool, error)
	ProfileFunc             func(ctx context.Context, customerID string) (customer.Profile, error)
	RecordOrderFunc         func(ctx context.Context, customerID string, amount money.Money, productIDs, categories []string) error
}

func (f *fakeCustomers) ValidateEligibility(ctx context.Context, customerID string) (bool, error) {
	return f.ValidateEligibilityFunc(ctx, customerID)
}

func (f *fakeCustomers) Profile(ctx context.Context, customerID string) (customer.Profile, error) {
	return f.ProfileFunc(ctx, customerID)
}

func (f *fakeCustomers) RecordOrder(ctx context.Context, customerID string, amount money.Money, productIDs, categories []string) error {
	if f.RecordOrderFunc == nil {
		return nil
	}
	return f.RecordOrderFunc(ctx, customerID, amount, productIDs, categories)
}

func activeCustomers() *fakeCustomers {
	return &fakeCustomers{
		ValidateEligibilityFunc: func(ctx context.Context, customerID string) (bool, error) {
			return true, nil
		},
		ProfileFunc: func(ctx context.Context, customerID string) (customer.Profile, error) {
			return customer.Profile{ID: customerID, Name: "Ana Rojas", Email: "ana@example.com", Active: true}, nil
		},
	}
}

// orderStore keeps snapshots so every load returns a fresh aggregate, like
// the SQL repository does, and rejects saves of a stale revision.
type orderStore struct {
	mu      sync.Mutex
	orders  map[string]order.Snapshot
	saves   int
	saveErr error
}

func newOrderStore() *orderStore {
	return &orderStore{orders: map[string]order.Snapshot{}}
}

func (s *orderStore) FindByID(ctx context.Context, orderID string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.orders[orderID]
	if !ok {
		return nil, nil
	}
	return order.FromSnapshot(snap)
}

func (s *orderStore) FindByPaymentReference(ctx context.Context, ref string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range s.orders {
		if snap.Payment != nil && (snap.Payment.PreferenceID == ref || snap.Payment.GatewayPaymentID == ref) {
			return order.FromSnapshot(snap)
		}
	}
	return nil, nil
}

func (s *orderStore) Save(ctx context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	stored, ok := s.orders[o.ID()]
	if (ok && stored.Version != o.Version()) || (!ok && o.Version() != 0) {
		return order.ErrConcurrentUpdate.Withf("order %s changed since revision %d", o.ID(), o.Version())
	}
	snap := o.Snapshot()
	snap.Version = o.Version() + 1
	s.orders[o.ID()] = snap
	return nil
}

// lockstepOrders holds the first n FindByID calls until all of them have
// loaded, so concurrent requests read the same revision before any saves.
type lockstepOrders struct {
	*orderStore
	mu      sync.Mutex
	pending int
	loads   sync.WaitGroup
}

func newLockstepOrders(store *orderStore, n int) *lockstepOrders {
	l := &lockstepOrders{orderStore: store, pending: n}
	l.loads.Add(n)
	return l
}

func (l *lockstepOrders) FindByID(ctx context.Context, orderID string) (*order.Order, error) {
	o, err := l.orderStore.FindByID(ctx, orderID)

	l.mu.Lock()
	join := l.pending > 0
	if join {
		l.pending--
	}
	l.mu.Unlock()

	if join {
		l.loads.Done()
		l.loads.Wait()
	}
	return o, err
}

func (s *orderStore) ListByCustomer(ctx context.Context, customerID string) ([]*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*order.Order
	for _, snap := range s.orders {
		if snap.Customer.ID != customerID {
			continue
		}
		o, err := order.FromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

type cartStore struct {
	carts     map[string]cart.Snapshot
	deleted   []string
	deleteErr error
}

func newCartStore() *cartStore {
	return &cartStore{carts: map[string]cart.Snapshot{}}
}

func (s *cartStore) FindByID(ctx context.Context, id string) (*cart.Cart, error) {
	snap, ok := s.carts[id]
	if !ok {
		return nil, nil
	}
	return cart.FromSnapshot(snap)
}

func (s *cartStore) Save(ctx context.Context, c *cart.Cart) error {
	s.carts[c.ID()] = c.Snapshot()
	return nil
}

func (s *cartStore) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	delete(s.carts, id)
	return nil
}

func (s *cartStore) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := s.carts[id]
	return ok, nil
}

type notificationLog struct {
	mu        sync.Mutex
	processed map[string]bool
}

func newNotificationLog() *notificationLog {
	return &notificationLog{processed: map[string]bool{}}
}

func (l *notificationLog) IsProcessed(ctx context.Context, source, notificationID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.processed[source+"/"+notificationID], nil
}

func (l *notificationLog) MarkProcessed(ctx context.Context, source, notificationID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := source + "/" + notificationID
	if l.processed[key] {
		return false, nil
	}
	l.processed[key] = true
	return true, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) record(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, name)
	return nil
}

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, o *order.Order) error {
	return p.record("OrderCreated:" + o.ID())
}

func (p *recordingPublisher) PublishOrderPaid(ctx context.Context, o *order.Order) error {
	return p.record("OrderPaid:" + o.ID())
}

func (p *recordingPublisher) PublishOrderPaymentRejected(ctx context.Context, o *order.Order) error {
	return p.record("OrderPaymentRejected:" + o.ID())
}

func (p *recordingPublisher) PublishOrderCancelled(ctx context.Context, o *order.Order) error {
	return p.record("OrderCancelled:" + o.ID())
}

var errBoom = errors.New("boom")
