package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
)

type fakeRepository struct {
	carts   map[string]Snapshot
	saveErr error
	findErr error
	saves   int
	deletes int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{carts: map[string]Snapshot{}}
}

func (f *fakeRepository) FindByID(ctx context.Context, id string) (*Cart, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	s, ok := f.carts[id]
	if !ok {
		return nil, nil
	}
	return FromSnapshot(s)
}

func (f *fakeRepository) Save(ctx context.Context, c *Cart) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.carts[c.ID()] = c.Snapshot()
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id string) error {
	f.deletes++
	delete(f.carts, id)
	return nil
}

func (f *fakeRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := f.carts[id]
	return ok, nil
}

func TestServiceAddItemCreatesAndPersists(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	c, err := svc.AddItem(ctx, "cart-1", "user-1", AddItemInput{ProductID: "p1", Name: "Pan", Price: money.MustNew(2500), Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.OwnerID())

	_, err = svc.AddItem(ctx, "cart-1", "user-1", AddItemInput{ProductID: "p1", Name: "Pan", Price: money.MustNew(2500), Quantity: 1})
	require.NoError(t, err)

	stored := repo.carts["cart-1"]
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 3, stored.Items[0].Quantity)
	assert.True(t, stored.Subtotal.Equals(money.MustNew(7500)))
	assert.Equal(t, 2, repo.saves)
}

func TestServiceDomainErrorsDoNotPersist(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "cart-1", "user-1", AddItemInput{ProductID: "p1", Name: "Pan", Price: money.MustNew(500), Quantity: 1})
	require.NoError(t, err)

	_, err = svc.ApplyDiscount(ctx, "cart-1", money.MustNew(1000))
	require.ErrorIs(t, err, ErrInvalidDiscount)

	_, err = svc.UpdateItemQuantity(ctx, "cart-1", "missing", 2)
	require.ErrorIs(t, err, ErrCartItemNotFound)

	assert.Equal(t, 1, repo.saves)
}

func TestServiceMissingCart(t *testing.T) {
	svc := NewService(newFakeRepository())
	ctx := context.Background()

	_, err := svc.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrCartNotFound)

	_, err = svc.RemoveItem(ctx, "nope", "p1")
	require.ErrorIs(t, err, ErrCartNotFound)

	require.ErrorIs(t, svc.Delete(ctx, "nope"), ErrCartNotFound)
}

func TestServiceRepositoryErrorsAreWrapped(t *testing.T) {
	repo := newFakeRepository()
	repo.findErr = errors.New("db down")
	svc := NewService(repo)

	_, err := svc.Get(context.Background(), "cart-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load cart")
}

func TestServiceTaxDiscountAndClear(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "cart-1", "user-1", AddItemInput{ProductID: "p1", Name: "Torta", Price: money.MustNew(10700), Quantity: 1})
	require.NoError(t, err)
	_, err = svc.ApplyDiscount(ctx, "cart-1", money.MustNew(1000))
	require.NoError(t, err)
	c, err := svc.ApplyTax(ctx, "cart-1", money.MustNew(776))
	require.NoError(t, err)
	assert.True(t, c.CalculateTotal().Equals(money.MustNew(10476)))

	c, err = svc.RemoveDiscount(ctx, "cart-1")
	require.NoError(t, err)
	c, err = svc.RemoveTax(ctx, "cart-1")
	require.NoError(t, err)
	assert.True(t, c.CalculateTotal().Equals(money.MustNew(10700)))

	c, err = svc.Clear(ctx, "cart-1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Empty(t, repo.carts["cart-1"].Items)

	require.NoError(t, svc.Delete(ctx, "cart-1"))
	assert.Equal(t, 1, repo.deletes)
}
