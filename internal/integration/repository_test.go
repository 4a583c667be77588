//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/dedup"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/sequence"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/testutil"
)

func TestOrderRepositoryRoundTrip(t *testing.T) {
	pg := testutil.StartPostgres(t)
	repo := order.NewRepository(pg.DB)
	ctx := context.Background()

	o, err := order.New("order-int-1", order.Customer{ID: "cust-1", Name: "Ana"}, []order.Item{
		{ProductID: "p1", Name: "Torta", Category: "tortas", UnitPrice: money.MustNew(2500), Quantity: 2},
		{ProductID: "p2", Name: "Empanada", UnitPrice: money.MustNew(1600), Quantity: 1},
	}, order.Delivery{Type: order.DeliveryDelivery, Address: "Calle 1", ShippingCost: money.MustNew(2000)}, "sin azucar")
	require.NoError(t, err)
	require.NoError(t, o.SetPaymentMethod(order.MethodGateway, "CLP"))
	require.NoError(t, o.ConfigurePayment("pref-1"))
	require.NoError(t, repo.Save(ctx, o))

	got, err := repo.FindByID(ctx, "order-int-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, order.StatusPendingPayment, got.Status())
	assert.Len(t, got.Items(), 2)
	assert.True(t, got.CalculateTotal().Equals(money.MustNew(8600)))
	assert.Equal(t, "sin azucar", got.Notes())

	byPref, err := repo.FindByPaymentReference(ctx, "pref-1")
	require.NoError(t, err)
	require.NotNil(t, byPref)
	assert.Equal(t, "order-int-1", byPref.ID())

	require.NoError(t, got.ConfirmPayment("pay-1", "credit_card", 1, money.MustNew(8600)))
	require.NoError(t, repo.Save(ctx, got))

	byPayment, err := repo.FindByPaymentReference(ctx, "pay-1")
	require.NoError(t, err)
	require.NotNil(t, byPayment)
	assert.Equal(t, order.StatusPaid, byPayment.Status())
	assert.Len(t, byPayment.History(), 2)

	stale, err := repo.FindByID(ctx, "order-int-1")
	require.NoError(t, err)
	require.NoError(t, stale.StartPreparation())
	fresh, err := repo.FindByID(ctx, "order-int-1")
	require.NoError(t, err)
	require.NoError(t, fresh.Cancel("out of flour"))
	require.NoError(t, repo.Save(ctx, fresh))
	require.ErrorIs(t, repo.Save(ctx, stale), order.ErrConcurrentUpdate)

	list, err := repo.ListByCustomer(ctx, "cust-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	missing, err := repo.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCartRepositoryRoundTrip(t *testing.T) {
	pg := testutil.StartPostgres(t)
	pool, err := db.OpenPool(context.Background(), pg.DSN)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := cart.NewPostgresRepository(pool)
	ctx := context.Background()

	c := cart.New("cart-int-1", "cust-1")
	require.NoError(t, c.AddItem("p1", "Torta", money.MustNew(2500), 2, ""))
	require.NoError(t, c.AddItem("p2", "Pan", money.MustNew(1250), 2, ""))
	require.NoError(t, c.ApplyDiscount(money.MustNew(500)))
	c.ApplyTax(money.MustNew(100))
	require.NoError(t, repo.Save(ctx, c))

	got, err := repo.FindByID(ctx, "cart-int-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"p1", "p2"}, []string{got.Items()[0].ProductID(), got.Items()[1].ProductID()})
	assert.True(t, got.Subtotal().Equals(money.MustNew(7500)))
	assert.True(t, got.CalculateTotal().Equals(money.MustNew(7100)))

	require.NoError(t, got.RemoveItem("p1"))
	got.RemoveDiscount()
	require.NoError(t, repo.Save(ctx, got))

	again, err := repo.FindByID(ctx, "cart-int-1")
	require.NoError(t, err)
	assert.Len(t, again.Items(), 1)
	_, hasDiscount := again.Discount()
	assert.False(t, hasDiscount)

	require.NoError(t, repo.Delete(ctx, "cart-int-1"))
	exists, err := repo.Exists(ctx, "cart-int-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSequenceAndDedup(t *testing.T) {
	pg := testutil.StartPostgres(t)
	ctx := context.Background()

	seq := sequence.NewRepository(pg.DB)
	for want := int64(1); want <= 3; want++ {
		got, err := seq.NextSequence(ctx, "order-a")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	first, err := seq.NextSequence(ctx, "order-b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	notifications := dedup.NewRepository(pg.DB)
	processed, err := notifications.IsProcessed(ctx, "payment-gateway", "n-1")
	require.NoError(t, err)
	assert.False(t, processed)

	inserted, err := notifications.MarkProcessed(ctx, "payment-gateway", "n-1")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = notifications.MarkProcessed(ctx, "payment-gateway", "n-1")
	require.NoError(t, err)
	assert.False(t, inserted)

	processed, err = notifications.IsProcessed(ctx, "payment-gateway", "n-1")
	require.NoError(t, err)
	assert.True(t, processed)
}
