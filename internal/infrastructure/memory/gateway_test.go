package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopfolk/sales-api/internal/domain/customer"
	"github.com/shopfolk/sales-api/internal/domain/order"
	"github.com/shopfolk/sales-api/internal/domain/product"
	"github.com/shopfolk/sales-api/internal/domain/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustProduct(t *testing.T, id string, stock int) *product.Product {
	t.Helper()
	p, err := product.New(id, "Widget "+id, "", decimal.NewFromInt(5), stock)
	require.NoError(t, err)
	return p
}

func TestWithinTxRollsBackEveryWrite(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()

	require.NoError(t, g.Products().Save(ctx, mustProduct(t, "p1", 10)))

	boom := errors.New("boom")
	err := g.WithinTx(ctx, func(tx storage.Gateway) error {
		p, err := tx.Products().Get(ctx, "p1")
		require.NoError(t, err)
		p.StockQuantity = 2
		require.NoError(t, tx.Products().Save(ctx, p))
		require.NoError(t, tx.Products().Save(ctx, mustProduct(t, "p2", 1)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := g.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, p.StockQuantity, "update rolled back")

	_, err = g.Products().Get(ctx, "p2")
	assert.ErrorIs(t, err, product.ErrNotFound, "insert rolled back")
}

func TestWithinTxCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()

	err := g.WithinTx(ctx, func(tx storage.Gateway) error {
		return tx.Products().Save(ctx, mustProduct(t, "p1", 3))
	})
	require.NoError(t, err)

	p, err := g.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.StockQuantity)
}

func TestNestedWithinTxJoinsAndRollsBackTogether(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()

	boom := errors.New("boom")
	err := g.WithinTx(ctx, func(tx storage.Gateway) error {
		if err := tx.Products().Save(ctx, mustProduct(t, "outer", 1)); err != nil {
			return err
		}
		if err := tx.WithinTx(ctx, func(inner storage.Gateway) error {
			return inner.Products().Save(ctx, mustProduct(t, "inner", 1))
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = g.Products().Get(ctx, "outer")
	assert.ErrorIs(t, err, product.ErrNotFound)
	_, err = g.Products().Get(ctx, "inner")
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestReturnedEntitiesAreDetached(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()

	require.NoError(t, g.Products().Save(ctx, mustProduct(t, "p1", 10)))

	p, err := g.Products().Get(ctx, "p1")
	require.NoError(t, err)
	p.StockQuantity = 0

	again, err := g.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, again.StockQuantity)
}

func TestDeleteGuardsReferences(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()

	c, err := customer.New("c1", "Ada", "ada@example.com", "", "")
	require.NoError(t, err)
	require.NoError(t, g.Customers().Save(ctx, c))
	require.NoError(t, g.Products().Save(ctx, mustProduct(t, "p1", 10)))

	o, err := order.New("o1", "c1", []order.Item{{
		ID:        "i1",
		ProductID: "p1",
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(5),
	}})
	require.NoError(t, err)
	require.NoError(t, g.Orders().Save(ctx, o))

	assert.ErrorIs(t, g.Customers().Delete(ctx, "c1"), customer.ErrReferenced)
	assert.ErrorIs(t, g.Products().Delete(ctx, "p1"), product.ErrReferenced)

	require.NoError(t, g.Orders().Delete(ctx, "o1"))
	assert.NoError(t, g.Customers().Delete(ctx, "c1"))
	assert.NoError(t, g.Products().Delete(ctx, "p1"))
}

func TestFindCustomerByEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	g := NewGateway()

	c, err := customer.New("c1", "Ada", "Ada@Example.com", "", "")
	require.NoError(t, err)
	require.NoError(t, g.Customers().Save(ctx, c))

	found, err := g.Customers().FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "c1", found.ID)
}
