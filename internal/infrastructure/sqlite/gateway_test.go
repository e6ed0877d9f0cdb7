package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopfolk/sales-api/internal/domain/customer"
	"github.com/shopfolk/sales-api/internal/domain/order"
	"github.com/shopfolk/sales-api/internal/domain/product"
	"github.com/shopfolk/sales-api/internal/domain/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestGateway(t *testing.T) *Gateway {
	t.Helper()
	g, err := Open(filepath.Join(t.TempDir(), "sales.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func seedCustomer(t *testing.T, g *Gateway, id, email string) {
	t.Helper()
	c, err := customer.New(id, "Customer "+id, email, "555-0100", "1 Main St")
	require.NoError(t, err)
	require.NoError(t, g.Customers().Save(context.Background(), c))
}

func seedProduct(t *testing.T, g *Gateway, id string, price string, stock int) {
	t.Helper()
	p, err := product.New(id, "Product "+id, "", decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	require.NoError(t, g.Products().Save(context.Background(), p))
}

func seedOrder(t *testing.T, g *Gateway, id, customerID, productID string, status order.Status) {
	t.Helper()
	o, err := order.New(id, customerID, []order.Item{{
		ID:        id + "-i1",
		ProductID: productID,
		Quantity:  2,
		UnitPrice: decimal.RequireFromString("9.99"),
	}})
	require.NoError(t, err)
	o.Status = status
	require.NoError(t, g.Orders().Save(context.Background(), o))
}

func TestCustomerRoundTrip(t *testing.T) {
	ctx := context.Background()
	g := openTestGateway(t)

	seedCustomer(t, g, "c1", "ada@example.com")

	got, err := g.Customers().Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Customer c1", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = g.Customers().Get(ctx, "missing")
	assert.ErrorIs(t, err, customer.ErrNotFound)
}

func TestFindByEmailMatchesCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	g := openTestGateway(t)

	seedCustomer(t, g, "c1", "Ada@Example.com")

	got, err := g.Customers().FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)

	_, err = g.Customers().FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, customer.ErrNotFound)
}

func TestProductPriceSurvivesExactly(t *testing.T) {
	ctx := context.Background()
	g := openTestGateway(t)

	seedProduct(t, g, "p1", "19.99", 5)

	got, err := g.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "19.99", got.Price.String())
	assert.Equal(t, 5, got.StockQuantity)
}

func TestProductFilters(t *testing.T) {
	ctx := context.Background()
	g := openTestGateway(t)

	seedProduct(t, g, "p1", "1.00", 3)
	seedProduct(t, g, "p2", "2.00", 0)

	found, err := g.Products().SearchByName(ctx, "product p1")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p1", found[0].ID)

	inStock, err := g.Products().ListInStock(ctx)
	require.NoError(t, err)
	require.Len(t, inStock, 1)
	assert.Equal(t, "p1", inStock[0].ID)
}

func TestOrderRoundTripWithItems(t *testing.T) {
	ctx := context.Background()
	g := openTestGateway(t)

	seedCustomer(t, g, "c1", "ada@example.com")
	seedProduct(t, g, "p1", "9.99", 10)
	seedOrder(t, g, "o1", "c1", "p1", order.StatusPending)

	got, err := g.Orders().Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.CustomerID)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.Equal(t, "19.98", got.TotalAmount.String())
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p1", got.Items[0].ProductID)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, "9.99", got.Items[0].UnitPrice.String())
}

func TestListByCustomerAndStatus(t *testing.T) {
	ctx := context.Background()
	g := openTestGateway(t)

	seedCustomer(t, g, "c1", "ada@example.com")
	seedCustomer(t, g, "c2", "bob@example.com")
	seedProduct(t, g, "p1", "9.99", 10)
	seedOrder(t, g, "o1", "c1", "p1", order.StatusPending)
	seedOrder(t, g, "o2", "c1", "p1", order.StatusShipped)
	seedOrder(t, g, "o3", "c2", "p1", order.StatusPending)

	byCustomer, err := g.Orders().ListByCustomer(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, byCustomer, 2)

	shipped, err := g.Orders().ListByStatus(ctx, order.StatusShipped)
	require.NoError(t, err)
	require.Len(t, shipped, 1)
	assert.Equal(t, "o2", shipped[0].ID)
}

func TestSaveOrderUpdatesStatusInPlace(t *testing.T) {
	ctx := context.Background()
	g := openTestGateway(t)

	seedCustomer(t, g, "c1", "ada@example.com")
	seedProduct(t, g, "p1", "9.99", 10)
	seedOrder(t, g, "o1", "c1", "p1", order.StatusPending)

	o, err := g.Orders().Get(ctx, "o1")
	require.NoError(t, err)
	o.Status = order.StatusConfirmed
	require.NoError(t, g.Orders().Save(ctx, o))

	got, err := g.Orders().Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, got.Status)
	assert.Len(t, got.Items, 1, "items rewritten, not duplicated")
}

func TestDeleteGuardsReferences(t *testing.T) {
	ctx := context.Background()
	g := openTestGateway(t)

	seedCustomer(t, g, "c1", "ada@example.com")
	seedProduct(t, g, "p1", "9.99", 10)
	seedOrder(t, g, "o1", "c1", "p1", order.StatusPending)

	assert.ErrorIs(t, g.Customers().Delete(ctx, "c1"), customer.ErrReferenced)
	assert.ErrorIs(t, g.Products().Delete(ctx, "p1"), product.ErrReferenced)

	require.NoError(t, g.Orders().Delete(ctx, "o1"))

	// Items are gone with the order, so both deletes now go through.
	assert.NoError(t, g.Customers().Delete(ctx, "c1"))
	assert.NoError(t, g.Products().Delete(ctx, "p1"))
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	g := openTestGateway(t)

	seedProduct(t, g, "p1", "9.99", 10)

	boom := errors.New("boom")
	err := g.WithinTx(ctx, func(tx storage.Gateway) error {
		p, err := tx.Products().Get(ctx, "p1")
		require.NoError(t, err)
		p.StockQuantity = 1
		require.NoError(t, tx.Products().Save(ctx, p))
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := g.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, p.StockQuantity)
}

func TestWithinTxCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	g := openTestGateway(t)

	seedProduct(t, g, "p1", "9.99", 10)

	err := g.WithinTx(ctx, func(tx storage.Gateway) error {
		p, err := tx.Products().Get(ctx, "p1")
		if err != nil {
			return err
		}
		p.StockQuantity = 4
		return tx.Products().Save(ctx, p)
	})
	require.NoError(t, err)

	p, err := g.Products().Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 4, p.StockQuantity)
}
