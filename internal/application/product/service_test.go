package product

import (
	"context"
	"fmt"
	"testing"

	domain "github.com/shopfolk/sales-api/internal/domain/product"
	"github.com/shopfolk/sales-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqIDGenerator struct{ n int }

func (g *seqIDGenerator) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

func newService() *Service {
	return NewService(memory.NewGateway(), &seqIDGenerator{}, nil)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.Create(ctx, Input{Name: "", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, Input{Name: "Pen", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Create(ctx, Input{Name: "Pen", Price: decimal.NewFromInt(1), StockQuantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidStock)
}

func TestAdjustStockKeepsStockNonNegative(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	created, err := svc.Create(ctx, Input{Name: "Pen", Price: decimal.RequireFromString("1.50"), StockQuantity: 10})
	require.NoError(t, err)

	p, err := svc.AdjustStock(ctx, created.ID, -4)
	require.NoError(t, err)
	assert.Equal(t, 6, p.StockQuantity)

	p, err = svc.AdjustStock(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 8, p.StockQuantity)

	// A reservation past zero is rejected with no partial adjustment.
	_, err = svc.AdjustStock(ctx, created.ID, -9)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Pen")

	p, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, p.StockQuantity)
}

func TestAdjustStockUnknownProduct(t *testing.T) {
	svc := newService()
	_, err := svc.AdjustStock(context.Background(), "nope", -1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchByNameAndInStock(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.Create(ctx, Input{Name: "Blue Pen", Price: decimal.NewFromInt(1), StockQuantity: 3})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Name: "Notebook", Price: decimal.NewFromInt(4), StockQuantity: 0})
	require.NoError(t, err)

	found, err := svc.SearchByName(ctx, "pen")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Blue Pen", found[0].Name)

	inStock, err := svc.ListInStock(ctx)
	require.NoError(t, err)
	require.Len(t, inStock, 1)
	assert.Equal(t, "Blue Pen", inStock[0].Name)
}

func TestUpdateRewritesFields(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	created, err := svc.Create(ctx, Input{Name: "Pen", Price: decimal.NewFromInt(1), StockQuantity: 3})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, Input{
		Name:          "Gel Pen",
		Description:   "0.5mm",
		Price:         decimal.RequireFromString("2.20"),
		StockQuantity: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, "Gel Pen", updated.Name)
	assert.Equal(t, 7, updated.StockQuantity)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("2.20")))
}
