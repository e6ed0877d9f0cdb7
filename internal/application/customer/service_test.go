package customer

import (
	"context"
	"fmt"
	"testing"

	domain "github.com/shopfolk/sales-api/internal/domain/customer"
	domorder "github.com/shopfolk/sales-api/internal/domain/order"
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

func newService() (*Service, *memory.Gateway) {
	store := memory.NewGateway()
	return NewService(store, &seqIDGenerator{}, nil), store
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Create(ctx, Input{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, Input{Name: "Imposter", Email: "ada@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)

	// Case differences do not dodge the rule.
	_, err = svc.Create(ctx, Input{Name: "Imposter", Email: "ADA@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUpdateAllowsKeepingOwnEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	created, err := svc.Create(ctx, Input{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, Input{Name: "Ada L.", Email: "ada@example.com", Phone: "555"})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)
	assert.Equal(t, "555", updated.Phone)
}

func TestUpdateRejectsEmailOwnedByAnother(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	_, err := svc.Create(ctx, Input{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, Input{Name: "Grace", Email: "grace@example.com"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, other.ID, Input{Name: "Grace", Email: "ada@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUpdateUnknownCustomer(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Update(context.Background(), "nope", Input{Name: "X", Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteBlockedWhileOrdersReferenceCustomer(t *testing.T) {
	ctx := context.Background()
	svc, store := newService()

	created, err := svc.Create(ctx, Input{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	o, err := domorder.New("o1", created.ID, []domorder.Item{
		{ID: "i1", ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(5)},
	})
	require.NoError(t, err)
	require.NoError(t, store.Orders().Save(ctx, o))

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), domain.ErrReferenced)

	require.NoError(t, store.Orders().Delete(ctx, o.ID))
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
