package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComputesTotalFromItemSubtotals(t *testing.T) {
	o, err := New("o1", "c1", []Item{
		{ID: "i1", ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("19.99")},
		{ID: "i2", ProductID: "p2", Quantity: 3, UnitPrice: decimal.RequireFromString("5.00")},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("54.98")),
		"total = 2*19.99 + 3*5.00, got %s", o.TotalAmount)
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("o1", "", []Item{{Quantity: 1}})
	assert.ErrorIs(t, err, ErrCustomerRequired)

	_, err = New("o1", "c1", nil)
	assert.ErrorIs(t, err, ErrNoItems)

	_, err = New("o1", "c1", []Item{{Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUpdateStatusCancelledIsTerminal(t *testing.T) {
	o, err := New("o1", "c1", []Item{{ID: "i1", ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}})
	require.NoError(t, err)

	require.NoError(t, o.UpdateStatus(StatusCancelled))
	assert.ErrorIs(t, o.UpdateStatus(StatusConfirmed), ErrCancelled)
	assert.Equal(t, StatusCancelled, o.Status)
}

func TestUpdateStatusDoesNotEnforceForwardProgression(t *testing.T) {
	o, err := New("o1", "c1", []Item{{ID: "i1", ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}})
	require.NoError(t, err)

	require.NoError(t, o.UpdateStatus(StatusDelivered))
	require.NoError(t, o.UpdateStatus(StatusPending))
	assert.Equal(t, StatusPending, o.Status)
}

func TestDeletableAndHoldsStock(t *testing.T) {
	o, err := New("o1", "c1", []Item{{ID: "i1", ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}})
	require.NoError(t, err)

	assert.True(t, o.Deletable())
	assert.True(t, o.HoldsStock())

	require.NoError(t, o.UpdateStatus(StatusProcessing))
	assert.False(t, o.Deletable())

	require.NoError(t, o.UpdateStatus(StatusCancelled))
	assert.True(t, o.Deletable())
	assert.False(t, o.HoldsStock())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("SHIPPED")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, s)

	_, err = ParseStatus("shipped")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseStatus("RETURNED")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCloneIsolatesItems(t *testing.T) {
	o, err := New("o1", "c1", []Item{{ID: "i1", ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}})
	require.NoError(t, err)

	clone := o.Clone()
	clone.Items[0].Quantity = 99
	assert.Equal(t, 1, o.Items[0].Quantity)
}
