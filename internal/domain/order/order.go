package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errors.New("order: not found")
	ErrInvalidStatus    = errors.New("order: unknown status")
	ErrInvalidQuantity  = errors.New("order: quantity must be greater than zero")
	ErrNoItems          = errors.New("order: at least one item is required")
	ErrCustomerRequired = errors.New("order: customer id is required")
	// ErrCancelled guards the single terminal state: a cancelled order
	// accepts no further status change.
	ErrCancelled = errors.New("order: cannot update status of a cancelled order")
	// ErrNotDeletable rejects deletion once fulfilment has started.
	ErrNotDeletable = errors.New("order: cannot delete an order that is already being processed")
)

// Item is a line of an order. Quantity and UnitPrice are captured at
// creation time; UnitPrice is a price snapshot, not a live reference to
// the product's current price.
type Item struct {
	ID        string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order owns its items exclusively. Items are fixed after construction;
// the only mutation the order accepts afterwards is a status change.
type Order struct {
	ID          string
	CustomerID  string
	OrderDate   time.Time
	Status      Status
	TotalAmount decimal.Decimal
	Items       []Item
}

func New(id, customerID string, items []Item) (*Order, error) {
	if customerID == "" {
		return nil, ErrCustomerRequired
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	o := &Order{
		ID:         id,
		CustomerID: customerID,
		OrderDate:  time.Now().UTC(),
		Status:     StatusPending,
		Items:      append([]Item(nil), items...),
	}
	o.TotalAmount = o.computeTotal()
	return o, nil
}

// UpdateStatus applies the lifecycle rule: CANCELLED is terminal, every
// other transition is accepted as-is. Forward-only progression is not
// enforced.
func (o *Order) UpdateStatus(next Status) error {
	if o.Status == StatusCancelled {
		return ErrCancelled
	}
	o.Status = next
	return nil
}

// Deletable reports whether the order may still be removed. Once an
// order has moved past PENDING without being cancelled, its stock is
// committed to fulfilment.
func (o *Order) Deletable() bool {
	return o.Status == StatusPending || o.Status == StatusCancelled
}

// HoldsStock reports whether the order still holds a stock reservation
// that must be restored when it goes away.
func (o *Order) HoldsStock() bool {
	return o.Status != StatusCancelled
}

func (o *Order) computeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]Item(nil), o.Items...)
	return &clone
}
