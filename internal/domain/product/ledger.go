package product

import (
	"context"
	"fmt"
)

// Ledger is the single choke point for stock mutation. Every reservation
// (negative delta) and restoration (positive delta) goes through Adjust;
// callers must never write StockQuantity directly.
type Ledger struct {
	products Repository
}

func NewLedger(products Repository) *Ledger {
	return &Ledger{products: products}
}

// Adjust applies delta to the product's stock and persists the result.
// A delta that would take the stock below zero is rejected and nothing
// is written.
func (l *Ledger) Adjust(ctx context.Context, productID string, delta int) (*Product, error) {
	p, err := l.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	newStock := p.StockQuantity + delta
	if newStock < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
	}

	p.StockQuantity = newStock
	if err := l.products.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
