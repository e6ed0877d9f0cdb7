// Package memory provides the in-memory storage gateway used by tests
// and as the zero-configuration default. Semantics mirror the sqlite
// gateway: WithinTx rolls every write back when the callback fails.
package memory

import (
	"context"
	"sync"

	"github.com/shopfolk/sales-api/internal/domain/customer"
	"github.com/shopfolk/sales-api/internal/domain/order"
	"github.com/shopfolk/sales-api/internal/domain/product"
	"github.com/shopfolk/sales-api/internal/domain/storage"
)

// session abstracts over the locked gateway and the transaction view so
// the repository types can be shared between both.
type session interface {
	state() *state
	rlock() func()
	lock() func()
}

type Gateway struct {
	mu sync.RWMutex
	st *state
}

func NewGateway() *Gateway {
	return &Gateway{st: newState()}
}

func (g *Gateway) state() *state { return g.st }

func (g *Gateway) rlock() func() {
	g.mu.RLock()
	return g.mu.RUnlock
}

func (g *Gateway) lock() func() {
	g.mu.Lock()
	return g.mu.Unlock
}

func (g *Gateway) Customers() customer.Repository { return &customerRepo{s: g} }
func (g *Gateway) Products() product.Repository   { return &productRepo{s: g} }
func (g *Gateway) Orders() order.Repository       { return &orderRepo{s: g} }

// WithinTx serializes the whole transaction under the write lock. A
// snapshot of the state is taken up front; if fn fails, the snapshot is
// swapped back in, discarding every write fn made.
func (g *Gateway) WithinTx(ctx context.Context, fn func(tx storage.Gateway) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	snapshot := g.st.clone()
	if err := fn(&txGateway{st: g.st}); err != nil {
		g.st = snapshot
		return err
	}
	return nil
}

// txGateway is the transaction view handed to WithinTx callbacks. The
// enclosing WithinTx already holds the write lock, so its sessions do
// not lock again.
type txGateway struct {
	st *state
}

func (t *txGateway) state() *state { return t.st }
func (t *txGateway) rlock() func() { return func() {} }
func (t *txGateway) lock() func()  { return func() {} }

func (t *txGateway) Customers() customer.Repository { return &customerRepo{s: t} }
func (t *txGateway) Products() product.Repository   { return &productRepo{s: t} }
func (t *txGateway) Orders() order.Repository       { return &orderRepo{s: t} }

// WithinTx on a transaction view joins the enclosing transaction.
func (t *txGateway) WithinTx(ctx context.Context, fn func(tx storage.Gateway) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t)
}
