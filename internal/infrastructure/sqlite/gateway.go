// Package sqlite provides the durable storage gateway on top of
// modernc.org/sqlite (pure Go, no CGO).
//
// WAL mode is enabled on Open so readers never block the writer.
// Foreign keys are enforced, which is what backs the "no delete while
// orders reference it" rule for customers and products.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopfolk/sales-api/internal/domain/customer"
	"github.com/shopfolk/sales-api/internal/domain/order"
	"github.com/shopfolk/sales-api/internal/domain/product"
	"github.com/shopfolk/sales-api/internal/domain/storage"

	// Register the pure-Go SQLite driver.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. Idempotent.
// Money columns are TEXT holding exact decimal strings; never REAL.
const schema = `
CREATE TABLE IF NOT EXISTS customers (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL UNIQUE,
    phone      TEXT NOT NULL DEFAULT '',
    address    TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    price          TEXT NOT NULL,
    stock_quantity INTEGER NOT NULL CHECK (stock_quantity >= 0),
    created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id           TEXT PRIMARY KEY,
    customer_id  TEXT NOT NULL REFERENCES customers(id),
    order_date   TEXT NOT NULL,
    status       TEXT NOT NULL,
    total_amount TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS order_items (
    id         TEXT PRIMARY KEY,
    order_id   TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    product_id TEXT NOT NULL REFERENCES products(id),
    quantity   INTEGER NOT NULL CHECK (quantity > 0),
    unit_price TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
`

// querier is satisfied by both *sql.DB and *sql.Tx, letting the same
// repository code run inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Gateway struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Gateway, error) {
	// The pure-Go driver takes pragmas as DSN parameters. busy_timeout
	// waits for locks instead of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Gateway{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (g *Gateway) Close() error {
	return g.db.Close()
}

func (g *Gateway) Customers() customer.Repository { return &customerRepo{q: g.db} }
func (g *Gateway) Products() product.Repository   { return &productRepo{q: g.db} }
func (g *Gateway) Orders() order.Repository       { return &orderRepo{q: g.db} }

// WithinTx wraps fn in a database transaction. Any error out of fn
// rolls the transaction back; a nil return commits it.
func (g *Gateway) WithinTx(ctx context.Context, fn func(tx storage.Gateway) error) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}

	if err := fn(&txGateway{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// txGateway binds the repositories to an open transaction.
type txGateway struct {
	q *sql.Tx
}

func (t *txGateway) Customers() customer.Repository { return &customerRepo{q: t.q} }
func (t *txGateway) Products() product.Repository   { return &productRepo{q: t.q} }
func (t *txGateway) Orders() order.Repository       { return &orderRepo{q: t.q} }

// WithinTx on a transaction view joins the enclosing transaction.
func (t *txGateway) WithinTx(ctx context.Context, fn func(tx storage.Gateway) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t)
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}
