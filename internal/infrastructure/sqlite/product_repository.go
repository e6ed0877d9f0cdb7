package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopfolk/sales-api/internal/domain/product"
	"github.com/shopspring/decimal"
)

type productRepo struct {
	q querier
}

const productColumns = `id, name, description, price, stock_quantity, created_at`

func (r *productRepo) Get(ctx context.Context, id string) (*product.Product, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", product.ErrNotFound, id)
	}
	return p, err
}

func (r *productRepo) List(ctx context.Context) ([]*product.Product, error) {
	return r.query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at`)
}

func (r *productRepo) SearchByName(ctx context.Context, name string) ([]*product.Product, error) {
	// LIKE is case-insensitive for ASCII in SQLite.
	return r.query(ctx,
		`SELECT `+productColumns+` FROM products WHERE name LIKE ? ORDER BY created_at`,
		"%"+name+"%")
}

func (r *productRepo) ListInStock(ctx context.Context) ([]*product.Product, error) {
	return r.query(ctx,
		`SELECT `+productColumns+` FROM products WHERE stock_quantity > 0 ORDER BY created_at`)
}

func (r *productRepo) Save(ctx context.Context, p *product.Product) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, stock_quantity, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price = excluded.price,
			stock_quantity = excluded.stock_quantity`,
		p.ID, p.Name, p.Description, p.Price.String(), p.StockQuantity, formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: save product %q: %w", p.ID, err)
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	var n int
	if err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_items WHERE product_id = ?`, id).Scan(&n); err != nil {
		return fmt.Errorf("sqlite: count product references: %w", err)
	}
	if n > 0 {
		return product.ErrReferenced
	}

	res, err := r.q.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete product %q: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", product.ErrNotFound, id)
	}
	return nil
}

func (r *productRepo) query(ctx context.Context, q string, args ...any) ([]*product.Product, error) {
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query products: %w", err)
	}
	defer rows.Close()

	var out []*product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row rowScanner) (*product.Product, error) {
	var p product.Product
	var price, createdAt string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.StockQuantity, &createdAt); err != nil {
		return nil, err
	}
	var err error
	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("sqlite: parse price %q: %w", price, err)
	}
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
