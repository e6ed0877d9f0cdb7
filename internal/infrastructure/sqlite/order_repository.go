package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopfolk/sales-api/internal/domain/order"
	"github.com/shopspring/decimal"
)

type orderRepo struct {
	q querier
}

func (r *orderRepo) Get(ctx context.Context, id string) (*order.Order, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, customer_id, order_date, status, total_amount FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", order.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *orderRepo) List(ctx context.Context) ([]*order.Order, error) {
	return r.query(ctx,
		`SELECT id, customer_id, order_date, status, total_amount FROM orders ORDER BY order_date`)
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID string) ([]*order.Order, error) {
	return r.query(ctx,
		`SELECT id, customer_id, order_date, status, total_amount FROM orders WHERE customer_id = ? ORDER BY order_date`,
		customerID)
}

func (r *orderRepo) ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	return r.query(ctx,
		`SELECT id, customer_id, order_date, status, total_amount FROM orders WHERE status = ? ORDER BY order_date`,
		string(status))
}

// Save writes the order row and replaces its items. It is meant to run
// inside WithinTx; the gateway's single-writer connection keeps the two
// statements from interleaving with other writers either way.
func (r *orderRepo) Save(ctx context.Context, o *order.Order) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, order_date, status, total_amount)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			total_amount = excluded.total_amount`,
		o.ID, o.CustomerID, formatTime(o.OrderDate), string(o.Status), o.TotalAmount.String())
	if err != nil {
		return fmt.Errorf("sqlite: save order %q: %w", o.ID, err)
	}

	if _, err := r.q.ExecContext(ctx,
		`DELETE FROM order_items WHERE order_id = ?`, o.ID); err != nil {
		return fmt.Errorf("sqlite: clear order items %q: %w", o.ID, err)
	}
	for _, item := range o.Items {
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)`,
			item.ID, o.ID, item.ProductID, item.Quantity, item.UnitPrice.String()); err != nil {
			return fmt.Errorf("sqlite: save order item %q: %w", item.ID, err)
		}
	}
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	// Items go with the order via ON DELETE CASCADE.
	res, err := r.q.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete order %q: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", order.ErrNotFound, id)
	}
	return nil
}

func (r *orderRepo) query(ctx context.Context, q string, args ...any) ([]*order.Order, error) {
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query orders: %w", err)
	}
	defer rows.Close()

	var out []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range out {
		if err := r.loadItems(ctx, o); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *orderRepo) loadItems(ctx context.Context, o *order.Order) error {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, product_id, quantity, unit_price FROM order_items WHERE order_id = ? ORDER BY rowid`,
		o.ID)
	if err != nil {
		return fmt.Errorf("sqlite: load items for order %q: %w", o.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item order.Item
		var unitPrice string
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &unitPrice); err != nil {
			return err
		}
		item.UnitPrice, err = decimal.NewFromString(unitPrice)
		if err != nil {
			return fmt.Errorf("sqlite: parse unit price %q: %w", unitPrice, err)
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	var orderDate, status, total string
	if err := row.Scan(&o.ID, &o.CustomerID, &orderDate, &status, &total); err != nil {
		return nil, err
	}
	var err error
	o.OrderDate, err = parseTime(orderDate)
	if err != nil {
		return nil, err
	}
	o.Status = order.Status(status)
	o.TotalAmount, err = decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("sqlite: parse total %q: %w", total, err)
	}
	return &o, nil
}
