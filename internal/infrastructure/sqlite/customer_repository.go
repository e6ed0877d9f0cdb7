package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopfolk/sales-api/internal/domain/customer"
)

type customerRepo struct {
	q querier
}

const customerColumns = `id, name, email, phone, address, created_at`

func (r *customerRepo) Get(ctx context.Context, id string) (*customer.Customer, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", customer.ErrNotFound, id)
	}
	return c, err
}

func (r *customerRepo) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE email = ? COLLATE NOCASE`, email)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: email %s", customer.ErrNotFound, email)
	}
	return c, err
}

func (r *customerRepo) List(ctx context.Context) ([]*customer.Customer, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list customers: %w", err)
	}
	defer rows.Close()

	var out []*customer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *customerRepo) Save(ctx context.Context, c *customer.Customer) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO customers (id, name, email, phone, address, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			phone = excluded.phone,
			address = excluded.address`,
		c.ID, c.Name, c.Email, c.Phone, c.Address, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("sqlite: save customer %q: %w", c.ID, err)
	}
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, id string) error {
	// Pre-check dependents so the caller gets a stable domain error
	// instead of a driver-specific FK violation.
	var n int
	if err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE customer_id = ?`, id).Scan(&n); err != nil {
		return fmt.Errorf("sqlite: count customer orders: %w", err)
	}
	if n > 0 {
		return customer.ErrReferenced
	}

	res, err := r.q.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete customer %q: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", customer.ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*customer.Customer, error) {
	var c customer.Customer
	var createdAt string
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &createdAt); err != nil {
		return nil, err
	}
	var err error
	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
