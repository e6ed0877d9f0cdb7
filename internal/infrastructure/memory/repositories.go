package memory

import (
	"context"
	"strings"

	"github.com/shopfolk/sales-api/internal/domain/customer"
	"github.com/shopfolk/sales-api/internal/domain/order"
	"github.com/shopfolk/sales-api/internal/domain/product"
)

type customerRepo struct{ s session }

func (r *customerRepo) Get(ctx context.Context, id string) (*customer.Customer, error) {
	_ = ctx
	defer r.s.rlock()()
	return r.s.state().getCustomer(id)
}

func (r *customerRepo) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	_ = ctx
	defer r.s.rlock()()
	return r.s.state().findCustomerByEmail(email)
}

func (r *customerRepo) List(ctx context.Context) ([]*customer.Customer, error) {
	_ = ctx
	defer r.s.rlock()()
	return r.s.state().listCustomers(), nil
}

func (r *customerRepo) Save(ctx context.Context, c *customer.Customer) error {
	_ = ctx
	defer r.s.lock()()
	r.s.state().saveCustomer(c)
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, id string) error {
	_ = ctx
	defer r.s.lock()()
	return r.s.state().deleteCustomer(id)
}

type productRepo struct{ s session }

func (r *productRepo) Get(ctx context.Context, id string) (*product.Product, error) {
	_ = ctx
	defer r.s.rlock()()
	return r.s.state().getProduct(id)
}

func (r *productRepo) List(ctx context.Context) ([]*product.Product, error) {
	_ = ctx
	defer r.s.rlock()()
	return r.s.state().listProducts(nil), nil
}

func (r *productRepo) SearchByName(ctx context.Context, name string) ([]*product.Product, error) {
	_ = ctx
	defer r.s.rlock()()
	needle := strings.ToLower(name)
	return r.s.state().listProducts(func(p *product.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	}), nil
}

func (r *productRepo) ListInStock(ctx context.Context) ([]*product.Product, error) {
	_ = ctx
	defer r.s.rlock()()
	return r.s.state().listProducts(func(p *product.Product) bool {
		return p.StockQuantity > 0
	}), nil
}

func (r *productRepo) Save(ctx context.Context, p *product.Product) error {
	_ = ctx
	defer r.s.lock()()
	r.s.state().saveProduct(p)
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	_ = ctx
	defer r.s.lock()()
	return r.s.state().deleteProduct(id)
}

type orderRepo struct{ s session }

func (r *orderRepo) Get(ctx context.Context, id string) (*order.Order, error) {
	_ = ctx
	defer r.s.rlock()()
	return r.s.state().getOrder(id)
}

func (r *orderRepo) List(ctx context.Context) ([]*order.Order, error) {
	_ = ctx
	defer r.s.rlock()()
	return r.s.state().listOrders(nil), nil
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID string) ([]*order.Order, error) {
	_ = ctx
	defer r.s.rlock()()
	return r.s.state().listOrders(func(o *order.Order) bool {
		return o.CustomerID == customerID
	}), nil
}

func (r *orderRepo) ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	_ = ctx
	defer r.s.rlock()()
	return r.s.state().listOrders(func(o *order.Order) bool {
		return o.Status == status
	}), nil
}

func (r *orderRepo) Save(ctx context.Context, o *order.Order) error {
	_ = ctx
	defer r.s.lock()()
	r.s.state().saveOrder(o)
	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	_ = ctx
	defer r.s.lock()()
	return r.s.state().deleteOrder(id)
}
