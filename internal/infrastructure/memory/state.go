package memory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopfolk/sales-api/internal/domain/customer"
	"github.com/shopfolk/sales-api/internal/domain/order"
	"github.com/shopfolk/sales-api/internal/domain/product"
)

// state holds every table of the in-memory gateway. All accessors work
// on cloned entities so callers can never mutate stored records through
// a returned pointer.
type state struct {
	customers map[string]*customer.Customer
	products  map[string]*product.Product
	orders    map[string]*order.Order
}

func newState() *state {
	return &state{
		customers: make(map[string]*customer.Customer),
		products:  make(map[string]*product.Product),
		orders:    make(map[string]*order.Order),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, v := range s.customers {
		c.customers[id] = v.Clone()
	}
	for id, v := range s.products {
		c.products[id] = v.Clone()
	}
	for id, v := range s.orders {
		c.orders[id] = v.Clone()
	}
	return c
}

func (s *state) getCustomer(id string) (*customer.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", customer.ErrNotFound, id)
	}
	return c.Clone(), nil
}

func (s *state) findCustomerByEmail(email string) (*customer.Customer, error) {
	for _, c := range s.customers {
		if strings.EqualFold(c.Email, email) {
			return c.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: email %s", customer.ErrNotFound, email)
}

func (s *state) listCustomers() []*customer.Customer {
	out := make([]*customer.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *state) saveCustomer(c *customer.Customer) {
	s.customers[c.ID] = c.Clone()
}

func (s *state) deleteCustomer(id string) error {
	if _, ok := s.customers[id]; !ok {
		return fmt.Errorf("%w: %s", customer.ErrNotFound, id)
	}
	for _, o := range s.orders {
		if o.CustomerID == id {
			return customer.ErrReferenced
		}
	}
	delete(s.customers, id)
	return nil
}

func (s *state) getProduct(id string) (*product.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", product.ErrNotFound, id)
	}
	return p.Clone(), nil
}

func (s *state) listProducts(match func(*product.Product) bool) []*product.Product {
	out := make([]*product.Product, 0, len(s.products))
	for _, p := range s.products {
		if match == nil || match(p) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *state) saveProduct(p *product.Product) {
	s.products[p.ID] = p.Clone()
}

func (s *state) deleteProduct(id string) error {
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("%w: %s", product.ErrNotFound, id)
	}
	for _, o := range s.orders {
		for _, item := range o.Items {
			if item.ProductID == id {
				return product.ErrReferenced
			}
		}
	}
	delete(s.products, id)
	return nil
}

func (s *state) getOrder(id string) (*order.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", order.ErrNotFound, id)
	}
	return o.Clone(), nil
}

func (s *state) listOrders(match func(*order.Order) bool) []*order.Order {
	out := make([]*order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if match == nil || match(o) {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.Before(out[j].OrderDate) })
	return out
}

func (s *state) saveOrder(o *order.Order) {
	s.orders[o.ID] = o.Clone()
}

func (s *state) deleteOrder(id string) error {
	if _, ok := s.orders[id]; !ok {
		return fmt.Errorf("%w: %s", order.ErrNotFound, id)
	}
	delete(s.orders, id)
	return nil
}
