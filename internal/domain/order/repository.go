package order

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*Order, error)
	ListByStatus(ctx context.Context, status Status) ([]*Order, error)
	// Save persists the order together with all of its items as one
	// atomic write.
	Save(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id string) error
}
