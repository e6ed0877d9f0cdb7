package customer

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	List(ctx context.Context) ([]*Customer, error)
	Save(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id string) error
}
