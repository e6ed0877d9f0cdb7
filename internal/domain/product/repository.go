package product

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	SearchByName(ctx context.Context, name string) ([]*Product, error)
	ListInStock(ctx context.Context) ([]*Product, error)
	Save(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
