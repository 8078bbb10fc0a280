package product

import "context"

// Repository is the catalog store. Delete is idempotent and List never returns nil.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, offset, limit int) ([]Product, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id int64, c Changes) (*Product, error)
	Delete(ctx context.Context, id int64) error
}
