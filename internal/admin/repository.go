package admin

import "context"

// Repository is the admin store the service depends on.
type Repository interface {
	Create(ctx context.Context, a *Admin) error
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	GetByID(ctx context.Context, id int64) (*Admin, error)
	UpdateProfile(ctx context.Context, id int64, changes ProfileChanges) (*Admin, error)
}
