package repository

import (
	"context"
	"database/sql"
	"errors"

	"catalogadmin/internal/admin"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

const adminColumns = `id, name, email, password_hash, picture, bio, created_at`

var _ admin.Repository = (*PostgresAdminRepository)(nil)

type PostgresAdminRepository struct {
	db *sqlx.DB
}

func NewPostgresAdminRepository(db *sqlx.DB) *PostgresAdminRepository {
	return &PostgresAdminRepository{db: db}
}

func (r *PostgresAdminRepository) Create(ctx context.Context, a *admin.Admin) error {
	query := `INSERT INTO admins (name, email, password_hash, picture, bio)
              VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query, a.Name, a.Email, a.PasswordHash, a.Picture, a.Bio).
		Scan(&a.ID, &a.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return admin.ErrEmailTaken
	}
	return err
}

func (r *PostgresAdminRepository) GetByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	a := &admin.Admin{}
	err := r.db.GetContext(ctx, a, `SELECT `+adminColumns+` FROM admins WHERE email = $1`, email)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *PostgresAdminRepository) GetByID(ctx context.Context, id int64) (*admin.Admin, error) {
	a := &admin.Admin{}
	err := r.db.GetContext(ctx, a, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// UpdateProfile applies only the non-nil fields; NULL parameters fall through COALESCE.
func (r *PostgresAdminRepository) UpdateProfile(ctx context.Context, id int64, c admin.ProfileChanges) (*admin.Admin, error) {
	query := `UPDATE admins SET
              name = COALESCE($2, name),
              bio = COALESCE($3, bio),
              picture = COALESCE($4, picture)
              WHERE id = $1
              RETURNING ` + adminColumns

	a := &admin.Admin{}
	if err := r.db.GetContext(ctx, a, query, id, c.Name, c.Bio, c.Picture); err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return admin.ErrNotFound
	}
	return err
}
