package repository

import (
	"context"
	"database/sql"
	"errors"

	"catalogadmin/internal/product"

	"github.com/jmoiron/sqlx"
)

const productColumns = `id, name, price, description, image, category, created_at`

var _ product.Repository = (*PostgresProductRepository)(nil)

type PostgresProductRepository struct {
	db *sqlx.DB
}

func NewPostgresProductRepository(db *sqlx.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

func (r *PostgresProductRepository) Create(ctx context.Context, p *product.Product) error {
	query := `INSERT INTO products (name, price, description, image, category)
              VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`

	return r.db.QueryRowxContext(ctx, query, p.Name, p.Price, p.Description, p.Image, p.Category).
		Scan(&p.ID, &p.CreatedAt)
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	p := &product.Product{}
	err := r.db.GetContext(ctx, p, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, product.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns one page in insertion order.
func (r *PostgresProductRepository) List(ctx context.Context, offset, limit int) ([]product.Product, error) {
	products := []product.Product{}
	err := r.db.SelectContext(ctx, &products,
		`SELECT `+productColumns+` FROM products ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PostgresProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`)
	return n, err
}

func (r *PostgresProductRepository) Update(ctx context.Context, id int64, c product.Changes) (*product.Product, error) {
	query := `UPDATE products SET
              name = $2,
              price = $3,
              description = $4,
              category = $5,
              image = COALESCE($6, image)
              WHERE id = $1
              RETURNING ` + productColumns

	p := &product.Product{}
	err := r.db.GetContext(ctx, p, query, id, c.Name, c.Price, c.Description, c.Category, c.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, product.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete is idempotent: removing a missing row is not an error.
func (r *PostgresProductRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}
