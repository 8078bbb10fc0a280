package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"catalogadmin/internal/api/dto"
	"catalogadmin/internal/metrics"
	"catalogadmin/internal/product"

	"github.com/shopspring/decimal"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5
	MaxLimit     = 100
)

var (
	ErrMissingFields   = errors.New("all fields are required")
	ErrInvalidPrice    = errors.New("price must be a non-negative number")
	ErrProductNotFound = errors.New("product not found")
)

// maxPrice is the largest value NUMERIC(12,2) holds.
var maxPrice = decimal.RequireFromString("9999999999.99")

type Page struct {
	Products    []product.Product
	CurrentPage int
	TotalPages  int
	Limit       int
	Total       int
}

type ProductService struct {
	repo product.Repository
}

func NewProductService(repo product.Repository) *ProductService {
	return &ProductService{repo: repo}
}

// ParsePagination reads page and limit query values by their leading
// integer, so "2abc" and "2.5" both read as 2. Values below 1 or without
// leading digits fall back to the defaults; limit is capped at MaxLimit.
func ParsePagination(pageStr, limitStr string) (page, limit int) {
	return positiveOr(pageStr, DefaultPage), min(positiveOr(limitStr, DefaultLimit), MaxLimit)
}

func positiveOr(s string, def int) int {
	s = strings.TrimSpace(s)
	digits := strings.TrimPrefix(s, "+")
	if n := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }); n >= 0 {
		digits = digits[:n]
	}
	if digits == "" {
		return def
	}
	n, err := strconv.Atoi(digits)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt
	}
	if err != nil || n < 1 {
		return def
	}
	return n
}

// List returns one page plus the totals needed for navigation. Pages past
// the end come back empty rather than as an error.
func (s *ProductService) List(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	products := []product.Product{}
	// An offset past math.MaxInt is past the end of any catalog.
	if page-1 <= math.MaxInt/limit {
		products, err = s.repo.List(ctx, (page-1)*limit, limit)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
	}

	return &Page{
		Products:    products,
		CurrentPage: page,
		TotalPages:  (total + limit - 1) / limit,
		Limit:       limit,
		Total:       total,
	}, nil
}

// Validate checks the form and converts it into store changes. Handlers call
// it before storing an upload so rejected forms leave no files behind.
func (s *ProductService) Validate(req dto.ProductRequest) (product.Changes, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Price = strings.TrimSpace(req.Price)
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)

	if err := dto.Validate.Struct(req); err != nil {
		return product.Changes{}, ErrMissingFields
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() || price.GreaterThan(maxPrice) {
		return product.Changes{}, ErrInvalidPrice
	}

	c := product.Changes{
		Name:        req.Name,
		Price:       price.Round(2),
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Image != "" {
		image := req.Image
		c.Image = &image
	}
	return c, nil
}

func (s *ProductService) Create(ctx context.Context, req dto.ProductRequest) (*product.Product, error) {
	c, err := s.Validate(req)
	if err != nil {
		return nil, err
	}

	p := &product.Product{
		Name:        c.Name,
		Price:       c.Price,
		Description: c.Description,
		Category:    c.Category,
	}
	if c.Image != nil {
		p.Image = *c.Image
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	metrics.ProductOperationsTotal.WithLabelValues("create").Inc()
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*product.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, product.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// Update replaces name, price, description and category. The image changes
// only when req carries a new reference.
func (s *ProductService) Update(ctx context.Context, id int64, req dto.ProductRequest) (*product.Product, error) {
	c, err := s.Validate(req)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, id, c)
	if errors.Is(err, product.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	metrics.ProductOperationsTotal.WithLabelValues("update").Inc()
	return p, nil
}

// Delete succeeds whether or not the product exists.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	metrics.ProductOperationsTotal.WithLabelValues("delete").Inc()
	return nil
}
