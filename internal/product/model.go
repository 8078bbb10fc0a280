package product

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("product not found")

type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Description string          `json:"description" db:"description"`
	Image       string          `json:"image,omitempty" db:"image"`
	Category    string          `json:"category" db:"category"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Changes replaces every editable field. A nil Image keeps the stored reference.
type Changes struct {
	Name        string
	Price       decimal.Decimal
	Description string
	Category    string
	Image       *string
}
