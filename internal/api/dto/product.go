package dto

// ProductRequest is the create/update form. Price stays textual until the
// service parses it into a decimal.
type ProductRequest struct {
	Name        string `validate:"required"`
	Price       string `validate:"required"`
	Description string `validate:"required"`
	Category    string `validate:"required"`
	Image       string
}
