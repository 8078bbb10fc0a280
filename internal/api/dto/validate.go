package dto

import (
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("adminpassword", validateAdminPassword); err != nil {
		panic(err)
	}
	return v
}

// validateAdminPassword: at least six characters with one ASCII upper and one ASCII lower case letter.
func validateAdminPassword(fl validator.FieldLevel) bool {
	return PasswordMeetsPolicy(fl.Field().String())
}

func PasswordMeetsPolicy(p string) bool {
	if utf8.RuneCountInString(p) < MinPasswordLength {
		return false
	}

	var upper, lower bool
	for i := 0; i < len(p); i++ {
		switch c := p[i]; {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		}
	}
	return upper && lower
}
