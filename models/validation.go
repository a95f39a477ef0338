package models

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks record shape before it crosses the document store boundary.
func Validate(record interface{}) error {
	return validate.Struct(record)
}

// IsValidEmail applies the standard email shape check.
func IsValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}
