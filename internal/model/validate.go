package model

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Validate checks the struct tags on a Task or TaskMedia.
func Validate(v any) error {
	return validate.Struct(v)
}
