package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	handlePattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)
	letterPattern = regexp.MustCompile(`[a-z]`)
)

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

var (
	Validator = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return IsHandle(fl.Field().String())
	})
	// password: the byte length bcrypt accepts; max counts runes.
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})
	return v
}

// IsHandle reports whether s is a single lowercase DNS label usable as a
// storefront subdomain. All-digit labels are rejected since a numeric
// tenant identifier is read as an id.
func IsHandle(s string) bool {
	return handlePattern.MatchString(s) && letterPattern.MatchString(s)
}

func ValidateStruct(s interface{}) error {
	return Validator.Struct(s)
}
