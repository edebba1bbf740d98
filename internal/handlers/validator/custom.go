package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/thomhuang/shipzone/internal/shipping"
)

var countryRegex = regexp.MustCompile(`^[A-Za-z]{2}$`)

func postalCodeValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return shipping.ValidPostalCode(val)
}

// countryValidator accepts ISO 3166 alpha-2 shaped codes in any case.
func countryValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return countryRegex.MatchString(strings.TrimSpace(val))
}
