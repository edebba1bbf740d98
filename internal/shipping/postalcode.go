package shipping

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/thomhuang/shipzone/internal/postal"
)

var postalCodeRegex = regexp.MustCompile(`^\d{5}(-?\d{4})?$`)

// ValidPostalCode reports whether code is a domestic ZIP or ZIP+4.
func ValidPostalCode(code string) bool {
	return postalCodeRegex.MatchString(strings.TrimSpace(code))
}

// NormalizePostalCode validates code and returns the five digit lookup key.
// Any +4 extension is dropped.
func NormalizePostalCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if !postalCodeRegex.MatchString(code) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPostalCode, code)
	}
	return code[:5], nil
}

// IsDomestic reports whether country is the domestic country code.
func IsDomestic(country string) bool {
	return strings.EqualFold(strings.TrimSpace(country), postal.DefaultDomesticCountry)
}
