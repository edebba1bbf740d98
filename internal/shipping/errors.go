package shipping

import (
	"errors"

	"github.com/thomhuang/shipzone/internal/postal"
)

var (
	// ErrInvalidPostalCode is returned for destinations that are not a five
	// digit code with an optional four digit extension.
	ErrInvalidPostalCode = errors.New("invalid postal code")

	// ErrPostalCodeNotFound is returned for well formed codes missing from the dataset.
	ErrPostalCodeNotFound = errors.New("postal code not found")

	// ErrDatasetUnavailable is returned when the postal code dataset could not be loaded.
	ErrDatasetUnavailable = postal.ErrDatasetUnavailable

	// ErrNonDomesticDestination is returned when a quote is requested for a
	// country other than the domestic one.
	ErrNonDomesticDestination = errors.New("destination country is not supported")
)
