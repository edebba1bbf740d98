package shipping

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thomhuang/shipzone/internal/geo"
	"github.com/thomhuang/shipzone/internal/postal"
	"go.uber.org/zap"
)

// DefaultOrigin is the warehouse every parcel ships from.
var DefaultOrigin = geo.Point{Lat: 40.7062, Lon: -73.6187}

// Rates are the flat and per-mile components added on top of the zone cost.
type Rates struct {
	CarrierBase        float64 `json:"carrierBase"`
	FixedOverhead      float64 `json:"fixedOverhead"`
	FlatSurcharge      float64 `json:"flatSurcharge"`
	PerMileRate        float64 `json:"perMileRate"`
	DistanceChargeRate float64 `json:"distanceChargeRate"`
}

// DefaultRates are the domestic shipping rates.
var DefaultRates = Rates{
	CarrierBase:        12.00,
	FixedOverhead:      15.00,
	FlatSurcharge:      10.00,
	PerMileRate:        0.15,
	DistanceChargeRate: 2.0 / 3.0,
}

// Quote is the cost breakdown for one destination. Every amount is rounded
// to cents; TotalCost is rounded from the unrounded components.
type Quote struct {
	PostalCode     string  `json:"postalCode"`
	TotalCost      float64 `json:"totalCost"`
	BaseCost       float64 `json:"baseCost"`
	ZoneCost       float64 `json:"zoneCost"`
	Surcharge      float64 `json:"surcharge"`
	PerMileCharge  float64 `json:"perMileCharge"`
	DistanceCharge float64 `json:"distanceCharge"`
	DistanceMiles  float64 `json:"distanceMiles"`
	ZoneLabel      string  `json:"zoneLabel"`
	RegionCode     string  `json:"regionCode"`
	CityName       string  `json:"cityName"`
}

// Estimator prices domestic shipments from a single origin.
type Estimator struct {
	cache            *postal.Cache
	origin           geo.Point
	curve            ZoneCostCurve
	rates            Rates
	trustPrecomputed bool
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithOrigin sets the origin coordinate. Invalid points are ignored.
func WithOrigin(origin geo.Point) Option {
	return func(e *Estimator) {
		if origin.Valid() {
			e.origin = origin
		}
	}
}

// WithCurve replaces the zone table.
func WithCurve(curve ZoneCostCurve) Option {
	return func(e *Estimator) {
		if len(curve) > 0 {
			e.curve = curve
		}
	}
}

// WithRates replaces the flat and per-mile rates.
func WithRates(rates Rates) Option {
	return func(e *Estimator) {
		e.rates = rates
	}
}

// WithPrecomputed controls whether distance and zone columns shipped with
// the dataset are used instead of being computed. They are never used when
// the origin differs from DefaultOrigin.
func WithPrecomputed(trust bool) Option {
	return func(e *Estimator) {
		e.trustPrecomputed = trust
	}
}

// NewEstimator returns an estimator reading postal codes from cache.
func NewEstimator(cache *postal.Cache, opts ...Option) *Estimator {
	e := &Estimator{
		cache:            cache,
		origin:           DefaultOrigin,
		curve:            DefaultCurve,
		rates:            DefaultRates,
		trustPrecomputed: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	// precomputed columns are measured from DefaultOrigin
	if e.trustPrecomputed && e.origin != DefaultOrigin {
		zap.S().Named("shipping").Infow("ignoring precomputed dataset distances for a custom origin",
			"origin_lat", e.origin.Lat, "origin_lon", e.origin.Lon)
		e.trustPrecomputed = false
	}
	return e
}

// TrustsPrecomputed reports whether dataset distance and zone columns are used.
func (e *Estimator) TrustsPrecomputed() bool {
	return e.trustPrecomputed
}

func (e *Estimator) Origin() geo.Point {
	return e.origin
}

func (e *Estimator) Curve() ZoneCostCurve {
	return e.curve
}

func (e *Estimator) Rates() Rates {
	return e.rates
}

// Cache returns the postal code cache backing the estimator.
func (e *Estimator) Cache() *postal.Cache {
	return e.cache
}

// IsDomestic reports whether country is the country the estimator's
// dataset covers.
func (e *Estimator) IsDomestic(country string) bool {
	return strings.EqualFold(strings.TrimSpace(country), e.cache.DomesticCountry())
}

// OriginRecord returns the postal record closest to the origin.
func (e *Estimator) OriginRecord(ctx context.Context) (*postal.Record, error) {
	idx, err := e.cache.Index(ctx)
	if err != nil {
		return nil, err
	}
	r, ok := idx.Nearest(e.origin)
	if !ok {
		return nil, fmt.Errorf("%w: dataset is empty", ErrPostalCodeNotFound)
	}
	return r, nil
}

// Estimate prices a shipment to destination. The code is validated before
// the dataset is touched.
func (e *Estimator) Estimate(ctx context.Context, destination string) (Quote, error) {
	code, err := NormalizePostalCode(destination)
	if err != nil {
		return Quote{}, err
	}

	idx, err := e.cache.Index(ctx)
	if err != nil {
		if !errors.Is(err, ErrDatasetUnavailable) {
			err = fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
		}
		return Quote{}, err
	}

	record, ok := idx.Lookup(code)
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s", ErrPostalCodeNotFound, code)
	}

	q := e.quote(record)
	zap.S().Named("shipping").Debugw("quote computed",
		"postal_code", q.PostalCode,
		"distance_miles", q.DistanceMiles,
		"zone", q.ZoneLabel,
		"total", q.TotalCost)
	return q, nil
}

// QuoteDistance prices a shipment of the given length without a dataset lookup.
func (e *Estimator) QuoteDistance(distanceMiles float64) Quote {
	return e.compose(distanceMiles, "", 0, false)
}

func (e *Estimator) quote(r *postal.Record) Quote {
	distance := geo.DistanceMiles(e.origin, r.Location)
	if e.trustPrecomputed && r.DistanceFromOrigin != nil {
		distance = *r.DistanceFromOrigin
	}

	var q Quote
	if e.trustPrecomputed && r.HasPrecomputedZone() {
		q = e.compose(distance, r.ShippingZone, *r.ZoneCost, true)
	} else {
		q = e.compose(distance, "", 0, false)
	}

	q.PostalCode = r.Code
	q.RegionCode = r.StateCode
	q.CityName = r.City
	return q
}

func (e *Estimator) compose(distance float64, label string, zoneCost float64, precomputed bool) Quote {
	if distance < 0 {
		distance = 0
	}
	if !precomputed {
		zoneCost, label = e.curve.cost(distance)
	}

	base := e.rates.CarrierBase + e.rates.FixedOverhead
	perMile := distance * e.rates.PerMileRate
	distanceCharge := distance * e.rates.DistanceChargeRate

	return Quote{
		TotalCost:      sumCents(base, zoneCost, e.rates.FlatSurcharge, perMile, distanceCharge),
		BaseCost:       RoundCents(base),
		ZoneCost:       RoundCents(zoneCost),
		Surcharge:      RoundCents(e.rates.FlatSurcharge),
		PerMileCharge:  RoundCents(perMile),
		DistanceCharge: RoundCents(distanceCharge),
		DistanceMiles:  RoundCents(distance),
		ZoneLabel:      label,
	}
}
