package v1

import (
	"math"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/thomhuang/shipzone/internal/geo"
	"github.com/thomhuang/shipzone/internal/postal"
	"github.com/thomhuang/shipzone/internal/shipping"
	"github.com/thomhuang/shipzone/internal/store/model"
)

type HealthReply struct {
	Status        string `json:"status"`
	DatasetLoaded bool   `json:"datasetLoaded"`
}

type QuoteReply struct {
	shipping.Quote
}

type ZoneReply struct {
	Label           string   `json:"label"`
	LowerBoundMiles float64  `json:"lowerBoundMiles"`
	UpperBoundMiles *float64 `json:"upperBoundMiles"`
	BaseCost        float64  `json:"baseCost"`
	RatePerMile     float64  `json:"ratePerMile"`
}

type ZonesReply struct {
	Origin geo.Point      `json:"origin"`
	Rates  shipping.Rates `json:"rates"`
	Zones  []ZoneReply    `json:"zones"`
}

type PostalCodeReply struct {
	*postal.Record
}

type NearbyReply struct {
	PostalCode  string            `json:"postalCode"`
	RadiusMiles float64           `json:"radiusMiles"`
	Nearby      []postal.Neighbor `json:"nearby"`
}

type ShippingBreakdown struct {
	TotalCost      float64 `json:"totalCost"`
	BaseCost       float64 `json:"baseCost"`
	ZoneCost       float64 `json:"zoneCost"`
	Surcharge      float64 `json:"surcharge"`
	PerMileCharge  float64 `json:"perMileCharge"`
	DistanceCharge float64 `json:"distanceCharge"`
	DistanceMiles  float64 `json:"distanceMiles"`
	ZoneLabel      string  `json:"zoneLabel"`
}

type OrderReply struct {
	ID            string            `json:"id"`
	CreatedAt     time.Time         `json:"createdAt"`
	Email         string            `json:"email"`
	Country       string            `json:"country"`
	PostalCode    string            `json:"postalCode"`
	RegionCode    string            `json:"regionCode"`
	CityName      string            `json:"cityName"`
	WeightLbs     float64           `json:"weightLbs"`
	ItemsSubtotal float64           `json:"itemsSubtotal"`
	Shipping      ShippingBreakdown `json:"shipping"`
	OrderTotal    float64           `json:"orderTotal"`

	status int
}

type OrderListReply struct {
	Total  int64        `json:"total"`
	Orders []OrderReply `json:"orders"`
}

func (h HealthReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (q QuoteReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (z ZonesReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (p PostalCodeReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (n NearbyReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (o OrderReply) Render(w http.ResponseWriter, r *http.Request) error {
	if o.status != 0 {
		render.Status(r, o.status)
	}
	return nil
}

func (o OrderListReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func newZonesReply(e *shipping.Estimator) ZonesReply {
	curve := e.Curve()
	zones := make([]ZoneReply, 0, len(curve))
	lower := 0.0
	for _, s := range curve {
		z := ZoneReply{
			Label:           s.Label,
			LowerBoundMiles: lower,
			BaseCost:        s.Base,
			RatePerMile:     s.Rate,
		}
		// JSON has no infinity, the open ended zone gets a null bound
		if !math.IsInf(s.UpperBound, 1) {
			upper := s.UpperBound
			z.UpperBoundMiles = &upper
		}
		zones = append(zones, z)
		lower = s.UpperBound
	}
	return ZonesReply{Origin: e.Origin(), Rates: e.Rates(), Zones: zones}
}

func newOrderReply(o *model.Order) OrderReply {
	return OrderReply{
		ID:            o.ID.String(),
		CreatedAt:     o.CreatedAt,
		Email:         o.Email,
		Country:       o.Country,
		PostalCode:    o.PostalCode,
		RegionCode:    o.RegionCode,
		CityName:      o.CityName,
		WeightLbs:     o.WeightLbs,
		ItemsSubtotal: o.ItemsSubtotal.InexactFloat64(),
		Shipping: ShippingBreakdown{
			TotalCost:      o.ShippingCost.InexactFloat64(),
			BaseCost:       o.BaseCost.InexactFloat64(),
			ZoneCost:       o.ZoneCost.InexactFloat64(),
			Surcharge:      o.Surcharge.InexactFloat64(),
			PerMileCharge:  o.PerMileCharge.InexactFloat64(),
			DistanceCharge: o.DistanceCharge.InexactFloat64(),
			DistanceMiles:  o.DistanceMiles,
			ZoneLabel:      o.ZoneLabel,
		},
		OrderTotal: o.OrderTotal.InexactFloat64(),
	}
}
