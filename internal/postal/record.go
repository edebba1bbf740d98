package postal

import (
	"github.com/dhconnelly/rtreego"
	"github.com/thomhuang/shipzone/internal/geo"
)

// rectTolerance is half the side, in degrees, of the rectangle each record
// occupies in the spatial index.
const rectTolerance = 0.0001

// Record is one row of the postal code reference table.
type Record struct {
	Code      string    `json:"postalCode"`
	City      string    `json:"city"`
	StateCode string    `json:"stateCode"`
	Country   string    `json:"country"`
	Location  geo.Point `json:"location"`

	// Optional values precomputed by whoever produced the table. Nil or
	// empty when the column is absent or blank.
	ShippingZone       string   `json:"shippingZone,omitempty"`
	ZoneCost           *float64 `json:"zoneCost,omitempty"`
	DistanceFromOrigin *float64 `json:"distanceFromOrigin,omitempty"`
}

// HasPrecomputedZone reports whether the row carries a usable zone label and cost.
func (r *Record) HasPrecomputedZone() bool {
	return r.ShippingZone != "" && r.ZoneCost != nil
}

// item is the spatial index entry for a record.
type item struct {
	rect   rtreego.Rect
	record *Record
}

func newItem(r *Record) *item {
	p := rtreego.Point{r.Location.Lon, r.Location.Lat}
	return &item{rect: p.ToRect(rectTolerance), record: r}
}

func (i *item) Bounds() rtreego.Rect {
	return i.rect
}
