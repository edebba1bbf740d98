package shipping

import (
	"fmt"
	"math"
)

// Segment is one distance band of a ZoneCostCurve. A distance d inside the
// band costs Base + (d - lower bound) * Rate, where the lower bound is the
// previous segment's UpperBound (0 for the first one).
type Segment struct {
	UpperBound float64 `json:"upperBoundMiles"`
	Base       float64 `json:"baseCost"`
	Rate       float64 `json:"ratePerMile"`
	Label      string  `json:"label"`
}

// ZoneCostCurve is a contiguous piecewise linear cost function over [0, ∞).
// Segments are ordered by strictly increasing UpperBound and the last one
// is unbounded.
type ZoneCostCurve []Segment

// DefaultCurve is the zone table used for domestic quotes.
var DefaultCurve = ZoneCostCurve{
	{UpperBound: 50, Base: 0, Rate: 0.02, Label: "Zone 1 (Local)"},
	{UpperBound: 150, Base: 1.00, Rate: 0.015, Label: "Zone 2 (Regional)"},
	{UpperBound: 300, Base: 2.50, Rate: 0.017, Label: "Zone 3 (Regional)"},
	{UpperBound: 600, Base: 5.05, Rate: 0.008, Label: "Zone 4 (Regional)"},
	{UpperBound: 1000, Base: 7.45, Rate: 0.0065, Label: "Zone 5 (National)"},
	{UpperBound: 1400, Base: 10.05, Rate: 0.006, Label: "Zone 6 (National)"},
	{UpperBound: 1800, Base: 12.45, Rate: 0.0065, Label: "Zone 7 (National)"},
	{UpperBound: 2500, Base: 15.05, Rate: 0.0035, Label: "Zone 8 (Cross-Country)"},
	{UpperBound: math.Inf(1), Base: 17.50, Rate: 0.002, Label: "Zone 9 (Extreme Distance)"},
}

// continuityTolerance is the largest allowed jump, in dollars, between the
// end of one segment and the start of the next.
const continuityTolerance = 0.005

// Validate checks ordering, coverage and continuity of the curve.
func (c ZoneCostCurve) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("zone curve has no segments")
	}
	lower := 0.0
	for i, s := range c {
		if s.UpperBound <= lower {
			return fmt.Errorf("zone curve segment %d (%s): upper bound %v is not above %v", i, s.Label, s.UpperBound, lower)
		}
		if s.Rate < 0 || s.Base < 0 {
			return fmt.Errorf("zone curve segment %d (%s): negative base or rate", i, s.Label)
		}
		if i > 0 {
			prev := c[i-1]
			end := prev.Base + (prev.UpperBound-c.lowerBound(i-1))*prev.Rate
			if math.Abs(end-s.Base) > continuityTolerance {
				return fmt.Errorf("zone curve segment %d (%s): base %.4f does not continue previous segment ending at %.4f", i, s.Label, s.Base, end)
			}
		}
		lower = s.UpperBound
	}
	if !math.IsInf(c[len(c)-1].UpperBound, 1) {
		return fmt.Errorf("zone curve does not cover distances above %v", lower)
	}
	return nil
}

func (c ZoneCostCurve) lowerBound(i int) float64 {
	if i == 0 {
		return 0
	}
	return c[i-1].UpperBound
}

// segment returns the index of the segment covering distance. A distance on
// a bound belongs to the lower segment.
func (c ZoneCostCurve) segment(distance float64) int {
	for i, s := range c {
		if distance <= s.UpperBound {
			return i
		}
	}
	return len(c) - 1
}

// cost returns the unrounded zone cost, floored at zero, and the zone label.
func (c ZoneCostCurve) cost(distance float64) (float64, string) {
	if len(c) == 0 {
		return 0, ""
	}
	if distance < 0 || math.IsNaN(distance) {
		distance = 0
	}
	i := c.segment(distance)
	s := c[i]
	v := s.Base + (distance-c.lowerBound(i))*s.Rate
	if v < 0 {
		v = 0
	}
	return v, s.Label
}

// Resolve maps a distance in miles to its zone cost, rounded to cents, and label.
func (c ZoneCostCurve) Resolve(distance float64) (float64, string) {
	v, label := c.cost(distance)
	return RoundCents(v), label
}
