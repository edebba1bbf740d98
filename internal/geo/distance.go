package geo

import "github.com/umahmood/haversine"

const (
	// EarthRadiusMiles is the sphere radius used for every shipping distance.
	EarthRadiusMiles = 3959.0

	// haversine.Distance reports kilometres on a 6371 km sphere.
	haversineRadiusKm = 6371.0
)

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Valid reports whether the point lies inside the degree ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// DistanceMiles returns the great-circle distance between a and b on a
// sphere of EarthRadiusMiles. Inputs are not re-validated.
func DistanceMiles(a, b Point) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: a.Lat, Lon: a.Lon},
		haversine.Coord{Lat: b.Lat, Lon: b.Lon},
	)
	// the central angle is km / 6371; rescale it to our radius
	return km / haversineRadiusKm * EarthRadiusMiles
}
