// Package geo holds the coordinate type shared by the parsers, the article
// registry, and the located-at diameter check.
package geo

import (
	"math"

	"github.com/krauseamir/wikigir/pkg/binio"
)

// Coordinates is a latitude/longitude pair in signed decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Valid reports whether both components are finite and within range.
func (c Coordinates) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0) &&
		!math.IsNaN(c.Lon) && !math.IsInf(c.Lon, 0) &&
		c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

const earthRadiusKm = 6371

// Dist returns the great-circle distance between two coordinates in
// kilometers, using the haversine formula.
func Dist(a, b Coordinates) float64 {
	latDist := toRadians(b.Lat - a.Lat)
	lonDist := toRadians(b.Lon - a.Lon)
	h := math.Sin(latDist/2)*math.Sin(latDist/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(lonDist/2)*math.Sin(lonDist/2)
	return 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h)) * earthRadiusKm
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Write serialises the pair as two consecutive doubles.
func (c Coordinates) Write(w *binio.Writer) {
	w.WriteFloat64(c.Lat)
	w.WriteFloat64(c.Lon)
}

// ReadCoordinates reads a pair written by Write.
func ReadCoordinates(r *binio.Reader) Coordinates {
	return Coordinates{Lat: r.ReadFloat64(), Lon: r.ReadFloat64()}
}
