// Package geo holds the proximity gate used before check-out.
package geo

import (
	"math"

	"worktime/internal/model"
)

const (
	EarthRadiusMeters = 6371000.0
	// DefaultMaxMeters is the check-out radius around the check-in point
	DefaultMaxMeters = 100.0
)

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DistanceMeters returns the great-circle (haversine) distance between two points
func DistanceMeters(p1, p2 model.Location) float64 {
	dLat := radians(p2.Lat - p1.Lat)
	dLng := radians(p2.Lng - p1.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(p1.Lat))*math.Cos(radians(p2.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push a slightly above 1 for antipodal points
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// IsCheckoutAllowed reports whether checkOut lies within maxMeters of checkIn
func IsCheckoutAllowed(checkIn, checkOut model.Location, maxMeters float64) bool {
	return DistanceMeters(checkIn, checkOut) <= maxMeters
}
