// Package geo provides great-circle distance math and distance formatting.
package geo

import (
	"fmt"
	"math"
)

const earthRadiusMeters = 6371000.0

const metersPerMile = 1609.34

// DistanceMeters returns the haversine distance between two coordinates in
// meters. Standard double-precision haversine; accuracy degrades slightly at
// antipodal points, which is acceptable for nearby search radii.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// FormatDistance renders meters below 1 km and miles above. The mixed-unit
// policy is a product decision carried over from the frontend contract.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1f mi", meters/metersPerMile)
}
