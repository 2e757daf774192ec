package attendance

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

const (
	premisesRadiusKm = 0.05
	nearbyRadiusKm   = 0.2
)

// HaversineKm is the great-circle distance between two coordinates.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// ClassifyLocation describes how far a clock action happened from the
// salon. It is recorded on the session and never enforced.
func ClassifyLocation(distanceKm float64) string {
	switch {
	case distanceKm <= premisesRadiusKm:
		return "at premises"
	case distanceKm <= nearbyRadiusKm:
		return "near"
	default:
		return fmt.Sprintf("remote, %.1fkm away", distanceKm)
	}
}
