// Package geo validates punch positions against configured allowed zones.
// It is pure computation with no I/O.
package geo

import (
	"math"

	"github.com/iplaycheck/go-punch-clock/models"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Result reports the outcome of a location check.
type Result struct {
	// Valid is true when the position lies within RadiusMeters of at least
	// one allowed zone, or when no zones are configured at all.
	Valid bool

	// Distance is the great-circle distance in meters to the nearest zone.
	// Zero when validation is disabled (empty zone list).
	Distance float64

	// Nearest is the closest configured zone, nil when the zone list is
	// empty. On exact distance ties the first zone in the list wins.
	Nearest *models.Zone
}

// ValidateLocation checks pos against the allowed zones. An empty zone list
// disables the feature: every position is valid with distance zero.
func ValidateLocation(pos models.Position, zones []models.Zone, radiusMeters float64) Result {
	if len(zones) == 0 {
		return Result{Valid: true, Distance: 0, Nearest: nil}
	}

	minDistance := math.Inf(1)
	var nearest *models.Zone

	for i := range zones {
		distance := Distance(pos.Latitude, pos.Longitude, zones[i].Latitude, zones[i].Longitude)
		if distance < minDistance {
			minDistance = distance
			nearest = &zones[i]
		}
	}

	return Result{
		Valid:    minDistance <= radiusMeters,
		Distance: minDistance,
		Nearest:  nearest,
	}
}

// Distance returns the great-circle distance in meters between two
// coordinates, computed with the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
