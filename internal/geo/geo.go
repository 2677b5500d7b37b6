// Package geo is the single source of distance, cost and emissions math.
// The matcher, the scheduler and the analytics endpoints all go through
// these helpers so the numbers cannot drift between views.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// earthRadiusMiles is the mean Earth radius used for haul planning.
const earthRadiusMiles = 3959.0

// DistanceMiles returns the haversine great-circle distance between two
// lon/lat points in statute miles.
func DistanceMiles(a, b orb.Point) float64 {
	lat1 := a[1] * math.Pi / 180
	lat2 := b[1] * math.Pi / 180
	dLat := (b[1] - a[1]) * math.Pi / 180
	dLng := (b[0] - a[0]) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}

// Cost is the linear haul cost for a distance at a flat per-mile rate.
func Cost(distanceMiles, ratePerMile float64) float64 {
	return distanceMiles * ratePerMile
}

// Emissions is the linear CO2 estimate for a distance at a flat
// kg-per-mile factor.
func Emissions(distanceMiles, factorPerMileKg float64) float64 {
	return distanceMiles * factorPerMileKg
}
