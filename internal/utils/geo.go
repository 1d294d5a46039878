package utils

import "math"

const (
	metersPerMile    = 1609.34
	earthRadiusMiles = 3959
)

// MilesToMeters converts miles to meters.
func MilesToMeters(miles float64) float64 {
	return miles * metersPerMile
}

// MetersToMiles converts meters to miles.
func MetersToMiles(meters float64) float64 {
	return meters / metersPerMile
}

// DistanceMiles returns the haversine distance in miles between two
// [longitude, latitude] pairs.
func DistanceMiles(coords1, coords2 []float64) float64 {
	lng1, lat1 := toRadians(coords1[0]), toRadians(coords1[1])
	lng2, lat2 := toRadians(coords2[0]), toRadians(coords2[1])

	dLat := lat2 - lat1
	dLng := lng2 - lng1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
