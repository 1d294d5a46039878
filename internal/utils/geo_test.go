package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMilesMetersConversion(t *testing.T) {
	assert.InDelta(t, 1609.34, MilesToMeters(1), 0.001)
	assert.InDelta(t, 1, MetersToMiles(1609.34), 0.001)
	assert.InDelta(t, 10, MetersToMiles(MilesToMeters(10)), 1e-9)
}

func TestDistanceMiles(t *testing.T) {
	// Central Park to Times Square, a bit under 2 miles.
	centralPark := []float64{-73.9654, 40.7829}
	timesSquare := []float64{-73.9855, 40.7580}

	d := DistanceMiles(centralPark, timesSquare)
	assert.Greater(t, d, 1.0)
	assert.Less(t, d, 3.0)

	assert.Zero(t, DistanceMiles(centralPark, centralPark))
}

func TestDistanceMilesRadiusCutoff(t *testing.T) {
	origin := []float64{-73.9654, 40.7829}
	near := []float64{-73.9855, 40.7580}  // under 2 miles away
	far := []float64{-71.0589, 42.3601}   // Boston, about 190 miles

	radius := 10.0
	assert.Less(t, DistanceMiles(origin, near), radius, "nearby point falls inside the radius")
	assert.Greater(t, DistanceMiles(origin, far), radius, "distant point falls outside the radius")
}
