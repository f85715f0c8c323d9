package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func westwoodStops() []Stop {
	return []Stop{
		{StopID: 1, StopName: "Wilshire / Veteran", Latitude: 34.0561, Longitude: -118.4488},
		{StopID: 2, StopName: "Le Conte / Broxton", Latitude: 34.0633, Longitude: -118.4472},
		{StopID: 3, StopName: "Sunset / Hilgard", Latitude: 34.0756, Longitude: -118.4404},
		{StopID: 4, StopName: "Downtown LA", Latitude: 34.0522, Longitude: -118.2437},
	}
}

func TestStopIndexLen(t *testing.T) {
	idx := NewStopIndex(westwoodStops())
	assert.Equal(t, 4, idx.Len())
}

func TestNearbyFindsStopsWithinRadius(t *testing.T) {
	idx := NewStopIndex(westwoodStops())

	// 1km around Wilshire / Veteran covers only itself and Le Conte / Broxton
	matches := idx.Nearby(34.0561, -118.4488, 1000)
	require.Len(t, matches, 2)
	assert.Equal(t, "Wilshire / Veteran", matches[0].StopName)
	assert.Equal(t, "Le Conte / Broxton", matches[1].StopName)
}

func TestNearbySortedByDistance(t *testing.T) {
	idx := NewStopIndex(westwoodStops())

	matches := idx.Nearby(34.0561, -118.4488, 5000)
	require.Len(t, matches, 3)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i].DistanceMeters, matches[i-1].DistanceMeters)
	}
	assert.Equal(t, 0.0, matches[0].DistanceMeters)
}

func TestNearbyExcludesBoundingBoxCorners(t *testing.T) {
	// A stop inside the bounding box but outside the circle must be filtered
	corner := Stop{StopID: 10, StopName: "Corner", Latitude: 34.0611, Longitude: -118.4418}
	center := Stop{StopID: 11, StopName: "Center", Latitude: 34.0561, Longitude: -118.4488}
	idx := NewStopIndex([]Stop{corner, center})

	matches := idx.Nearby(34.0561, -118.4488, 700)
	require.Len(t, matches, 1)
	assert.Equal(t, "Center", matches[0].StopName)
}

func TestNearbyEmptyIndex(t *testing.T) {
	idx := NewStopIndex(nil)
	assert.Empty(t, idx.Nearby(34.0, -118.0, 1000))
}
