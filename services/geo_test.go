package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var geoPoints = []GeoPoint{
	ReferencePoint,
	{Lat: 40.7484, Lon: -73.9857},
	{Lat: 40.64749, Lon: -73.97237},
	{Lat: 51.5074, Lon: -0.1278},
	{Lat: -33.8688, Lon: 151.2093},
	{Lat: 89.9, Lon: 179.9},
}

func TestDistanceReflexive(t *testing.T) {
	for _, p := range geoPoints {
		d, err := DistanceKm(p.Lat, p.Lon, p.Lat, p.Lon)
		require.NoError(t, err)
		assert.Equal(t, 0.0, d, "distance from %v to itself", p)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	for _, a := range geoPoints {
		for _, b := range geoPoints {
			ab, err := DistanceKm(a.Lat, a.Lon, b.Lat, b.Lon)
			require.NoError(t, err)
			ba, err := DistanceKm(b.Lat, b.Lon, a.Lat, a.Lon)
			require.NoError(t, err)
			assert.Equal(t, ab, ba, "%v <-> %v", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
		}
	}
}

func TestDistanceKnownValues(t *testing.T) {
	// Times Square to the Empire State Building.
	d, err := DistanceKm(ReferencePoint.Lat, ReferencePoint.Lon, 40.7484, -73.9857)
	require.NoError(t, err)
	assert.InDelta(t, 1.07, d, 0.01)

	// New York to London.
	d, err = DistanceKm(40.7128, -74.0060, 51.5074, -0.1278)
	require.NoError(t, err)
	assert.InDelta(t, 5570, d, 15)

	// Antipodes are half the circumference apart.
	d, err = DistanceKm(0, 0, 0, 180)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi*EarthRadiusKm, d, 1e-6)
}

func TestDistanceUndefined(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{"nan latitude", math.NaN(), -73.9, 40.7, -73.9},
		{"inf longitude", 40.7, math.Inf(1), 40.7, -73.9},
		{"latitude out of range", 95, -73.9, 40.7, -73.9},
		{"longitude out of range", 40.7, -73.9, 40.7, -190},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.ErrorIs(t, err, ErrUndefinedDistance)
		})
	}
}

func TestDistancesFrom(t *testing.T) {
	got := DistancesFrom(ReferencePoint, []GeoPoint{
		ReferencePoint,
		{Lat: 40.7484, Lon: -73.9857},
		{Lat: math.NaN(), Lon: -73.9},
	})

	require.Len(t, got, 3)
	assert.Equal(t, Distance{Km: 0, Defined: true}, got[0])
	assert.True(t, got[1].Defined)
	assert.InDelta(t, 1.07, got[1].Km, 0.01)
	assert.False(t, got[2].Defined)
}
