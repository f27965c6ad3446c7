package geo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckProximity_InsideRadius(t *testing.T) {
	gym := Coordinate{Latitude: 39.9087, Longitude: 116.3975}
	sample := Coordinate{Latitude: 39.90875, Longitude: 116.39755}

	result := CheckProximity(sample, gym, 100)
	require.True(t, result.InRange)
	require.Less(t, result.DistanceMeters, 100.0)
}

func TestCheckProximity_OutsideRadius(t *testing.T) {
	gym := Coordinate{Latitude: 39.9087, Longitude: 116.3975}
	sample := Coordinate{Latitude: 39.9187, Longitude: 116.3975}

	result := CheckProximity(sample, gym, 100)
	require.False(t, result.InRange)
	require.Greater(t, result.DistanceMeters, 1000.0)
}

func TestCheckProximity_BoundaryInclusive(t *testing.T) {
	gym := Coordinate{Latitude: 0, Longitude: 0}
	sample := Coordinate{Latitude: 0, Longitude: 0.0009}

	// 半径恰好等于距离时在范围内，略小于距离时不在
	d := DistanceMeters(sample.Latitude, sample.Longitude, gym.Latitude, gym.Longitude)
	require.True(t, CheckProximity(sample, gym, d).InRange)
	require.False(t, CheckProximity(sample, gym, d-0.001).InRange)
}

func TestCheckProximity_ZeroDistance(t *testing.T) {
	gym := Coordinate{Latitude: 39.9087, Longitude: 116.3975}

	result := CheckProximity(gym, gym, 100)
	require.True(t, result.InRange)
	require.Zero(t, result.DistanceMeters)
}

func TestCoordinateValid(t *testing.T) {
	require.True(t, Coordinate{Latitude: 90, Longitude: 180}.Valid())
	require.True(t, Coordinate{Latitude: -90, Longitude: -180}.Valid())
	require.False(t, Coordinate{Latitude: 90.1, Longitude: 0}.Valid())
	require.False(t, Coordinate{Latitude: 0, Longitude: -180.1}.Valid())
}
