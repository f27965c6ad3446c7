package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceMeters_OneDegreeLongitudeAtEquator(t *testing.T) {
	// 赤道上经度一度约 111.195 公里
	d := DistanceMeters(0, 0, 0, 1)
	require.InDelta(t, 111195, d, 50)
}

func TestDistanceMeters_SamePoint(t *testing.T) {
	require.Zero(t, DistanceMeters(39.9087, 116.3975, 39.9087, 116.3975))
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	a := DistanceMeters(39.9087, 116.3975, 31.2304, 121.4737)
	b := DistanceMeters(31.2304, 121.4737, 39.9087, 116.3975)
	require.InDelta(t, a, b, 1e-6)
}

func TestDistanceMeters_NonNegative(t *testing.T) {
	cases := [][4]float64{
		{0, 0, 0.001, 0.001},
		{-89.9, 179.9, 89.9, -179.9},
		{45, -120, 45.0001, -120.0001},
	}
	for _, c := range cases {
		require.GreaterOrEqual(t, DistanceMeters(c[0], c[1], c[2], c[3]), 0.0)
	}
}

func TestDistanceMeters_NaNPropagates(t *testing.T) {
	require.True(t, math.IsNaN(DistanceMeters(math.NaN(), 0, 0, 0)))
}
