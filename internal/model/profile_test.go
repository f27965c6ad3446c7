package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProfileLocation(t *testing.T) {
	p := &Profile{Timezone: "Asia/Shanghai"}
	loc := p.Location()
	require.Equal(t, "Asia/Shanghai", loc.String())

	// 未设置或无法解析的时区回退 UTC
	require.Equal(t, time.UTC, (&Profile{}).Location())
	require.Equal(t, time.UTC, (&Profile{Timezone: "Mars/Olympus"}).Location())
}

func TestProfileGymLocation(t *testing.T) {
	require.Nil(t, (&Profile{}).GymLocation())
	require.False(t, (&Profile{}).HasGymLocation())

	lat, lng := 39.9, 116.4
	p := &Profile{GymLatitude: &lat, GymLongitude: &lng}
	require.True(t, p.HasGymLocation())
	coord := p.GymLocation()
	require.NotNil(t, coord)
	require.InDelta(t, 39.9, coord.Latitude, 1e-9)

	// 只有一个坐标等同于未设置
	require.Nil(t, (&Profile{GymLatitude: &lat}).GymLocation())
}
