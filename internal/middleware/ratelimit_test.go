package middleware

import (
	"testing"

	"github.com/stretchr/testify/require"

	"GymTree/config"
)

func TestDefaultRateLimitFollowsConfiguredRPS(t *testing.T) {
	require.Equal(t, config.Cfg.RateLimitRPS*DefaultRateLimitConfig.Window, DefaultRateLimitConfig.MaxRequests)
	require.Positive(t, DefaultRateLimitConfig.MaxRequests)
}

func TestGroupRateLimitConfigs(t *testing.T) {
	// 分组限流有独立于总量的更紧上限
	require.Less(t, PlanRateLimitConfig.MaxRequests, DefaultRateLimitConfig.MaxRequests)
	require.Less(t, SampleRateLimitConfig.MaxRequests, DefaultRateLimitConfig.MaxRequests)
	require.True(t, PlanRateLimitConfig.ByUserID)
	require.True(t, SampleRateLimitConfig.ByUserID)
}
