package geoprovider

import (
	"testing"

	"github.com/stretchr/testify/require"

	"GymTree/config"
)

func TestNewClient(t *testing.T) {
	orig := config.Cfg.LocationProvider
	defer func() { config.Cfg.LocationProvider = orig }()

	config.Cfg.LocationProvider = "push"
	c, err := NewClient()
	require.NoError(t, err)
	require.IsType(t, &PushClient{}, c)

	config.Cfg.LocationProvider = "mock"
	c, err = NewClient()
	require.NoError(t, err)
	require.IsType(t, &MockClient{}, c)

	config.Cfg.LocationProvider = "carrier-pigeon"
	_, err = NewClient()
	require.Error(t, err)
	require.Contains(t, err.Error(), "carrier-pigeon")
}
