package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, cfg.TTL)
	require.Equal(t, 1*time.Hour, cfg.RefreshWindow)
	require.Equal(t, 32, cfg.TokenBytes)
}

func TestLoadConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("GATEHOUSE_SESSION_TTL", "48h")
	t.Setenv("GATEHOUSE_SESSION_REFRESH_WINDOW", "2h")
	t.Setenv("GATEHOUSE_SESSION_TOKEN_BYTES", "48")
	t.Setenv("GATEHOUSE_SESSION_SWEEP_INTERVAL", "30m")
	t.Setenv("GATEHOUSE_SESSION_SWEEP_RETENTION", "0s")

	cfg, err := LoadConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, 48*time.Hour, cfg.TTL)
	require.Equal(t, 2*time.Hour, cfg.RefreshWindow)
	require.Equal(t, 48, cfg.TokenBytes)
	require.Equal(t, 30*time.Minute, cfg.SweepInterval)
	require.Equal(t, time.Duration(0), cfg.SweepRetention)
}

func TestLoadConfigFromEnv_Invalid(t *testing.T) {
	cases := map[string]string{
		"GATEHOUSE_SESSION_TTL":            "not-a-duration",
		"GATEHOUSE_SESSION_REFRESH_WINDOW": "-1h",
		"GATEHOUSE_SESSION_TOKEN_BYTES":    "16",
		"GATEHOUSE_SESSION_SWEEP_INTERVAL": "0s",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := LoadConfigFromEnv()
			require.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestLoadConfigFromEnv_WindowMustBeBelowTTL(t *testing.T) {
	t.Setenv("GATEHOUSE_SESSION_TTL", "1h")
	t.Setenv("GATEHOUSE_SESSION_REFRESH_WINDOW", "1h")

	_, err := LoadConfigFromEnv()
	require.ErrorIs(t, err, ErrConfig)
}
