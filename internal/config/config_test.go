package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{"ORS_API_KEY": "key"}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "Gwalior", cfg.City.Name)
	assert.InDelta(t, 26.2183, cfg.City.Lat, 1e-9)
	assert.Equal(t, 5, cfg.ORS.MaxCandidates)
	assert.Equal(t, "driving-car", cfg.ORS.Profiles["car"])
	assert.Equal(t, "foot-walking", cfg.ORS.Profiles["walking"])
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 15*time.Minute, cfg.ORS.RouteCacheTTL)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestFromViperOverrides(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]any{
		"PORT":                    ":9090",
		"ORS_API_KEY":             "key",
		"ORS_BASE_URL":            "http://ors.local/",
		"ORS_PROFILE_TWO_WHEELER": "driving-car",
		"SESSION_TTL":             "30m",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, "http://ors.local", cfg.ORS.BaseURL)
	assert.Equal(t, "driving-car", cfg.ORS.Profiles["two_wheeler"])
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestFromViperRejectsBadValues(t *testing.T) {
	_, err := fromViper(newViper(map[string]any{"SESSION_TTL": "soon"}))
	assert.Error(t, err)

	_, err = fromViper(newViper(map[string]any{"GEOCODE_MAX_CANDIDATES": 0}))
	assert.Error(t, err)

	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}
