package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultSettings(t *testing.T) *Settings {
	t.Helper()
	s, err := Load()
	require.NoError(t, err)
	return s
}

func TestDefaults(t *testing.T) {
	s := defaultSettings(t)

	assert.Equal(t, "grid", s.Fit.Method)
	assert.Equal(t, 10, s.Fit.Restarts)
	assert.Equal(t, 200, s.Fit.GridSize)
	assert.Equal(t, 1000, s.Fit.GridSamples)
	assert.Equal(t, 128, s.Fit.Worlds)
	assert.InEpsilon(t, 1.0, s.Fit.Tempering, 1e-12)
	assert.Equal(t, 2, s.Sampler.Chains)
	assert.Equal(t, 500, s.Sampler.MaxObservations)
}

func TestValidateRejectsBadMethod(t *testing.T) {
	s := defaultSettings(t)
	s.Fit.Method = "exact"
	err := ValidateSettings(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fit.method")
}

func TestValidateRejectsBadTempering(t *testing.T) {
	s := defaultSettings(t)
	s.Fit.Tempering = 0
	require.Error(t, ValidateSettings(s))
	s.Fit.Tempering = 1.5
	require.Error(t, ValidateSettings(s))
	s.Fit.Tempering = 0.25
	require.NoError(t, ValidateSettings(s))
}
