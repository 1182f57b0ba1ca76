package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bondhedge/hedge-engine/internal/policy"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8, cfg.Sweep.Workers)

	d, err := cfg.HedgeDefaults()
	require.NoError(t, err)
	assert.True(t, d.SpotRate.Equal(decimal.NewFromInt(85)))
	assert.True(t, d.LotSizeUSD.Equal(decimal.NewFromInt(1000)))
	assert.True(t, d.MarginPerLot.Equal(decimal.NewFromInt(2150)))
	assert.True(t, d.CoveragePercent.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, policy.ConventionSimple, d.Convention)
	assert.Equal(t, policy.FrequencyAnnual, d.Frequency)
	assert.Equal(t, policy.RoundCeiling, d.Rounding)
	assert.Equal(t, policy.CostMarginOnly, d.CostModel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HEDGE_DEFAULTS_SPOT_RATE", "83.25")
	t.Setenv("HEDGE_DEFAULTS_ROUNDING", "floor")
	t.Setenv("HEDGE_SWEEP_WORKERS", "2")
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2, cfg.Sweep.Workers)

	d, err := cfg.HedgeDefaults()
	require.NoError(t, err)
	assert.Equal(t, "83.25", d.SpotRate.String())
	assert.Equal(t, policy.RoundFloor, d.Rounding)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "hedge.yaml")
	content := `
server:
  port: "7070"
  request_timeout: 2s
defaults:
  convention: compound
  frequency: quarterly
  cost_model: margin-interest
log:
  level: debug
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.RequestTimeout)

	d, err := cfg.HedgeDefaults()
	require.NoError(t, err)
	assert.Equal(t, policy.ConventionCompound, d.Convention)
	assert.Equal(t, policy.FrequencyQuarterly, d.Frequency)
	assert.Equal(t, policy.CostMarginInterest, d.CostModel)

	// Found by name when no path is given.
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate_NamesKey(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		value  string
		substr string
	}{
		{"spot rate not positive", "HEDGE_DEFAULTS_SPOT_RATE", "0", "defaults.spot_rate"},
		{"spot rate garbage", "HEDGE_DEFAULTS_SPOT_RATE", "abc", "defaults.spot_rate"},
		{"coverage above 100", "HEDGE_DEFAULTS_COVERAGE_PERCENT", "120", "defaults.coverage_percent"},
		{"unknown rounding", "HEDGE_DEFAULTS_ROUNDING", "bankers", "defaults.rounding"},
		{"unknown cost model", "HEDGE_DEFAULTS_COST_MODEL", "free", "defaults.cost_model"},
		{"unknown frequency", "HEDGE_DEFAULTS_FREQUENCY", "weekly", "defaults.frequency"},
		{"no workers", "HEDGE_SWEEP_WORKERS", "0", "sweep.workers"},
		{"bad log format", "HEDGE_LOG_FORMAT", "xml", "log.format"},
		{"bad log level", "HEDGE_LOG_LEVEL", "loud", "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.env, tt.value)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf).Info("hidden")
	assert.Empty(t, buf.String())

	LogConfig{Level: "debug", Format: "text"}.NewLogger(&buf).Debug("shown", "k", "v")
	assert.True(t, strings.Contains(buf.String(), "msg=shown"))
	assert.Contains(t, buf.String(), "k=v")
}
