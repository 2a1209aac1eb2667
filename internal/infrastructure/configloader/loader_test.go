package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaultsToEmptyConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.CoinGecko.BaseURL)
	assert.Equal(t, int64(30000), cfg.CoinGecko.RequestTimeoutMillis)
	assert.Equal(t, 3, cfg.CoinGecko.RetryCount)
	assert.Equal(t, int64(1000), cfg.CoinGecko.RetryDelayMillis)
	assert.Equal(t, int64(30000), cfg.Quote.CacheDurationMillis)
	assert.Equal(t, 0.005, cfg.Quote.SlippageTolerance)
	assert.Equal(t, 0.05, cfg.Quote.PriceImpactThreshold)
	assert.Equal(t, "static", cfg.Fees.Mode)
	assert.Equal(t, 0.001, cfg.Fees.BaseFee)
	assert.Equal(t, int64(500), cfg.Requote.SettleMillis)
	assert.Equal(t, "data/tokens", cfg.Tokens.DirectoryPath)
	assert.False(t, cfg.Quote.DisableInFlightDedupe)
	assert.False(t, cfg.Fees.FallbackToStatic)
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: "9090"
quote:
  cacheDurationMillis: 60000
  slippageTolerance: 0.01
fees:
  mode: "live"
  fallbackToStatic: true
rpcOverrides:
  ethereum: "https://mainnet.example.com"
`))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, int64(60000), cfg.Quote.CacheDurationMillis)
	assert.Equal(t, 0.01, cfg.Quote.SlippageTolerance)
	assert.Equal(t, "live", cfg.Fees.Mode)
	assert.True(t, cfg.Fees.FallbackToStatic)
	assert.Equal(t, "https://mainnet.example.com", cfg.RPCOverrides["ethereum"])
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestLoadMalformedYAMLFails(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [not a mapping"))
	require.Error(t, err)
}

func TestLoadRestoresImpactCapOutsideUnitInterval(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
quote:
  impactCap: 1.5
`))
	require.NoError(t, err)
	assert.Equal(t, 0.99, cfg.Quote.ImpactCap)
}
