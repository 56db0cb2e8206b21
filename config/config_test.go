package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/hltrader/broker/hyperliquid"
	"github.com/rustyeddy/hltrader/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "testnet", cfg.Exchange.Network)
	assert.Equal(t, hyperliquid.TestnetAPIURL, cfg.APIURL())
	assert.Equal(t, hyperliquid.TestnetWSURL, cfg.WSURL())
	assert.Equal(t, 0.05, cfg.Orders.DefaultSlippage)

	p, err := cfg.RiskPolicy()
	require.NoError(t, err)
	assert.Len(t, p.Symbols(), 5)

	sol, ok := p.Lookup(market.MustSymbol("SOL"))
	require.True(t, ok)
	assert.Equal(t, uint32(20), sol.MaxLeverage)
	assert.Equal(t, "20000", sol.MaxNotional.String())
	assert.Equal(t, "10000", p.Global().MaxNotionalPerOrder.String())
	assert.Equal(t, "25000", p.Global().MaxNotionalPerSymbol.String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"bad network", func(c *Config) { c.Exchange.Network = "devnet" }, "exchange.network"},
		{"bad timeout", func(c *Config) { c.Exchange.Timeout = "soon" }, "exchange.timeout"},
		{"negative retries", func(c *Config) { c.Exchange.InfoRetries = -1 }, "info_retries"},
		{"paper without balance", func(c *Config) { c.Exchange.Paper = true; c.Exchange.PaperBalance = 0 }, "paper_balance"},
		{"zero per order", func(c *Config) { c.Risk.MaxNotionalPerOrder = 0 }, "per order"},
		{"zero leverage", func(c *Config) { c.Risk.Symbols["BTC"] = SymbolConfig{MaxNotional: 1, Enabled: true} }, "max leverage"},
		{"bad symbol", func(c *Config) { c.Risk.Symbols["B T C"] = SymbolConfig{MaxLeverage: 1, MaxNotional: 1} }, "symbol"},
		{"duplicate symbol", func(c *Config) { c.Risk.Symbols["btc"] = SymbolConfig{MaxLeverage: 1, MaxNotional: 1} }, "configured twice"},
		{"max slippage too big", func(c *Config) { c.Orders.MaxSlippage = 2 }, "orders.max_slippage"},
		{"default above max", func(c *Config) { c.Orders.DefaultSlippage = 0.2 }, "orders.default_slippage"},
		{"default of one", func(c *Config) { c.Orders.MaxSlippage = 1; c.Orders.DefaultSlippage = 1 }, "below 1"},
		{"sqlite without path", func(c *Config) { c.Journal.DBPath = "" }, "db_path"},
		{"csv without file", func(c *Config) { c.Journal = JournalConfig{Type: "csv"} }, "journal file"},
		{"unknown journal", func(c *Config) { c.Journal.Type = "parquet" }, "journal.type"},
		{"no server addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := Default()
			cfg.Risk.Symbols["DOGE"] = SymbolConfig{MaxLeverage: 5, MaxNotional: 5000}
			cfg.PrivateKey = "0xsecret"
			require.NoError(t, cfg.SaveToFile(path))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotContains(t, string(raw), "0xsecret")

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg.Risk, loaded.Risk)
			assert.Equal(t, cfg.Orders, loaded.Orders)
			assert.Empty(t, loaded.PrivateKey)
		})
	}
}

func TestLoadFromFileReplacesSymbolTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
exchange:
  network: mainnet
risk:
  max_notional_per_order: 500
  max_notional_per_symbol: 1000
  symbols:
    HYPE: {max_leverage: 3, max_notional: 800, enabled: true}
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Mainnet())
	assert.Equal(t, hyperliquid.MainnetAPIURL, cfg.APIURL())
	assert.Len(t, cfg.Risk.Symbols, 1)
	// Untouched sections keep their defaults.
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("risk: [unclosed"), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAPIURL:     "http://localhost:3001",
		EnvWSURL:      "ws://localhost:3001/ws",
		EnvNetwork:    " MAINNET ",
		EnvLogLevel:   "debug",
		EnvPrivateKey: " 0xabc ",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "http://localhost:3001", cfg.APIURL())
	assert.Equal(t, "ws://localhost:3001/ws", cfg.WSURL())
	assert.True(t, cfg.Mainnet())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "0xabc", cfg.PrivateKey)

	hl := cfg.Hyperliquid()
	assert.Equal(t, "0xabc", hl.PrivateKey)
	assert.True(t, hl.Mainnet)
	assert.Equal(t, 30*time.Second, hl.Timeout)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "testnet", cfg.Exchange.Network)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HLTRADER_DOTENV_PROBE=from-file\n"), 0o600))
	t.Setenv("HLTRADER_DOTENV_PROBE", "")
	os.Unsetenv("HLTRADER_DOTENV_PROBE")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "absent.env")))
	assert.Equal(t, "from-file", os.Getenv("HLTRADER_DOTENV_PROBE"))
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile("bad.yaml", []byte("exchange:\n  network: moon\n"), 0o644))

	_, err := Load("bad.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

// chdir changes the working directory for the duration of the test,
// like testing.T.Chdir (Go 1.24+), which the local toolchain lacks.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
