package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/hltrader/broker/hyperliquid"
	"github.com/rustyeddy/hltrader/internal/logger"
	"github.com/rustyeddy/hltrader/market"
	"github.com/rustyeddy/hltrader/risk"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the complete trader configuration.
type Config struct {
	Exchange ExchangeConfig `json:"exchange" yaml:"exchange"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Orders   OrdersConfig   `json:"orders" yaml:"orders"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Log      LogConfig      `json:"log" yaml:"log"`

	// PrivateKey only ever comes from the environment.
	PrivateKey string `json:"-" yaml:"-"`
}

type ExchangeConfig struct {
	Network      string  `json:"network" yaml:"network"` // "testnet" or "mainnet"
	APIURL       string  `json:"api_url,omitempty" yaml:"api_url,omitempty"`
	WSURL        string  `json:"ws_url,omitempty" yaml:"ws_url,omitempty"`
	Timeout      string  `json:"timeout" yaml:"timeout"`
	InfoRetries  int     `json:"info_retries" yaml:"info_retries"`
	Paper        bool    `json:"paper" yaml:"paper"`
	PaperBalance float64 `json:"paper_balance,omitempty" yaml:"paper_balance,omitempty"`
}

// RiskConfig is the policy table. Amounts are USD notional.
type RiskConfig struct {
	MaxNotionalPerOrder  float64                 `json:"max_notional_per_order" yaml:"max_notional_per_order"`
	MaxNotionalPerSymbol float64                 `json:"max_notional_per_symbol" yaml:"max_notional_per_symbol"`
	Symbols              map[string]SymbolConfig `json:"symbols" yaml:"symbols"`
}

type SymbolConfig struct {
	MaxLeverage uint32  `json:"max_leverage" yaml:"max_leverage"`
	MaxNotional float64 `json:"max_notional" yaml:"max_notional"`
	Enabled     bool    `json:"enabled" yaml:"enabled"`
}

type OrdersConfig struct {
	DefaultSlippage float64 `json:"default_slippage" yaml:"default_slippage"`
	MaxSlippage     float64 `json:"max_slippage" yaml:"max_slippage"`
}

type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level      string `json:"level" yaml:"level"`
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty" yaml:"max_age_days,omitempty"`
	Compress   bool   `json:"compress,omitempty" yaml:"compress,omitempty"`
	JSON       bool   `json:"json,omitempty" yaml:"json,omitempty"`
}

// Environment variables that override the file.
const (
	EnvAPIURL     = "HYPERLIQUID_API_URL"
	EnvWSURL      = "HYPERLIQUID_WS_URL"
	EnvNetwork    = "HYPERLIQUID_NETWORK"
	EnvLogLevel   = "HLTRADER_LOG_LEVEL"
	EnvPrivateKey = "PRIVATE_KEY"
)

// Load reads path (falling back to Default when path is empty or missing),
// applies .env and environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		switch {
		case err == nil:
			cfg = fileCfg
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads the given files (default ".env") into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides file settings from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIURL); v != "" {
		c.Exchange.APIURL = v
	}
	if v := getenv(EnvWSURL); v != "" {
		c.Exchange.WSURL = v
	}
	if v := getenv(EnvNetwork); v != "" {
		c.Exchange.Network = strings.ToLower(strings.TrimSpace(v))
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	c.PrivateKey = strings.TrimSpace(getenv(EnvPrivateKey))
}

// LoadFromFile loads configuration from a file. YAML is tried first, then
// JSON. The result is not validated.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	// Replace rather than merge the symbol table.
	cfg.Risk.Symbols = nil

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Exchange.Network {
	case "testnet", "mainnet":
	default:
		return fmt.Errorf("exchange.network must be 'testnet' or 'mainnet', got %q", c.Exchange.Network)
	}
	if _, err := c.Timeout(); err != nil {
		return fmt.Errorf("exchange.timeout: %w", err)
	}
	if c.Exchange.InfoRetries < 0 {
		return fmt.Errorf("exchange.info_retries must not be negative")
	}
	if c.Exchange.Paper && c.Exchange.PaperBalance <= 0 {
		return fmt.Errorf("exchange.paper_balance must be positive in paper mode")
	}

	if _, err := c.RiskPolicy(); err != nil {
		return fmt.Errorf("risk: %w", err)
	}

	if c.Orders.MaxSlippage <= 0 || c.Orders.MaxSlippage > 1 {
		return fmt.Errorf("orders.max_slippage must be in (0, 1]")
	}
	if c.Orders.DefaultSlippage < 0 || c.Orders.DefaultSlippage > c.Orders.MaxSlippage {
		return fmt.Errorf("orders.default_slippage must be between 0 and orders.max_slippage")
	}
	if c.Orders.DefaultSlippage >= 1 {
		return fmt.Errorf("orders.default_slippage must be below 1 so sells keep a positive protective price")
	}

	switch c.Journal.Type {
	case "none":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "csv":
		if c.Journal.File == "" {
			return fmt.Errorf("journal file required for CSV type")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none'")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// RiskPolicy builds the immutable policy from the risk section.
func (c *Config) RiskPolicy() (*risk.Policy, error) {
	symbols := make(map[market.Symbol]risk.SymbolLimits, len(c.Risk.Symbols))
	for name, sc := range c.Risk.Symbols {
		sym, err := market.ParseSymbol(name)
		if err != nil {
			return nil, err
		}
		if _, dup := symbols[sym]; dup {
			return nil, fmt.Errorf("symbol %s configured twice", sym)
		}
		symbols[sym] = risk.SymbolLimits{
			MaxLeverage: sc.MaxLeverage,
			MaxNotional: decimal.NewFromFloat(sc.MaxNotional),
			Enabled:     sc.Enabled,
		}
	}
	return risk.NewPolicy(risk.GlobalLimits{
		MaxNotionalPerOrder:  decimal.NewFromFloat(c.Risk.MaxNotionalPerOrder),
		MaxNotionalPerSymbol: decimal.NewFromFloat(c.Risk.MaxNotionalPerSymbol),
	}, symbols)
}

func (c *Config) Mainnet() bool { return c.Exchange.Network == "mainnet" }

// APIURL is the REST endpoint, defaulting by network.
func (c *Config) APIURL() string {
	if c.Exchange.APIURL != "" {
		return c.Exchange.APIURL
	}
	if c.Mainnet() {
		return hyperliquid.MainnetAPIURL
	}
	return hyperliquid.TestnetAPIURL
}

func (c *Config) WSURL() string {
	if c.Exchange.WSURL != "" {
		return c.Exchange.WSURL
	}
	if c.Mainnet() {
		return hyperliquid.MainnetWSURL
	}
	return hyperliquid.TestnetWSURL
}

func (c *Config) Timeout() (time.Duration, error) {
	if c.Exchange.Timeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Exchange.Timeout)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return d, nil
}

func (c *Config) DefaultSlippage() decimal.Decimal {
	return decimal.NewFromFloat(c.Orders.DefaultSlippage)
}

func (c *Config) MaxSlippage() decimal.Decimal {
	return decimal.NewFromFloat(c.Orders.MaxSlippage)
}

// Hyperliquid returns the exchange client settings.
func (c *Config) Hyperliquid() hyperliquid.Config {
	timeout, _ := c.Timeout()
	return hyperliquid.Config{
		APIURL:     c.APIURL(),
		Mainnet:    c.Mainnet(),
		PrivateKey: c.PrivateKey,
		Timeout:    timeout,
		InfoRetry:  c.Exchange.InfoRetries,
	}
}

func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Compress:   c.Log.Compress,
		JSON:       c.Log.JSON,
	}
}

// Default returns the testnet configuration with the stock risk table.
func Default() *Config {
	return &Config{
		Exchange: ExchangeConfig{
			Network:      "testnet",
			Timeout:      "30s",
			InfoRetries:  3,
			PaperBalance: 100000,
		},
		Risk: RiskConfig{
			MaxNotionalPerOrder:  10000,
			MaxNotionalPerSymbol: 25000,
			Symbols: map[string]SymbolConfig{
				"BTC":  {MaxLeverage: 10, MaxNotional: 50000, Enabled: true},
				"ETH":  {MaxLeverage: 15, MaxNotional: 30000, Enabled: true},
				"SOL":  {MaxLeverage: 20, MaxNotional: 20000, Enabled: true},
				"ARB":  {MaxLeverage: 25, MaxNotional: 15000, Enabled: true},
				"AVAX": {MaxLeverage: 20, MaxNotional: 15000, Enabled: true},
			},
		},
		Orders: OrdersConfig{
			DefaultSlippage: 0.05,
			MaxSlippage:     0.1,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./hltrader.db",
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info"},
	}
}
