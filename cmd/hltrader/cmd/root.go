package cmd

import (
	"fmt"
	"os"

	"github.com/rustyeddy/hltrader/config"
	"github.com/rustyeddy/hltrader/internal/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hltrader",
	Short: "Risk-gated order entry for Hyperliquid",
	Long: `hltrader places orders on Hyperliquid only after they pass a local risk
policy: per-symbol enablement, leverage caps and notional limits.

It provides:
  - Market and account queries (status, balances, spot, orders)
  - Risk-checked order entry (buy, sell, check, cancel)
  - A live trade stream
  - An HTTP API with Prometheus metrics
  - A submission journal in SQLite or CSV

The wallet key is read from PRIVATE_KEY (environment or .env) only.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var (
	configPath string
	paperMode  bool
	logLevel   string

	cfg *config.Config
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "hltrader.yaml", "config file (defaults apply when missing)")
	rootCmd.PersistentFlags().BoolVar(&paperMode, "paper", false, "trade against the in-memory paper exchange")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if paperMode {
		c.Exchange.Paper = true
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := logger.Init(c.Logger()); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	cfg = c
	return nil
}
