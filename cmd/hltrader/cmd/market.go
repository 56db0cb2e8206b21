package cmd

import (
	"github.com/rustyeddy/hltrader/internal/display"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List perpetual markets with mark, volume and funding",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newVenue(cmd.Context())
		if err != nil {
			return err
		}
		ms, err := v.Markets(cmd.Context())
		if err != nil {
			return err
		}
		display.Markets(cmd.OutOrStdout(), ms)
		return nil
	},
}

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Show account value and open positions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newVenue(cmd.Context())
		if err != nil {
			return err
		}
		b, err := v.Balances(cmd.Context())
		if err != nil {
			return err
		}
		display.Balances(cmd.OutOrStdout(), b)
		return nil
	},
}

var spotCmd = &cobra.Command{
	Use:   "spot",
	Short: "List spot tokens and pairs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newVenue(cmd.Context())
		if err != nil {
			return err
		}
		s, err := v.SpotMarkets(cmd.Context())
		if err != nil {
			return err
		}
		display.Spot(cmd.OutOrStdout(), s)
		return nil
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List open orders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newVenue(cmd.Context())
		if err != nil {
			return err
		}
		orders, err := v.OpenOrders(cmd.Context())
		if err != nil {
			return err
		}
		display.OpenOrders(cmd.OutOrStdout(), orders)
		return nil
	},
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Show the configured risk policy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cfg.RiskPolicy()
		if err != nil {
			return err
		}
		display.Policy(cmd.OutOrStdout(), p)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, balancesCmd, spotCmd, ordersCmd, policyCmd)
}
