package cmd

import (
	"fmt"
	"strconv"

	"github.com/rustyeddy/hltrader/internal/display"
	"github.com/rustyeddy/hltrader/market"
	"github.com/rustyeddy/hltrader/risk"
	"github.com/rustyeddy/hltrader/trading"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type tradeFlags struct {
	limit      string
	leverage   uint32
	reduceOnly bool
	tif        string
	slippage   string
	tickSize   string
}

func (f *tradeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.limit, "limit", "", "limit price (market order when empty)")
	cmd.Flags().Uint32Var(&f.leverage, "leverage", 0, "leverage to set before the order (perps only)")
	cmd.Flags().BoolVar(&f.reduceOnly, "reduce-only", false, "only reduce an existing position")
	cmd.Flags().StringVar(&f.tif, "tif", "gtc", "time in force for limit orders: gtc, ioc, alo")
	cmd.Flags().StringVar(&f.slippage, "slippage", "", "max slippage for market orders, e.g. 0.01")
	cmd.Flags().StringVar(&f.tickSize, "tick-size", "", "snap prices to this tick")
}

func optionalDecimal(name, raw string) (decimal.NullDecimal, error) {
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("--%s: %w", name, err)
	}
	return decimal.NewNullDecimal(d), nil
}

// intentFromArgs builds an intent from "<symbol> <size>" and flags.
func intentFromArgs(side string, args []string, f *tradeFlags) (risk.TradeIntent, error) {
	size, err := decimal.NewFromString(args[1])
	if err != nil {
		return risk.TradeIntent{}, fmt.Errorf("size: %w", err)
	}
	limit, err := optionalDecimal("limit", f.limit)
	if err != nil {
		return risk.TradeIntent{}, err
	}
	slip, err := optionalDecimal("slippage", f.slippage)
	if err != nil {
		return risk.TradeIntent{}, err
	}
	tick, err := optionalDecimal("tick-size", f.tickSize)
	if err != nil {
		return risk.TradeIntent{}, err
	}

	req := trading.IntentRequest{
		Symbol:      args[0],
		Side:        side,
		Size:        size,
		LimitPrice:  limit,
		Leverage:    f.leverage,
		ReduceOnly:  f.reduceOnly,
		TimeInForce: f.tif,
		Slippage:    slip,
		TickSize:    tick,
	}
	return req.Intent(cfg.MaxSlippage())
}

func newOrderCmd(side string) *cobra.Command {
	f := &tradeFlags{}
	c := &cobra.Command{
		Use:   side + " <symbol> <size>",
		Short: fmt.Sprintf("Risk-check and place a %s order", side),
		Example: fmt.Sprintf(`  hltrader %[1]s ETH 0.5
  hltrader %[1]s BTC 0.01 --limit 60000 --tif alo
  hltrader %[1]s SOL 10 --leverage 5 --slippage 0.01`, side),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := intentFromArgs(side, args, f)
			if err != nil {
				return err
			}
			v, err := newVenue(cmd.Context())
			if err != nil {
				return err
			}
			svc, j, err := newService(v, nil)
			if err != nil {
				return err
			}
			defer j.Close()

			ack, err := svc.Submit(cmd.Context(), in)
			if err != nil {
				return describe(err)
			}
			display.Ack(cmd.OutOrStdout(), ack)
			return nil
		},
	}
	f.register(c)
	return c
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate an order against the risk policy without placing it",
}

func newCheckCmd(side string) *cobra.Command {
	f := &tradeFlags{}
	c := &cobra.Command{
		Use:   side + " <symbol> <size>",
		Short: fmt.Sprintf("Evaluate a %s order", side),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := intentFromArgs(side, args, f)
			if err != nil {
				return err
			}
			v, err := newVenue(cmd.Context())
			if err != nil {
				return err
			}
			svc, j, err := newService(v, nil)
			if err != nil {
				return err
			}
			defer j.Close()

			d, err := svc.Evaluate(cmd.Context(), in)
			if err != nil {
				return describe(err)
			}
			display.Decision(cmd.OutOrStdout(), d)
			return nil
		},
	}
	f.register(c)
	return c
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <symbol> <order-id>",
	Short: "Cancel a resting order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sym, err := market.ParseSymbol(args[0])
		if err != nil {
			return err
		}
		oid, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("order id: %w", err)
		}
		v, err := newVenue(cmd.Context())
		if err != nil {
			return err
		}
		svc, j, err := newService(v, nil)
		if err != nil {
			return err
		}
		defer j.Close()

		if err := svc.Cancel(cmd.Context(), sym, oid); err != nil {
			return describe(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Canceled %s order %d\n", sym, oid)
		return nil
	},
}

// describe adds a retry hint to trading errors.
func describe(err error) error {
	switch trading.KindOf(err) {
	case trading.KindMarketDataUnavailable:
		return fmt.Errorf("%w (nothing was sent; safe to retry)", err)
	case trading.KindConnectionFailed:
		return fmt.Errorf("%w (order outcome unknown; check open orders before retrying)", err)
	}
	return err
}

func init() {
	rootCmd.AddCommand(newOrderCmd("buy"), newOrderCmd("sell"), checkCmd, cancelCmd)
	checkCmd.AddCommand(newCheckCmd("buy"), newCheckCmd("sell"))
}
