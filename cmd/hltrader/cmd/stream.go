package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rustyeddy/hltrader/broker/hyperliquid"
	"github.com/rustyeddy/hltrader/market"
	"github.com/spf13/cobra"
)

var streamDuration time.Duration

var streamCmd = &cobra.Command{
	Use:   "stream <symbol>",
	Short: "Print live trades for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sym, err := market.ParseSymbol(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if streamDuration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, streamDuration)
			defer cancel()
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Streaming %s trades from %s (Ctrl-C to stop)\n", sym, cfg.WSURL())
		stats, err := hyperliquid.NewStreamer(cfg.WSURL()).Trades(ctx, sym, func(t market.Trade) {
			fmt.Fprintf(out, "%s  %-4s  %s @ %s  tid=%d\n",
				t.Time.Local().Format("15:04:05.000"), t.Side, t.Size, t.Price, t.TID)
		})
		fmt.Fprintf(out, "\n%d messages, %d trades in %s\n",
			stats.Messages, stats.Trades, stats.Ended.Sub(stats.Started).Round(time.Millisecond))
		return err
	},
}

func init() {
	streamCmd.Flags().DurationVarP(&streamDuration, "duration", "d", 0, "stop after this long (0 runs until interrupted)")
	rootCmd.AddCommand(streamCmd)
}
