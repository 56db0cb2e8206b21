package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rustyeddy/hltrader/internal/httpapi"
	"github.com/rustyeddy/hltrader/internal/metrics"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the trading API:

  GET    /health  /status  /balances  /spot  /orders  /metrics
  POST   /orders          submit a risk-checked order
  POST   /orders/check    evaluate without placing
  DELETE /orders/:symbol/:oid`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		v, err := newVenue(ctx)
		if err != nil {
			return err
		}
		m := metrics.New()
		svc, j, err := newService(v, m)
		if err != nil {
			return err
		}
		defer j.Close()

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv, err := httpapi.NewServer(httpapi.Config{
			Addr:        addr,
			Trader:      svc,
			Info:        v,
			Metrics:     m,
			MaxSlippage: cfg.MaxSlippage(),
			Network:     cfg.Exchange.Network,
		})
		if err != nil {
			return err
		}
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
