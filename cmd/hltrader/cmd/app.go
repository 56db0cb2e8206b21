package cmd

import (
	"context"
	"fmt"

	"github.com/rustyeddy/hltrader/broker"
	"github.com/rustyeddy/hltrader/broker/hyperliquid"
	"github.com/rustyeddy/hltrader/broker/paper"
	"github.com/rustyeddy/hltrader/internal/logger"
	"github.com/rustyeddy/hltrader/internal/metrics"
	"github.com/rustyeddy/hltrader/journal"
	"github.com/rustyeddy/hltrader/market"
	"github.com/rustyeddy/hltrader/order"
	"github.com/rustyeddy/hltrader/trading"
	"github.com/shopspring/decimal"
)

// newVenue returns the live client, or a paper engine seeded with live
// marks when paper mode is on.
func newVenue(ctx context.Context) (broker.Venue, error) {
	client, err := hyperliquid.New(cfg.Hyperliquid())
	if err != nil {
		return nil, fmt.Errorf("exchange client: %w", err)
	}
	if !cfg.Exchange.Paper {
		return client, nil
	}

	engine := paper.NewEngine(decimal.NewFromFloat(cfg.Exchange.PaperBalance))
	if err := seedPaper(ctx, engine, client); err != nil {
		return nil, err
	}
	logger.WithComponent("paper").Info("paper trading enabled")
	return engine, nil
}

func seedPaper(ctx context.Context, engine *paper.Engine, info broker.Info) error {
	ms, err := info.Markets(ctx)
	if err != nil {
		return fmt.Errorf("seed paper marks: %w", err)
	}
	for _, m := range ms {
		sym, err := market.ParseSymbol(m.Symbol)
		if err != nil {
			continue
		}
		engine.UpdateMark(market.Snapshot{
			Symbol:       sym,
			MarkPrice:    m.MarkPrice,
			SizeDecimals: m.SizeDecimals,
			MaxLeverage:  m.MaxLeverage,
		})
	}
	return nil
}

func openJournal() (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.File)
	default:
		return journal.Nop{}, nil
	}
}

// newService wires the trading service. The caller closes the journal.
func newService(ex broker.Exchange, m *metrics.Metrics) (*trading.Service, journal.Journal, error) {
	policy, err := cfg.RiskPolicy()
	if err != nil {
		return nil, nil, err
	}
	j, err := openJournal()
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}
	svc := trading.NewService(ex, policy, order.NewBuilder(cfg.DefaultSlippage()),
		trading.WithLogger(logger.WithComponent("trading")),
		trading.WithMetrics(m),
		trading.WithJournal(j),
	)
	return svc, j, nil
}
