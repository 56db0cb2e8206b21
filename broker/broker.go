package broker

import (
	"context"

	"github.com/rustyeddy/hltrader/market"
)

// Exchange is everything the trading service needs from a venue.
// PlaceOrder and CancelOrder are issued at most once per call; they must
// not retry internally.
type Exchange interface {
	Snapshot(ctx context.Context, sym market.Symbol) (market.Snapshot, error)
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderAck, error)
	CancelOrder(ctx context.Context, sym market.Symbol, oid uint64) error
}

// Info is the read-only account and market surface used by the CLI and
// HTTP server.
type Info interface {
	Markets(ctx context.Context) ([]MarketInfo, error)
	Balances(ctx context.Context) (Balances, error)
	SpotMarkets(ctx context.Context) (SpotMarkets, error)
	OpenOrders(ctx context.Context) ([]OpenOrder, error)
}

// Venue is an Exchange that also answers Info queries.
type Venue interface {
	Exchange
	Info
}
