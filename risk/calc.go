package risk

import (
	"github.com/rustyeddy/hltrader/market"
	"github.com/shopspring/decimal"
)

// EffectivePrice is the limit price when present, otherwise the mark.
func EffectivePrice(intent TradeIntent, snap market.Snapshot) decimal.Decimal {
	if intent.LimitPrice.Valid {
		return intent.LimitPrice.Decimal
	}
	return snap.MarkPrice
}

// Notional is size * effective price.
func Notional(intent TradeIntent, snap market.Snapshot) decimal.Decimal {
	return intent.Size.Mul(EffectivePrice(intent, snap))
}
