package trading

import (
	"fmt"

	"github.com/rustyeddy/hltrader/market"
	"github.com/rustyeddy/hltrader/risk"
	"github.com/shopspring/decimal"
)

// IntentRequest is the loosely typed form of a trade intent as it arrives
// from the command line or over HTTP.
type IntentRequest struct {
	Symbol      string              `json:"symbol"`
	Side        string              `json:"side"`
	Size        decimal.Decimal     `json:"size"`
	LimitPrice  decimal.NullDecimal `json:"limit_price"`
	Leverage    uint32              `json:"leverage,omitempty"`
	ReduceOnly  bool                `json:"reduce_only,omitempty"`
	TimeInForce string              `json:"tif,omitempty"`
	Slippage    decimal.NullDecimal `json:"slippage"`
	TickSize    decimal.NullDecimal `json:"tick_size"`
}

// Intent parses r. A slippage above maxSlippage is refused here so no
// caller can widen the protective price past the configured bound; a zero
// maxSlippage disables that check.
func (r IntentRequest) Intent(maxSlippage decimal.Decimal) (risk.TradeIntent, error) {
	invalid := func(format string, args ...any) error {
		reason := fmt.Sprintf(format, args...)
		return &Error{Kind: KindInvalidIntent, Reason: reason, Err: fmt.Errorf("%w: %s", risk.ErrInvalidIntent, reason)}
	}

	sym, err := market.ParseSymbol(r.Symbol)
	if err != nil {
		return risk.TradeIntent{}, invalid("%v", err)
	}
	side, err := market.ParseSide(r.Side)
	if err != nil {
		return risk.TradeIntent{}, invalid("%v", err)
	}
	tif, err := market.ParseTimeInForce(r.TimeInForce)
	if err != nil {
		return risk.TradeIntent{}, invalid("%v", err)
	}
	if r.Slippage.Valid && maxSlippage.IsPositive() && r.Slippage.Decimal.GreaterThan(maxSlippage) {
		return risk.TradeIntent{}, invalid("slippage %s exceeds maximum %s", r.Slippage.Decimal, maxSlippage)
	}

	in := risk.TradeIntent{
		Symbol:      sym,
		Side:        side,
		Size:        r.Size,
		LimitPrice:  r.LimitPrice,
		Leverage:    r.Leverage,
		ReduceOnly:  r.ReduceOnly,
		TimeInForce: tif,
		MaxSlippage: r.Slippage,
		TickSize:    r.TickSize,
	}
	if err := in.Validate(); err != nil {
		return risk.TradeIntent{}, &Error{Kind: KindInvalidIntent, Symbol: sym, Reason: err.Error(), Err: err}
	}
	return in, nil
}
