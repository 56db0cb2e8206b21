package risk

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/hltrader/market"
	"github.com/shopspring/decimal"
)

// TradeIntent is what the operator asked for. It is a plain value and is
// never persisted.
type TradeIntent struct {
	Symbol      market.Symbol
	Side        market.Side
	Size        decimal.Decimal
	LimitPrice  decimal.NullDecimal
	Leverage    uint32 // 0 = not requested
	ReduceOnly  bool
	TimeInForce market.TimeInForce

	// Optional execution hints for the order builder.
	MaxSlippage decimal.NullDecimal
	TickSize    decimal.NullDecimal
}

var ErrInvalidIntent = errors.New("invalid trade intent")

// Validate checks field domains. It does not consult any limits.
func (t TradeIntent) Validate() error {
	if t.Symbol.IsZero() {
		return fmt.Errorf("%w: symbol is required", ErrInvalidIntent)
	}
	if !t.Side.Valid() {
		return fmt.Errorf("%w: side must be buy or sell", ErrInvalidIntent)
	}
	if !t.Size.IsPositive() {
		return fmt.Errorf("%w: size must be positive, got %s", ErrInvalidIntent, t.Size)
	}
	if t.LimitPrice.Valid && !t.LimitPrice.Decimal.IsPositive() {
		return fmt.Errorf("%w: limit price must be positive, got %s", ErrInvalidIntent, t.LimitPrice.Decimal)
	}
	if t.TimeInForce != "" && !t.TimeInForce.Valid() {
		return fmt.Errorf("%w: unknown time in force %q", ErrInvalidIntent, t.TimeInForce)
	}
	if t.MaxSlippage.Valid {
		s := t.MaxSlippage.Decimal
		if !s.IsPositive() || s.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: slippage must be in (0, 1], got %s", ErrInvalidIntent, s)
		}
		// mark*(1-s) must stay positive.
		if t.Side == market.Sell && s.Equal(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: sell slippage must be below 1, got %s", ErrInvalidIntent, s)
		}
	}
	if t.TickSize.Valid && !t.TickSize.Decimal.IsPositive() {
		return fmt.Errorf("%w: tick size must be positive, got %s", ErrInvalidIntent, t.TickSize.Decimal)
	}
	return nil
}

// IsLimit reports whether the intent carries a limit price.
func (t TradeIntent) IsLimit() bool { return t.LimitPrice.Valid }

// EffectiveLeverage is the requested leverage, or 1 when none was requested.
func (t TradeIntent) EffectiveLeverage() uint32 {
	if t.Leverage == 0 {
		return 1
	}
	return t.Leverage
}
