// Package order turns an approved trade intent into a concrete order request.
package order

import (
	"github.com/rustyeddy/hltrader/broker"
	"github.com/rustyeddy/hltrader/market"
	"github.com/rustyeddy/hltrader/pkg/id"
	"github.com/rustyeddy/hltrader/risk"
	"github.com/shopspring/decimal"
)

// DefaultSlippage bounds market orders that carry no slippage of their own.
var DefaultSlippage = decimal.RequireFromString("0.05")

// Builder is stateless apart from its configuration and safe for
// concurrent use.
type Builder struct {
	// DefaultSlippage applies to market orders without an explicit bound.
	// Zero leaves such orders unbounded.
	DefaultSlippage decimal.Decimal

	// NewClientID generates client order ids. Defaults to id.NewClientOrderID.
	NewClientID func() string
}

func NewBuilder(defaultSlippage decimal.Decimal) *Builder {
	return &Builder{DefaultSlippage: defaultSlippage, NewClientID: id.NewClientOrderID}
}

// Build produces the order for an approval returned by risk.Policy.Evaluate.
// Passing any other Approved is a programming error and panics.
func (b *Builder) Build(a risk.Approved) broker.OrderRequest {
	if !a.Valid() {
		panic("order: Build called without a risk approval")
	}

	in := a.Intent()
	snap := a.Snapshot()

	tif := in.TimeInForce
	if tif == "" {
		tif = market.GTC
	}

	req := broker.OrderRequest{
		Symbol:            in.Symbol,
		Side:              in.Side,
		Size:              in.Size,
		ReduceOnly:        in.ReduceOnly,
		TimeInForce:       tif,
		Leverage:          in.EffectiveLeverage(),
		LeverageRequested: in.Leverage > 0 && !snap.IsSpot,
		IsSpot:            snap.IsSpot,
		SizeDecimals:      snap.SizeDecimals,
		ClientID:          b.clientID(),
	}

	if in.LimitPrice.Valid {
		req.Type = broker.Limit
		px := in.LimitPrice.Decimal
		if in.TickSize.Valid {
			px = SnapToTick(px, in.TickSize.Decimal, in.Side)
		}
		req.LimitPrice = decimal.NewNullDecimal(px)
		return req
	}

	req.Type = broker.Market
	slip := b.DefaultSlippage
	if in.MaxSlippage.Valid {
		slip = in.MaxSlippage.Decimal
	}
	if slip.IsPositive() {
		px := ProtectivePrice(snap.MarkPrice, slip, in.Side)
		if in.TickSize.Valid {
			px = SnapToTick(px, in.TickSize.Decimal, in.Side)
		}
		req.ProtectivePrice = decimal.NewNullDecimal(px)
	}
	return req
}

func (b *Builder) clientID() string {
	if b.NewClientID == nil {
		return id.NewClientOrderID()
	}
	return b.NewClientID()
}

// ProtectivePrice is the worst acceptable fill for a market order:
// mark*(1+s) for buys and mark*(1-s) for sells.
func ProtectivePrice(mark, slippage decimal.Decimal, side market.Side) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if side == market.Buy {
		return mark.Mul(one.Add(slippage))
	}
	return mark.Mul(one.Sub(slippage))
}

// SnapToTick moves px onto the tick grid, down for buys and up for sells,
// so the result is never worse for the trader than px. A price that would
// snap to zero gets one tick.
func SnapToTick(px, tick decimal.Decimal, side market.Side) decimal.Decimal {
	if !tick.IsPositive() {
		return px
	}
	n := px.Div(tick)
	if side == market.Buy {
		n = n.Floor()
	} else {
		n = n.Ceil()
	}
	out := n.Mul(tick)
	if !out.IsPositive() {
		return tick
	}
	return out
}
