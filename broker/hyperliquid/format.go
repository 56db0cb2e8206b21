package hyperliquid

import (
	"github.com/rustyeddy/hltrader/market"
	"github.com/shopspring/decimal"
)

const (
	perpMaxDecimals = 6
	spotMaxDecimals = 8
	sigFigs         = 5
)

// formatPrice rounds px to what the exchange accepts: at most five
// significant figures and at most (6 or 8) - szDecimals decimals.
// Integer prices are always valid.
func formatPrice(px decimal.Decimal, szDecimals int32, spot bool, side market.Side) string {
	return wire(roundPrice(px, szDecimals, spot, side))
}

// roundPrice rounds buys down and sells up so the wire price is never
// worse for the trader than px.
func roundPrice(px decimal.Decimal, szDecimals int32, spot bool, side market.Side) decimal.Decimal {
	if px.Equal(px.Truncate(0)) {
		return px
	}
	maxDec := int32(perpMaxDecimals)
	if spot {
		maxDec = spotMaxDecimals
	}
	maxDec -= szDecimals

	// Power of ten of the leading digit.
	lead := int32(px.NumDigits()) + px.Exponent() - 1
	places := sigFigs - 1 - lead
	if places > maxDec {
		places = maxDec
	}
	if places < 0 {
		places = 0
	}
	if side == market.Buy {
		return px.RoundFloor(places)
	}
	return px.RoundCeil(places)
}

// formatSize truncates toward zero so a rounded order is never larger
// than the one that was approved.
func formatSize(sz decimal.Decimal, szDecimals int32) string {
	return wire(roundSize(sz, szDecimals))
}

func roundSize(sz decimal.Decimal, szDecimals int32) decimal.Decimal {
	return sz.Truncate(szDecimals)
}

// wire renders d without trailing zeros, the form signatures are computed
// over.
func wire(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	return d.String()
}
