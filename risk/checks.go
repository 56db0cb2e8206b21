package risk

import (
	"fmt"

	"github.com/rustyeddy/hltrader/market"
)

// Evaluate runs the checks in a fixed order and stops at the first failure:
//
//  1. symbol enabled
//  2. leverage (skipped for reduce-only orders)
//  3. per-order notional
//  4. per-symbol notional (tighter of symbol and global caps)
//
// It is pure. The snapshot must be for intent.Symbol; anything else is a
// caller bug and panics.
func (p *Policy) Evaluate(intent TradeIntent, snap market.Snapshot) Decision {
	if snap.Symbol != intent.Symbol {
		panic(fmt.Sprintf("risk: snapshot for %s evaluated against intent for %s", snap.Symbol, intent.Symbol))
	}

	limits, ok := p.symbols[intent.Symbol]
	if !ok || !limits.Enabled {
		return Rejected{Violation: SymbolDisabled{Symbol: intent.Symbol}}
	}

	if !intent.ReduceOnly {
		// No leverage requested means 1x, which always passes MaxLeverage >= 1.
		if lev := intent.EffectiveLeverage(); lev > limits.MaxLeverage {
			return Rejected{Violation: LeverageExceeded{
				Symbol:    intent.Symbol,
				Requested: lev,
				Max:       limits.MaxLeverage,
			}}
		}
	}

	notional := Notional(intent, snap)
	if notional.GreaterThan(p.global.MaxNotionalPerOrder) {
		return Rejected{Violation: OrderNotionalExceeded{
			Notional: notional,
			Max:      p.global.MaxNotionalPerOrder,
		}}
	}

	if symCap := p.SymbolCap(limits); notional.GreaterThan(symCap) {
		return Rejected{Violation: SymbolNotionalExceeded{
			Symbol:   intent.Symbol,
			Notional: notional,
			Max:      symCap,
		}}
	}

	return Approved{intent: intent, snap: snap, notional: notional, ok: true}
}
