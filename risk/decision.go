package risk

import (
	"fmt"

	"github.com/rustyeddy/hltrader/market"
	"github.com/shopspring/decimal"
)

// Decision is either Approved or Rejected. Consume it with a type switch.
type Decision interface {
	isDecision()
}

// Approved binds the exact intent and snapshot that passed evaluation.
// Only Policy.Evaluate produces a usable Approved.
type Approved struct {
	intent   TradeIntent
	snap     market.Snapshot
	notional decimal.Decimal
	ok       bool
}

func (Approved) isDecision() {}

func (a Approved) Intent() TradeIntent { return a.intent }

func (a Approved) Snapshot() market.Snapshot { return a.snap }

func (a Approved) Notional() decimal.Decimal { return a.notional }

// Valid is false for a zero Approved that did not come from Evaluate.
func (a Approved) Valid() bool { return a.ok }

type Rejected struct {
	Violation Violation
}

func (Rejected) isDecision() {}

func (r Rejected) String() string { return "rejected: " + r.Violation.String() }

// Violation names the first limit an intent broke, with the numbers.
type Violation interface {
	Code() string
	String() string
	isViolation()
}

type SymbolDisabled struct {
	Symbol market.Symbol
}

type LeverageExceeded struct {
	Symbol    market.Symbol
	Requested uint32
	Max       uint32
}

type OrderNotionalExceeded struct {
	Notional decimal.Decimal
	Max      decimal.Decimal
}

type SymbolNotionalExceeded struct {
	Symbol   market.Symbol
	Notional decimal.Decimal
	Max      decimal.Decimal
}

func (SymbolDisabled) isViolation() {}

func (LeverageExceeded) isViolation() {}

func (OrderNotionalExceeded) isViolation() {}

func (SymbolNotionalExceeded) isViolation() {}

func (SymbolDisabled) Code() string { return "SYMBOL_DISABLED" }

func (LeverageExceeded) Code() string { return "LEVERAGE_EXCEEDED" }

func (OrderNotionalExceeded) Code() string { return "ORDER_NOTIONAL_EXCEEDED" }

func (SymbolNotionalExceeded) Code() string { return "SYMBOL_NOTIONAL_EXCEEDED" }

func (v SymbolDisabled) String() string {
	return fmt.Sprintf("trading disabled for symbol %s", v.Symbol)
}

func (v LeverageExceeded) String() string {
	return fmt.Sprintf("requested leverage %dx exceeds maximum %dx for %s", v.Requested, v.Max, v.Symbol)
}

func (v OrderNotionalExceeded) String() string {
	return fmt.Sprintf("order notional $%s exceeds per-order limit $%s", v.Notional.StringFixed(2), v.Max.StringFixed(2))
}

func (v SymbolNotionalExceeded) String() string {
	return fmt.Sprintf("order notional $%s exceeds symbol limit $%s for %s", v.Notional.StringFixed(2), v.Max.StringFixed(2), v.Symbol)
}
