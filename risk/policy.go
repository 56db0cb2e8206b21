package risk

import (
	"fmt"
	"sort"

	"github.com/rustyeddy/hltrader/market"
	"github.com/shopspring/decimal"
)

// SymbolLimits are the per-symbol trading limits.
type SymbolLimits struct {
	MaxLeverage uint32
	MaxNotional decimal.Decimal
	Enabled     bool
}

// GlobalLimits apply to every symbol.
type GlobalLimits struct {
	MaxNotionalPerOrder  decimal.Decimal
	MaxNotionalPerSymbol decimal.Decimal
}

// Policy is the immutable risk configuration. Build it once with NewPolicy
// and share the pointer freely; nothing mutates it afterwards.
type Policy struct {
	global  GlobalLimits
	symbols map[market.Symbol]SymbolLimits
}

// NewPolicy validates and copies the limits into an immutable Policy.
func NewPolicy(global GlobalLimits, symbols map[market.Symbol]SymbolLimits) (*Policy, error) {
	if !global.MaxNotionalPerOrder.IsPositive() {
		return nil, fmt.Errorf("max notional per order must be positive, got %s", global.MaxNotionalPerOrder)
	}
	if !global.MaxNotionalPerSymbol.IsPositive() {
		return nil, fmt.Errorf("max notional per symbol must be positive, got %s", global.MaxNotionalPerSymbol)
	}

	cp := make(map[market.Symbol]SymbolLimits, len(symbols))
	for sym, l := range symbols {
		if sym.IsZero() {
			return nil, fmt.Errorf("symbol limits: empty symbol")
		}
		if l.MaxLeverage == 0 {
			return nil, fmt.Errorf("%s: max leverage must be positive", sym)
		}
		if !l.MaxNotional.IsPositive() {
			return nil, fmt.Errorf("%s: max notional must be positive, got %s", sym, l.MaxNotional)
		}
		cp[sym] = l
	}

	return &Policy{global: global, symbols: cp}, nil
}

func (p *Policy) Global() GlobalLimits { return p.global }

// Lookup returns the limits for sym and whether it is configured at all.
func (p *Policy) Lookup(sym market.Symbol) (SymbolLimits, bool) {
	l, ok := p.symbols[sym]
	return l, ok
}

// Enabled reports whether sym is configured and enabled.
func (p *Policy) Enabled(sym market.Symbol) bool {
	l, ok := p.symbols[sym]
	return ok && l.Enabled
}

// Symbols returns the configured symbols in lexical order.
func (p *Policy) Symbols() []market.Symbol {
	out := make([]market.Symbol, 0, len(p.symbols))
	for s := range p.symbols {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// SymbolCap is the effective per-symbol notional cap: the tighter of the
// symbol's own limit and the global per-symbol limit.
func (p *Policy) SymbolCap(l SymbolLimits) decimal.Decimal {
	return decimal.Min(l.MaxNotional, p.global.MaxNotionalPerSymbol)
}
