package paper

import (
	"context"
	"sort"

	"github.com/rustyeddy/hltrader/broker"
	"github.com/shopspring/decimal"
)

func (e *Engine) Markets(ctx context.Context) ([]broker.MarketInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []broker.MarketInfo
	for _, sym := range e.marks.Symbols() {
		s, _ := e.marks.Get(sym)
		if s.IsSpot {
			continue
		}
		out = append(out, broker.MarketInfo{
			Symbol:       sym.String(),
			MarkPrice:    s.MarkPrice,
			MaxLeverage:  s.MaxLeverage,
			SizeDecimals: s.SizeDecimals,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (e *Engine) SpotMarkets(ctx context.Context) (broker.SpotMarkets, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out broker.SpotMarkets
	for _, sym := range e.marks.Symbols() {
		s, _ := e.marks.Get(sym)
		if !s.IsSpot {
			continue
		}
		out.Pairs = append(out.Pairs, broker.SpotPair{
			Name:      sym.String(),
			MarkPrice: s.MarkPrice,
			MidPrice:  s.MarkPrice,
		})
	}
	sort.Slice(out.Pairs, func(i, j int) bool { return out.Pairs[i].Name < out.Pairs[j].Name })
	return out, nil
}

func (e *Engine) Balances(ctx context.Context) (broker.Balances, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b := broker.Balances{
		AccountValue:    e.cash,
		CrossMarginUsed: e.marginUsedLocked(),
	}
	for sym, p := range e.positions {
		if p.size.IsZero() {
			continue
		}
		upnl := e.unrealizedLocked(sym, p)
		b.AccountValue = b.AccountValue.Add(upnl)
		value := p.size.Abs().Mul(p.entry)
		if m, err := e.marks.Get(sym); err == nil {
			value = p.size.Abs().Mul(m.MarkPrice)
		}
		b.Positions = append(b.Positions, broker.Position{
			Symbol:        sym.String(),
			Size:          p.size,
			EntryPrice:    p.entry,
			Leverage:      p.leverage,
			UnrealizedPnL: upnl,
			PositionValue: value,
		})
	}
	b.Withdrawable = decimal.Max(decimal.Zero, b.AccountValue.Sub(b.CrossMarginUsed))
	sort.Slice(b.Positions, func(i, j int) bool { return b.Positions[i].Symbol < b.Positions[j].Symbol })
	return b, nil
}

func (e *Engine) OpenOrders(ctx context.Context) ([]broker.OpenOrder, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []broker.OpenOrder
	for _, o := range e.sortedResting() {
		out = append(out, broker.OpenOrder{
			OrderID:   o.oid,
			Symbol:    o.req.Symbol.String(),
			Side:      o.req.Side,
			Price:     o.req.LimitPrice.Decimal,
			Size:      o.req.Size,
			OrigSize:  o.req.Size,
			Timestamp: o.time,
		})
	}
	return out, nil
}
