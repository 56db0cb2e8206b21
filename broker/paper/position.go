package paper

import (
	"github.com/rustyeddy/hltrader/broker"
	"github.com/rustyeddy/hltrader/market"
	"github.com/shopspring/decimal"
)

// position is a signed net position: positive is long.
type position struct {
	size     decimal.Decimal
	entry    decimal.Decimal
	leverage uint32
	realized decimal.Decimal
}

func signed(side market.Side, size decimal.Decimal) decimal.Decimal {
	if side == market.Sell {
		return size.Neg()
	}
	return size
}

// fillLocked applies a fill at px to the position book.
func (e *Engine) fillLocked(req broker.OrderRequest, px decimal.Decimal) {
	p := e.positions[req.Symbol]
	if p == nil {
		p = &position{}
		e.positions[req.Symbol] = p
	}
	if req.Leverage > 0 {
		p.leverage = req.Leverage
	}

	delta := signed(req.Side, req.Size)
	switch {
	case p.size.IsZero() || p.size.Sign() == delta.Sign():
		// Opening or adding: weighted average entry.
		total := p.size.Add(delta)
		p.entry = p.entry.Mul(p.size.Abs()).Add(px.Mul(delta.Abs())).Div(total.Abs())
		p.size = total

	default:
		// Reducing, closing or flipping.
		closing := decimal.Min(p.size.Abs(), delta.Abs())
		pnl := px.Sub(p.entry).Mul(closing)
		if p.size.IsNegative() {
			pnl = pnl.Neg()
		}
		p.realized = p.realized.Add(pnl)
		e.cash = e.cash.Add(pnl)

		p.size = p.size.Add(delta)
		if p.size.IsZero() {
			p.entry = decimal.Zero
		} else if p.size.Sign() == delta.Sign() {
			p.entry = px
		}
	}
}

func (e *Engine) unrealizedLocked(sym market.Symbol, p *position) decimal.Decimal {
	s, err := e.marks.Get(sym)
	if err != nil || p.size.IsZero() {
		return decimal.Zero
	}
	return s.MarkPrice.Sub(p.entry).Mul(p.size)
}

func (e *Engine) marginUsedLocked() decimal.Decimal {
	used := decimal.Zero
	for sym, p := range e.positions {
		if p.size.IsZero() {
			continue
		}
		lev := p.leverage
		if lev == 0 {
			lev = 1
		}
		mark := p.entry
		if s, err := e.marks.Get(sym); err == nil {
			mark = s.MarkPrice
		}
		used = used.Add(p.size.Abs().Mul(mark).Div(decimal.NewFromInt(int64(lev))))
	}
	return used
}

func (e *Engine) freeCashLocked() decimal.Decimal {
	equity := e.cash
	for sym, p := range e.positions {
		equity = equity.Add(e.unrealizedLocked(sym, p))
	}
	return equity.Sub(e.marginUsedLocked())
}
