// Package paper is an in-memory exchange for dry runs and tests. It fills
// against the current mark with no order book depth.
package paper

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rustyeddy/hltrader/broker"
	"github.com/rustyeddy/hltrader/market"
	"github.com/shopspring/decimal"
)

type Engine struct {
	mu        sync.Mutex
	marks     *market.MarkStore
	resting   map[uint64]*restingOrder
	positions map[market.Symbol]*position
	cash      decimal.Decimal
	nextOID   uint64
	now       func() time.Time
}

type restingOrder struct {
	oid  uint64
	req  broker.OrderRequest
	time time.Time
}

func NewEngine(startingCash decimal.Decimal) *Engine {
	return &Engine{
		marks:     market.NewMarkStore(),
		resting:   make(map[uint64]*restingOrder),
		positions: make(map[market.Symbol]*position),
		cash:      startingCash,
		nextOID:   1,
		now:       time.Now,
	}
}

// UpdateMark sets the mark for a symbol and fills any resting orders the
// new price crosses.
func (e *Engine) UpdateMark(s market.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s.Time.IsZero() {
		s.Time = e.now()
	}
	e.marks.Set(s)

	for oid, o := range e.resting {
		if o.req.Symbol != s.Symbol {
			continue
		}
		if marketable(o.req.Side, o.req.LimitPrice.Decimal, s.MarkPrice) {
			e.fillLocked(o.req, o.req.LimitPrice.Decimal)
			delete(e.resting, oid)
		}
	}
}

func (e *Engine) Snapshot(ctx context.Context, sym market.Symbol) (market.Snapshot, error) {
	s, err := e.marks.Get(sym)
	if err != nil {
		return market.Snapshot{}, fmt.Errorf("%w: %s", broker.ErrUnknownSymbol, sym)
	}
	return s, nil
}

func (e *Engine) PlaceOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderAck, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, err := e.marks.Get(req.Symbol)
	if err != nil {
		return broker.OrderAck{}, broker.Reject("Asset " + req.Symbol.String() + " is not tradable")
	}
	mark := snap.MarkPrice

	if req.ReduceOnly {
		pos := e.positions[req.Symbol]
		if pos == nil || pos.size.IsZero() || pos.size.IsPositive() == req.Side.IsBuy() {
			return broker.OrderAck{}, broker.Reject("Reduce only order would increase position.")
		}
	}

	oid := e.nextOID
	e.nextOID++

	ack := broker.OrderAck{
		Symbol:   req.Symbol,
		Side:     req.Side,
		Size:     req.Size,
		OrderID:  oid,
		ClientID: req.ClientID,
	}

	switch req.Type {
	case broker.Market:
		if req.ProtectivePrice.Valid && !marketable(req.Side, req.ProtectivePrice.Decimal, mark) {
			return broker.OrderAck{}, broker.Reject("Order could not immediately match against any resting orders.")
		}
		if err := e.checkFundsLocked(req, mark); err != nil {
			return broker.OrderAck{}, err
		}
		e.fillLocked(req, mark)
		ack.Status = broker.StatusFilled
		ack.FilledSize = req.Size
		ack.AvgPrice = decimal.NewNullDecimal(mark)
		return ack, nil

	case broker.Limit:
		limit := req.LimitPrice.Decimal
		cross := marketable(req.Side, limit, mark)
		switch {
		case cross && req.TimeInForce == market.ALO:
			return broker.OrderAck{}, broker.Reject("Post only order would have immediately matched, bbo was " + mark.String())
		case !cross && req.TimeInForce == market.IOC:
			return broker.OrderAck{}, broker.Reject("Order could not immediately match against any resting orders.")
		}
		if err := e.checkFundsLocked(req, limit); err != nil {
			return broker.OrderAck{}, err
		}
		if cross {
			// A marketable limit takes the mark, which is at least as good.
			e.fillLocked(req, mark)
			ack.Status = broker.StatusFilled
			ack.FilledSize = req.Size
			ack.AvgPrice = decimal.NewNullDecimal(mark)
			return ack, nil
		}
		e.resting[oid] = &restingOrder{oid: oid, req: req, time: e.now()}
		ack.Status = broker.StatusResting
		ack.FilledSize = decimal.Zero
		return ack, nil
	}

	return broker.OrderAck{}, broker.Reject(fmt.Sprintf("unsupported order type %q", req.Type))
}

func (e *Engine) CancelOrder(ctx context.Context, sym market.Symbol, oid uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.resting[oid]
	if !ok || o.req.Symbol != sym {
		return fmt.Errorf("cancel %s #%d: %w", sym, oid, broker.ErrOrderNotFound)
	}
	delete(e.resting, oid)
	return nil
}

// checkFundsLocked refuses orders whose initial margin exceeds free cash.
// Reduce-only orders never need margin.
func (e *Engine) checkFundsLocked(req broker.OrderRequest, px decimal.Decimal) error {
	if req.ReduceOnly {
		return nil
	}
	lev := decimal.NewFromInt(int64(req.Leverage))
	if lev.IsZero() {
		lev = decimal.NewFromInt(1)
	}
	need := req.Size.Mul(px).Div(lev)
	if need.GreaterThan(e.freeCashLocked()) {
		return broker.Reject("Insufficient margin to place order.")
	}
	return nil
}

func marketable(side market.Side, limit, mark decimal.Decimal) bool {
	if side == market.Buy {
		return limit.GreaterThanOrEqual(mark)
	}
	return limit.LessThanOrEqual(mark)
}

func (e *Engine) sortedResting() []*restingOrder {
	out := make([]*restingOrder, 0, len(e.resting))
	for _, o := range e.resting {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].oid < out[j].oid })
	return out
}
