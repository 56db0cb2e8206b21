// Package trading gates every order through the risk policy before it
// reaches the exchange.
package trading

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rustyeddy/hltrader/broker"
	"github.com/rustyeddy/hltrader/internal/logger"
	"github.com/rustyeddy/hltrader/internal/metrics"
	"github.com/rustyeddy/hltrader/journal"
	"github.com/rustyeddy/hltrader/market"
	"github.com/rustyeddy/hltrader/order"
	"github.com/rustyeddy/hltrader/pkg/id"
	"github.com/rustyeddy/hltrader/risk"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Service is safe for concurrent use. Each Submit is independent and no
// lock is held across exchange calls.
type Service struct {
	exchange broker.Exchange
	policy   *risk.Policy
	builder  *order.Builder

	log     *logrus.Entry
	metrics *metrics.Metrics
	journal journal.Journal
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(l *logrus.Entry) Option { return func(s *Service) { s.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithJournal(j journal.Journal) Option { return func(s *Service) { s.journal = j } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(ex broker.Exchange, policy *risk.Policy, builder *order.Builder, opts ...Option) *Service {
	s := &Service{
		exchange: ex,
		policy:   policy,
		builder:  builder,
		journal:  journal.Nop{},
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = logger.WithComponent("trading")
	}
	if s.builder == nil {
		s.builder = order.NewBuilder(order.DefaultSlippage)
	}
	return s
}

func (s *Service) Policy() *risk.Policy { return s.policy }

// submission carries one Submit call through its lifecycle.
type submission struct {
	id       string
	at       time.Time
	intent   risk.TradeIntent
	life     *lifecycle
	req      *broker.OrderRequest
	notional decimal.NullDecimal
	ack      broker.OrderAck
}

// Submit validates the intent, evaluates it against the policy and, only
// on approval, places exactly one order. It never retries.
func (s *Service) Submit(ctx context.Context, intent risk.TradeIntent) (broker.OrderAck, error) {
	sub := &submission{id: id.New(), at: s.now(), intent: intent, life: newLifecycle()}
	sub.life.advance(StateValidating)

	decision, te := s.evaluate(ctx, intent)
	if te != nil {
		if te.Kind == KindInvalidIntent {
			return broker.OrderAck{}, s.finish(sub, StateInvalid, te)
		}
		return broker.OrderAck{}, s.finish(sub, StateMarketDataUnavailable, te)
	}

	var approved risk.Approved
	switch d := decision.(type) {
	case risk.Rejected:
		s.metrics.RiskRejection(intent.Symbol.String(), d.Violation.Code())
		return broker.OrderAck{}, s.finish(sub, StateRejected, &Error{
			Kind:      KindRiskViolation,
			Symbol:    intent.Symbol,
			Violation: d.Violation,
		})
	case risk.Approved:
		approved = d
	}

	sub.notional = decimal.NewNullDecimal(approved.Notional())
	sub.life.advance(StateBuilding)
	req := s.builder.Build(approved)
	sub.req = &req

	sub.life.advance(StateSubmitting)
	// The order is in flight once sent; the caller going away must not
	// tear down the request and leave its outcome unknown.
	start := time.Now()
	ack, err := s.exchange.PlaceOrder(context.WithoutCancel(ctx), req)
	s.metrics.ExchangeLatency("order", time.Since(start))
	if err != nil {
		te := exchangeError(intent.Symbol, err)
		var state State
		switch te.Kind {
		case KindExchangeRejected:
			state = StateExchangeRejected
		case KindConnectionFailed:
			state = StateConnectionFailed
		default:
			state = StateRequestFailed
		}
		return broker.OrderAck{}, s.finish(sub, state, te)
	}

	if ack.ClientID == "" {
		ack.ClientID = req.ClientID
	}
	sub.ack = ack
	return ack, s.finish(sub, StateAcked, nil)
}

// Evaluate runs validation and the risk checks against a fresh snapshot
// without placing anything.
func (s *Service) Evaluate(ctx context.Context, intent risk.TradeIntent) (risk.Decision, error) {
	decision, te := s.evaluate(ctx, intent)
	if te != nil {
		return nil, te
	}
	if r, ok := decision.(risk.Rejected); ok {
		s.log.WithFields(logrus.Fields{
			"symbol": intent.Symbol.String(),
			"reason": r.Violation.Code(),
		}).Debug("dry run rejected")
	}
	return decision, nil
}

func (s *Service) evaluate(ctx context.Context, intent risk.TradeIntent) (risk.Decision, *Error) {
	if err := intent.Validate(); err != nil {
		return nil, &Error{Kind: KindInvalidIntent, Symbol: intent.Symbol, Reason: err.Error(), Err: err}
	}

	// A disabled or unknown symbol fails the first check whatever the
	// market says, so skip the fetch.
	if !s.policy.Enabled(intent.Symbol) {
		return s.policy.Evaluate(intent, market.Snapshot{Symbol: intent.Symbol}), nil
	}

	start := time.Now()
	snap, err := s.exchange.Snapshot(ctx, intent.Symbol)
	s.metrics.ExchangeLatency("snapshot", time.Since(start))
	if err != nil {
		return nil, &Error{Kind: KindMarketDataUnavailable, Symbol: intent.Symbol, Reason: err.Error(), Err: err}
	}
	if !snap.MarkPrice.IsPositive() {
		return nil, &Error{
			Kind:   KindMarketDataUnavailable,
			Symbol: intent.Symbol,
			Reason: "no positive mark price for " + intent.Symbol.String(),
		}
	}
	// Venues may echo a differently spelled symbol; the evaluation is for
	// the one the caller asked about.
	snap.Symbol = intent.Symbol

	return s.policy.Evaluate(intent, snap), nil
}

// Cancel cancels a resting order. No risk evaluation applies.
func (s *Service) Cancel(ctx context.Context, sym market.Symbol, oid uint64) error {
	start := time.Now()
	err := s.exchange.CancelOrder(ctx, sym, oid)
	s.metrics.ExchangeLatency("cancel", time.Since(start))

	fields := logrus.Fields{"symbol": sym.String(), "oid": oid}
	if err == nil {
		s.log.WithFields(fields).Info("order canceled")
		return nil
	}

	var te *Error
	if errors.Is(err, broker.ErrOrderNotFound) {
		te = &Error{Kind: KindOrderNotFound, Symbol: sym, Reason: formatOID(sym, oid), Err: err}
	} else {
		te = exchangeError(sym, err)
	}
	s.log.WithFields(fields).WithError(te).Warn("cancel failed")
	return te
}

func exchangeError(sym market.Symbol, err error) *Error {
	var rej *broker.RejectedError
	if errors.As(err, &rej) {
		return &Error{
			Kind:                KindExchangeRejected,
			Symbol:              sym,
			Reason:              rej.Reason,
			InsufficientBalance: rej.InsufficientBalance,
			Err:                 err,
		}
	}
	// Only a transport failure leaves the outcome unknown. Anything else,
	// such as a missing wallet key, fails the same way on a retry.
	if errors.Is(err, broker.ErrConnection) {
		return &Error{Kind: KindConnectionFailed, Symbol: sym, Err: err}
	}
	return &Error{Kind: KindRequestFailed, Symbol: sym, Err: err}
}

func formatOID(sym market.Symbol, oid uint64) string {
	return sym.String() + " #" + strconv.FormatUint(oid, 10)
}

// finish moves sub to its terminal state and reports it everywhere.
// It returns te unchanged (nil on success) so callers can return it.
func (s *Service) finish(sub *submission, state State, te *Error) error {
	sub.life.advance(state)

	in := sub.intent
	fields := logrus.Fields{
		"id":     sub.id,
		"symbol": in.Symbol.String(),
		"side":   in.Side.String(),
		"size":   in.Size.String(),
		"state":  string(state),
	}
	if sub.notional.Valid {
		fields["notional"] = sub.notional.Decimal.StringFixed(2)
	}
	if sub.req != nil {
		fields["client_id"] = sub.req.ClientID
		fields["type"] = string(sub.req.Type)
	}

	rec := journal.Submission{
		ID:          sub.id,
		Time:        sub.at,
		Symbol:      in.Symbol.String(),
		Side:        in.Side.String(),
		Size:        in.Size,
		Leverage:    in.EffectiveLeverage(),
		ReduceOnly:  in.ReduceOnly,
		TimeInForce: string(in.TimeInForce),
		LimitPrice:  in.LimitPrice,
		Notional:    sub.notional,
		State:       string(state),
	}
	if sub.req != nil {
		rec.OrderType = string(sub.req.Type)
		rec.LimitPrice = sub.req.LimitPrice
		rec.ProtectivePrice = sub.req.ProtectivePrice
		rec.TimeInForce = string(sub.req.TimeInForce)
		rec.ClientID = sub.req.ClientID
	}

	entry := s.log.WithFields(fields)
	if te != nil {
		rec.Reason = te.Error()
		entry = entry.WithField("reason", rec.Reason)
		switch state {
		case StateRejected, StateInvalid:
			entry.Warn("order refused")
		default:
			entry.Error("order failed")
		}
	} else {
		rec.ExchangeOrderID = sub.ack.OrderID
		entry.WithFields(logrus.Fields{
			"oid":    sub.ack.OrderID,
			"status": string(sub.ack.Status),
		}).Info("order accepted")
	}

	s.metrics.Submission(in.Symbol.String(), string(state))
	if err := s.journal.RecordSubmission(rec); err != nil {
		s.log.WithError(err).WithField("id", sub.id).Error("journal write failed")
	}

	if te == nil {
		return nil
	}
	return te
}
