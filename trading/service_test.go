package trading

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rustyeddy/hltrader/broker"
	"github.com/rustyeddy/hltrader/internal/logger"
	"github.com/rustyeddy/hltrader/internal/metrics"
	"github.com/rustyeddy/hltrader/journal"
	"github.com/rustyeddy/hltrader/market"
	"github.com/rustyeddy/hltrader/order"
	"github.com/rustyeddy/hltrader/risk"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }

// fakeExchange records every call and answers from canned values.
type fakeExchange struct {
	mu sync.Mutex

	marks       map[string]decimal.Decimal
	snapshotErr error
	placeErr    error
	cancelErr   error
	onSnapshot  func()

	snapshots int
	placed    []broker.OrderRequest
	placeCtx  []context.Context
	cancels   []uint64
	nextOID   uint64
}

func newFakeExchange() *fakeExchange {
	return &fakeExchange{
		marks: map[string]decimal.Decimal{
			"BTC": d("60000"),
			"ETH": d("3000"),
			"SOL": d("150"),
		},
		nextOID: 1000,
	}
}

func (f *fakeExchange) Snapshot(ctx context.Context, sym market.Symbol) (market.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.snapshots++
	if f.onSnapshot != nil {
		f.onSnapshot()
	}
	if f.snapshotErr != nil {
		return market.Snapshot{}, f.snapshotErr
	}
	m, ok := f.marks[sym.String()]
	if !ok {
		return market.Snapshot{}, broker.ErrUnknownSymbol
	}
	return market.Snapshot{Symbol: sym, MarkPrice: m, SizeDecimals: 2}, nil
}

func (f *fakeExchange) PlaceOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.placed = append(f.placed, req)
	f.placeCtx = append(f.placeCtx, ctx)
	if f.placeErr != nil {
		return broker.OrderAck{}, f.placeErr
	}
	f.nextOID++
	return broker.OrderAck{
		Symbol:     req.Symbol,
		Side:       req.Side,
		Size:       req.Size,
		OrderID:    f.nextOID,
		Status:     broker.StatusFilled,
		FilledSize: req.Size,
		AvgPrice:   decimal.NewNullDecimal(f.marks[req.Symbol.String()]),
	}, nil
}

func (f *fakeExchange) CancelOrder(ctx context.Context, sym market.Symbol, oid uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cancels = append(f.cancels, oid)
	return f.cancelErr
}

func (f *fakeExchange) placeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.placed)
}

type memJournal struct {
	mu   sync.Mutex
	recs []journal.Submission
}

func (j *memJournal) RecordSubmission(s journal.Submission) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.recs = append(j.recs, s)
	return nil
}

func (j *memJournal) Close() error { return nil }

func (j *memJournal) last() journal.Submission {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.recs[len(j.recs)-1]
}

func testPolicy(t *testing.T) *risk.Policy {
	t.Helper()

	p, err := risk.NewPolicy(
		risk.GlobalLimits{MaxNotionalPerOrder: d("10000"), MaxNotionalPerSymbol: d("25000")},
		map[market.Symbol]risk.SymbolLimits{
			market.MustSymbol("BTC"):  {MaxLeverage: 10, MaxNotional: d("50000"), Enabled: true},
			market.MustSymbol("ETH"):  {MaxLeverage: 15, MaxNotional: d("30000"), Enabled: true},
			market.MustSymbol("SOL"):  {MaxLeverage: 20, MaxNotional: d("20000"), Enabled: true},
			market.MustSymbol("DOGE"): {MaxLeverage: 5, MaxNotional: d("5000"), Enabled: false},
		},
	)
	require.NoError(t, err)
	return p
}

func newTestService(t *testing.T, ex *fakeExchange, opts ...Option) (*Service, *memJournal) {
	t.Helper()

	j := &memJournal{}
	opts = append([]Option{WithLogger(logger.Discard()), WithJournal(j), WithMetrics(metrics.New())}, opts...)
	return NewService(ex, testPolicy(t), order.NewBuilder(order.DefaultSlippage), opts...), j
}

func buy(sym, size string) risk.TradeIntent {
	return risk.TradeIntent{
		Symbol:      market.MustSymbol(sym),
		Side:        market.Buy,
		Size:        d(size),
		TimeInForce: market.GTC,
	}
}

func TestSubmitLeverageViolationNeverReachesExchange(t *testing.T) {
	t.Parallel()

	ex := newFakeExchange()
	svc, j := newTestService(t, ex)

	in := buy("SOL", "0.1")
	in.Leverage = 25

	_, err := svc.Submit(context.Background(), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRiskViolation)
	assert.Equal(t, KindRiskViolation, KindOf(err))
	assert.False(t, IsRetryable(err))

	var te *Error
	require.True(t, errors.As(err, &te))
	v, ok := te.Violation.(risk.LeverageExceeded)
	require.True(t, ok, "got %T", te.Violation)
	assert.Equal(t, uint32(25), v.Requested)
	assert.Equal(t, uint32(20), v.Max)
	assert.Contains(t, err.Error(), "25x")
	assert.Contains(t, err.Error(), "20x")

	assert.Equal(t, 0, ex.placeCount())
	assert.Equal(t, string(StateRejected), j.last().State)
	assert.Contains(t, j.last().Reason, "25x")
}

func TestSubmitApprovedMarketOrder(t *testing.T) {
	t.Parallel()

	ex := newFakeExchange()
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, j := newTestService(t, ex, WithClock(func() time.Time { return fixed }))

	in := buy("BTC", "0.1")
	in.Leverage = 5

	ack, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)

	require.Equal(t, 1, ex.placeCount())
	req := ex.placed[0]
	assert.Equal(t, broker.Market, req.Type)
	assert.True(t, req.ProtectivePrice.Decimal.Equal(d("63000")), req.ProtectivePrice.Decimal.String())
	assert.Equal(t, uint32(5), req.Leverage)
	assert.True(t, req.LeverageRequested)

	assert.Equal(t, uint64(1001), ack.OrderID)
	assert.Equal(t, broker.StatusFilled, ack.Status)
	assert.Equal(t, req.ClientID, ack.ClientID)
	assert.True(t, ack.Size.Equal(d("0.1")))

	rec := j.last()
	assert.Equal(t, string(StateAcked), rec.State)
	assert.Equal(t, uint64(1001), rec.ExchangeOrderID)
	assert.Equal(t, "market", rec.OrderType)
	assert.True(t, rec.Notional.Decimal.Equal(d("6000")))
	assert.True(t, rec.Time.Equal(fixed))
}

func TestSubmitLimitOrderUsesLimitForNotional(t *testing.T) {
	t.Parallel()

	ex := newFakeExchange()
	svc, _ := newTestService(t, ex)

	// At mark this is 12000 and would fail; the limit makes it 9000.
	in := buy("BTC", "0.2")
	in.LimitPrice = nd("45000")

	_, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, 1, ex.placeCount())
	assert.Equal(t, broker.Limit, ex.placed[0].Type)
	assert.True(t, ex.placed[0].LimitPrice.Decimal.Equal(d("45000")))
}

func TestSubmitNotionalViolations(t *testing.T) {
	t.Parallel()

	ex := newFakeExchange()
	svc, _ := newTestService(t, ex)

	_, err := svc.Submit(context.Background(), buy("BTC", "0.2"))
	require.Error(t, err)
	var te *Error
	require.True(t, errors.As(err, &te))
	assert.IsType(t, risk.OrderNotionalExceeded{}, te.Violation)
	assert.Contains(t, err.Error(), "12000.00")
	assert.Contains(t, err.Error(), "10000.00")
	assert.Equal(t, 0, ex.placeCount())
}

func TestSubmitDisabledSymbolSkipsMarketData(t *testing.T) {
	t.Parallel()

	for _, sym := range []string{"DOGE", "PEPE"} {
		ex := newFakeExchange()
		svc, _ := newTestService(t, ex)

		_, err := svc.Submit(context.Background(), buy(sym, "1"))
		require.Error(t, err)

		var te *Error
		require.True(t, errors.As(err, &te))
		assert.IsType(t, risk.SymbolDisabled{}, te.Violation)
		assert.Equal(t, 0, ex.snapshots)
		assert.Equal(t, 0, ex.placeCount())
	}
}

func TestSubmitMarketDataUnavailable(t *testing.T) {
	t.Parallel()

	ex := newFakeExchange()
	ex.snapshotErr = broker.ConnectionError("info", errors.New("dial tcp: refused"))
	svc, j := newTestService(t, ex)

	_, err := svc.Submit(context.Background(), buy("ETH", "1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMarketDataUnavailable)
	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, broker.ErrConnection)
	assert.Equal(t, 0, ex.placeCount())
	assert.Equal(t, string(StateMarketDataUnavailable), j.last().State)
}

func TestSubmitZeroMarkIsUnavailable(t *testing.T) {
	t.Parallel()

	ex := newFakeExchange()
	ex.marks["ETH"] = decimal.Zero
	svc, _ := newTestService(t, ex)

	_, err := svc.Submit(context.Background(), buy("ETH", "1"))
	assert.ErrorIs(t, err, ErrMarketDataUnavailable)
	assert.Equal(t, 0, ex.placeCount())
}

func TestSubmitExchangeRejected(t *testing.T) {
	t.Parallel()

	ex := newFakeExchange()
	ex.placeErr = broker.Reject("Insufficient margin to place order. asset=4")
	svc, j := newTestService(t, ex)

	_, err := svc.Submit(context.Background(), buy("ETH", "1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExchangeRejected)
	assert.False(t, IsRetryable(err))

	var te *Error
	require.True(t, errors.As(err, &te))
	assert.True(t, te.InsufficientBalance)
	assert.Contains(t, te.Error(), "Insufficient margin")
	assert.Equal(t, 1, ex.placeCount())
	assert.Equal(t, string(StateExchangeRejected), j.last().State)
}

func TestSubmitConnectionFailedIsNotRetried(t *testing.T) {
	t.Parallel()

	ex := newFakeExchange()
	ex.placeErr = broker.ConnectionError("exchange", errors.New("i/o timeout"))
	svc, j := newTestService(t, ex)

	_, err := svc.Submit(context.Background(), buy("ETH", "1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, 1, ex.placeCount())
	assert.Equal(t, string(StateConnectionFailed), j.last().State)
}

func TestSubmitLocalFailureIsNotRetryable(t *testing.T) {
	t.Parallel()

	ex := newFakeExchange()
	ex.placeErr = errors.New("no wallet configured")
	svc, j := newTestService(t, ex)

	_, err := svc.Submit(context.Background(), buy("ETH", "1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.NotErrorIs(t, err, ErrConnectionFailed)
	assert.False(t, IsRetryable(err))
	assert.Equal(t, 1, ex.placeCount())
	assert.Equal(t, string(StateRequestFailed), j.last().State)
}

func TestSubmitInvalidIntent(t *testing.T) {
	t.Parallel()

	ex := newFakeExchange()
	svc, j := newTestService(t, ex)

	_, err := svc.Submit(context.Background(), buy("ETH", "0"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidIntent)
	assert.ErrorIs(t, err, risk.ErrInvalidIntent)
	assert.Equal(t, 0, ex.snapshots)
	assert.Equal(t, string(StateInvalid), j.last().State)
}

func TestSubmitDetachesPlaceOrderFromCallerCancel(t *testing.T) {
	t.Parallel()

	ex := newFakeExchange()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ex.onSnapshot = cancel
	svc, _ := newTestService(t, ex)

	_, err := svc.Submit(ctx, buy("ETH", "1"))
	require.NoError(t, err)
	require.Len(t, ex.placeCtx, 1)
	assert.NoError(t, ex.placeCtx[0].Err())
}

func TestEvaluateOnly(t *testing.T) {
	t.Parallel()

	ex := newFakeExchange()
	svc, j := newTestService(t, ex)

	dec, err := svc.Evaluate(context.Background(), buy("ETH", "1"))
	require.NoError(t, err)
	a, ok := dec.(risk.Approved)
	require.True(t, ok)
	assert.True(t, a.Notional().Equal(d("3000")))

	in := buy("SOL", "1")
	in.Leverage = 25
	dec, err = svc.Evaluate(context.Background(), in)
	require.NoError(t, err)
	assert.IsType(t, risk.Rejected{}, dec)

	assert.Equal(t, 0, ex.placeCount())
	assert.Empty(t, j.recs)
}

func TestEvaluateOnlyMarketDataError(t *testing.T) {
	t.Parallel()

	ex := newFakeExchange()
	ex.snapshotErr = errors.New("boom")
	svc, _ := newTestService(t, ex)

	_, err := svc.Evaluate(context.Background(), buy("ETH", "1"))
	assert.ErrorIs(t, err, ErrMarketDataUnavailable)
}

func TestCancel(t *testing.T) {
	t.Parallel()

	ex := newFakeExchange()
	svc, _ := newTestService(t, ex)

	require.NoError(t, svc.Cancel(context.Background(), market.MustSymbol("BTC"), 42))
	assert.Equal(t, []uint64{42}, ex.cancels)
	assert.Equal(t, 0, ex.snapshots)
}

func TestCancelErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		want  error
		retry bool
	}{
		{"not found", fmt.Errorf("cancel: %w", broker.ErrOrderNotFound), ErrOrderNotFound, false},
		{"rejected", broker.Reject("Asset not tradable"), ErrExchangeRejected, false},
		{"connection", broker.ConnectionError("cancel", errors.New("eof")), ErrConnectionFailed, true},
		{"local", errors.New("sign action: bad key"), ErrRequestFailed, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ex := newFakeExchange()
			ex.cancelErr = tt.err
			svc, _ := newTestService(t, ex)

			err := svc.Cancel(context.Background(), market.MustSymbol("ETH"), 7)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.retry, IsRetryable(err))
		})
	}
}

func TestSubmitConcurrent(t *testing.T) {
	t.Parallel()

	ex := newFakeExchange()
	svc, j := newTestService(t, ex)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := buy("ETH", "0.5")
			if i%2 == 1 {
				in.Leverage = 16
			}
			_, _ = svc.Submit(context.Background(), in)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, ex.placeCount())
	assert.Len(t, j.recs, 50)
}
