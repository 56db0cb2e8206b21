package trading

import (
	"errors"
	"testing"

	"github.com/rustyeddy/hltrader/market"
	"github.com/rustyeddy/hltrader/risk"
	"github.com/stretchr/testify/assert"
)

func TestLifecycleHappyPath(t *testing.T) {
	t.Parallel()

	l := newLifecycle()
	for _, s := range []State{StateValidating, StateBuilding, StateSubmitting, StateAcked} {
		l.advance(s)
	}
	assert.Equal(t, StateAcked, l.state)
	assert.True(t, l.state.Terminal())
	assert.Len(t, l.trail, 5)
}

func TestLifecycleIllegalMovePanics(t *testing.T) {
	t.Parallel()

	l := newLifecycle()
	assert.Panics(t, func() { l.advance(StateSubmitting) })

	l = newLifecycle()
	l.advance(StateValidating)
	l.advance(StateRejected)
	assert.Panics(t, func() { l.advance(StateBuilding) })
}

func TestTerminalStates(t *testing.T) {
	t.Parallel()

	for _, s := range []State{StateInvalid, StateMarketDataUnavailable, StateRejected, StateAcked, StateExchangeRejected, StateConnectionFailed, StateRequestFailed} {
		assert.True(t, s.Terminal(), s)
	}
	for _, s := range []State{StateReceived, StateValidating, StateBuilding, StateSubmitting} {
		assert.False(t, s.Terminal(), s)
	}
}

func TestErrorMatching(t *testing.T) {
	t.Parallel()

	err := error(&Error{
		Kind:      KindRiskViolation,
		Symbol:    market.MustSymbol("SOL"),
		Violation: risk.LeverageExceeded{Symbol: market.MustSymbol("SOL"), Requested: 25, Max: 20},
	})
	assert.ErrorIs(t, err, ErrRiskViolation)
	assert.NotErrorIs(t, err, ErrConnectionFailed)
	assert.Equal(t, "risk violation: requested leverage 25x exceeds maximum 20x for SOL", err.Error())

	cause := errors.New("socket closed")
	err = &Error{Kind: KindConnectionFailed, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "connection failed: socket closed", err.Error())

	assert.Equal(t, Kind(0), KindOf(cause))
	assert.False(t, IsRetryable(cause))
	assert.Equal(t, "order not found", KindOrderNotFound.String())
}
