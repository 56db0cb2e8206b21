package trading

import (
	"encoding/json"
	"testing"

	"github.com/rustyeddy/hltrader/market"
	"github.com/rustyeddy/hltrader/risk"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentRequestFromJSON(t *testing.T) {
	t.Parallel()

	var r IntentRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"symbol": "sol", "side": "long", "size": "10", "limit_price": 150.5,
		"leverage": 5, "tif": "alo", "tick_size": "0.01"
	}`), &r))

	in, err := r.Intent(decimal.RequireFromString("0.1"))
	require.NoError(t, err)
	assert.Equal(t, market.MustSymbol("SOL"), in.Symbol)
	assert.Equal(t, market.Buy, in.Side)
	assert.True(t, in.LimitPrice.Valid)
	assert.Equal(t, "150.5", in.LimitPrice.Decimal.String())
	assert.Equal(t, market.ALO, in.TimeInForce)
	assert.False(t, in.MaxSlippage.Valid)
	assert.Equal(t, uint32(5), in.Leverage)
}

func TestIntentRequestInvalid(t *testing.T) {
	t.Parallel()

	max := decimal.RequireFromString("0.1")
	ok := IntentRequest{Symbol: "ETH", Side: "buy", Size: decimal.NewFromInt(1)}

	cases := map[string]func(*IntentRequest){
		"symbol":         func(r *IntentRequest) { r.Symbol = "" },
		"side":           func(r *IntentRequest) { r.Side = "hold" },
		"tif":            func(r *IntentRequest) { r.TimeInForce = "fok" },
		"size":           func(r *IntentRequest) { r.Size = decimal.Zero },
		"slippage bound": func(r *IntentRequest) { r.Slippage = decimal.NewNullDecimal(decimal.RequireFromString("0.2")) },
		"zero tick":      func(r *IntentRequest) { r.TickSize = decimal.NewNullDecimal(decimal.Zero) },
	}
	for name, mutate := range cases {
		r := ok
		mutate(&r)
		_, err := r.Intent(max)
		assert.ErrorIs(t, err, ErrInvalidIntent, name)
		assert.ErrorIs(t, err, risk.ErrInvalidIntent, name)
		assert.Equal(t, KindInvalidIntent, KindOf(err), name)
	}

	_, err := ok.Intent(max)
	assert.NoError(t, err)
}

func TestKindCodes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "RISK_VIOLATION", KindRiskViolation.Code())
	assert.Equal(t, "ORDER_NOT_FOUND", KindOrderNotFound.Code())
	assert.Equal(t, "UNKNOWN", Kind(0).Code())
}
