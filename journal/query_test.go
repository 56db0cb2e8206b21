package journal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	at := time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)
	want := sampleSubmission("S123", at)
	want.LimitPrice = decimal.NewNullDecimal(decimal.RequireFromString("61000"))
	want.ReduceOnly = true
	want.Reason = ""
	require.NoError(t, j.RecordSubmission(want))

	got, err := j.Get("S123")
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.True(t, got.Time.Equal(at))
	assert.Equal(t, want.Symbol, got.Symbol)
	assert.Equal(t, want.Side, got.Side)
	assert.True(t, want.Size.Equal(got.Size))
	assert.Equal(t, want.OrderType, got.OrderType)
	require.True(t, got.LimitPrice.Valid)
	assert.True(t, want.LimitPrice.Decimal.Equal(got.LimitPrice.Decimal))
	require.True(t, got.ProtectivePrice.Valid)
	assert.True(t, want.ProtectivePrice.Decimal.Equal(got.ProtectivePrice.Decimal))
	assert.Equal(t, want.Leverage, got.Leverage)
	assert.True(t, got.ReduceOnly)
	assert.Equal(t, want.TimeInForce, got.TimeInForce)
	assert.True(t, want.Notional.Decimal.Equal(got.Notional.Decimal))
	assert.Equal(t, want.State, got.State)
	assert.Equal(t, want.ExchangeOrderID, got.ExchangeOrderID)
	assert.Equal(t, want.ClientID, got.ClientID)
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	_, err := j.Get("nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListBetween(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	subs := []Submission{
		sampleSubmission("A", day.Add(-time.Minute)),
		sampleSubmission("B", day.Add(time.Hour)),
		sampleSubmission("C", day.Add(23*time.Hour)),
		sampleSubmission("D", day.Add(24*time.Hour)),
	}
	subs[2].State = "rejected"
	subs[2].Reason = "requested leverage 25x exceeds maximum 20x for SOL"
	subs[2].Notional = decimal.NullDecimal{}
	for _, s := range subs {
		require.NoError(t, j.RecordSubmission(s))
	}

	got, err := j.ListBetween(day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].ID)
	assert.Equal(t, "C", got[1].ID)
	assert.False(t, got[1].Notional.Valid)
	assert.Contains(t, got[1].Reason, "25x")

	counts, err := j.Summary(day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"acked": 1, "rejected": 1}, counts)
}

func TestListBetweenEmpty(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	got, err := j.ListBetween(time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}
