package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	t.Parallel()

	m := New()
	m.Submission("BTC", "acked")
	m.Submission("BTC", "acked")
	m.RiskRejection("SOL", "LEVERAGE_EXCEEDED")
	m.ExchangeLatency("order", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("BTC", "acked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.riskRejections.WithLabelValues("SOL", "LEVERAGE_EXCEEDED")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.Submission("BTC", "acked")
		m.RiskRejection("BTC", "x")
		m.ExchangeLatency("order", time.Second)
	})
}

func TestHandler(t *testing.T) {
	t.Parallel()

	m := New()
	m.Submission("ETH", "rejected")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `hltrader_submissions_total{state="rejected",symbol="ETH"} 1`)
}
