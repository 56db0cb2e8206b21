package hyperliquid

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rustyeddy/hltrader/internal/logger"
	"github.com/rustyeddy/hltrader/market"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const defaultPingInterval = 30 * time.Second

// Streamer subscribes to the public trade feed.
type Streamer struct {
	URL          string
	PingInterval time.Duration
	WriteTimeout time.Duration

	log *logrus.Entry
}

func NewStreamer(url string) *Streamer {
	if url == "" {
		url = TestnetWSURL
	}
	return &Streamer{
		URL:          url,
		PingInterval: defaultPingInterval,
		WriteTimeout: 10 * time.Second,
		log:          logger.WithComponent("stream"),
	}
}

type StreamStats struct {
	Messages   int
	Trades     int
	Pongs      int
	Subscribed bool
	Started    time.Time
	Ended      time.Time
}

// conn serializes writes; gorilla allows one concurrent writer.
type conn struct {
	ws      *websocket.Conn
	mu      sync.Mutex
	timeout time.Duration
}

func (c *conn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.timeout))
	return c.ws.WriteJSON(v)
}

// Trades streams trades for sym to fn until ctx is done or the connection
// drops. A canceled context ends the stream without error.
func (s *Streamer) Trades(ctx context.Context, sym market.Symbol, fn func(market.Trade)) (stats StreamStats, err error) {
	stats.Started = time.Now()
	defer func() { stats.Ended = time.Now() }()

	dialer := websocket.Dialer{HandshakeTimeout: 30 * time.Second}
	ws, _, err := dialer.DialContext(ctx, s.URL, nil)
	if err != nil {
		return stats, errors.Wrapf(err, "dial %s", s.URL)
	}
	c := &conn{ws: ws, timeout: s.WriteTimeout}

	subscription := map[string]string{"type": "trades", "coin": sym.String()}

	// Unsubscribe and close on cancel so the blocked read returns.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.writeJSON(map[string]any{"method": "unsubscribe", "subscription": subscription})
		case <-done:
		}
		_ = ws.Close()
	}()

	if err := c.writeJSON(map[string]any{"method": "subscribe", "subscription": subscription}); err != nil {
		return stats, errors.Wrap(err, "subscribe")
	}
	s.log.WithField("symbol", sym.String()).Info("subscribed to trades")

	go s.pingLoop(ctx, c, done)

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return stats, nil
			}
			return stats, errors.Wrap(err, "read")
		}
		stats.Messages++
		if !gjson.ValidBytes(msg) {
			s.log.WithField("msg", truncate(string(msg))).Debug("ignoring non-json frame")
			continue
		}

		res := gjson.ParseBytes(msg)
		switch res.Get("channel").String() {
		case "subscriptionResponse":
			stats.Subscribed = true
		case "pong":
			stats.Pongs++
		case "trades":
			for _, t := range res.Get("data").Array() {
				tr, ok := parseTrade(t)
				if !ok || !strings.EqualFold(tr.Symbol.String(), sym.String()) {
					continue
				}
				stats.Trades++
				fn(tr)
			}
		case "error":
			return stats, errors.Errorf("stream error: %s", res.Get("data").String())
		}
	}
}

func (s *Streamer) pingLoop(ctx context.Context, c *conn, done <-chan struct{}) {
	interval := s.PingInterval
	if interval <= 0 {
		interval = defaultPingInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-t.C:
			if err := c.writeJSON(map[string]string{"method": "ping"}); err != nil {
				s.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}

func parseTrade(t gjson.Result) (market.Trade, bool) {
	sym, err := market.ParseSymbol(t.Get("coin").String())
	if err != nil {
		return market.Trade{}, false
	}
	px, err := decimalField(t, "px")
	if err != nil {
		return market.Trade{}, false
	}
	sz, err := decimalField(t, "sz")
	if err != nil {
		return market.Trade{}, false
	}
	side := market.Buy
	if t.Get("side").String() == "A" {
		side = market.Sell
	}
	return market.Trade{
		Symbol: sym,
		Side:   side,
		Price:  px,
		Size:   sz,
		Time:   time.UnixMilli(t.Get("time").Int()).UTC(),
		TID:    t.Get("tid").Uint(),
	}, true
}
