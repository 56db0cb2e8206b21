// Package httpapi exposes the trading service and account queries over
// HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rustyeddy/hltrader/broker"
	"github.com/rustyeddy/hltrader/internal/logger"
	"github.com/rustyeddy/hltrader/internal/metrics"
	"github.com/rustyeddy/hltrader/market"
	"github.com/rustyeddy/hltrader/risk"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Trader is the part of trading.Service the server drives.
type Trader interface {
	Submit(ctx context.Context, intent risk.TradeIntent) (broker.OrderAck, error)
	Evaluate(ctx context.Context, intent risk.TradeIntent) (risk.Decision, error)
	Cancel(ctx context.Context, sym market.Symbol, oid uint64) error
}

type Config struct {
	Addr        string
	Trader      Trader
	Info        broker.Info
	Metrics     *metrics.Metrics
	MaxSlippage decimal.Decimal
	Network     string
}

type Server struct {
	addr   string
	router *gin.Engine
	log    *logrus.Entry
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Trader == nil || cfg.Info == nil {
		return nil, errors.New("http server requires a trader and an info source")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	log := logger.WithComponent("http")
	router.Use(gin.Recovery(), requestID(), requestLogger(log))

	h := &handlers{
		trader:      cfg.Trader,
		info:        cfg.Info,
		maxSlippage: cfg.MaxSlippage,
		network:     cfg.Network,
		started:     time.Now(),
	}
	h.register(router)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	return &Server{addr: cfg.Addr, router: router, log: log}, nil
}

func (s *Server) Addr() string { return s.addr }

func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is canceled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.log.WithField("addr", s.addr).Info("http server listening")

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
