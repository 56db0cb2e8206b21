package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rustyeddy/hltrader/broker"
	"github.com/rustyeddy/hltrader/market"
	"github.com/rustyeddy/hltrader/risk"
	"github.com/rustyeddy/hltrader/trading"
	"github.com/shopspring/decimal"
)

type handlers struct {
	trader      Trader
	info        broker.Info
	maxSlippage decimal.Decimal
	network     string
	started     time.Time
}

func (h *handlers) register(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/status", h.status)
	r.GET("/balances", h.balances)
	r.GET("/spot", h.spot)
	r.GET("/orders", h.openOrders)
	r.POST("/orders", h.submit)
	r.POST("/orders/check", h.check)
	r.DELETE("/orders/:symbol/:oid", h.cancel)
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"network": h.network,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *handlers) status(c *gin.Context) {
	ms, err := h.info.Markets(c.Request.Context())
	if err != nil {
		infoError(c, err)
		return
	}
	out := make([]gin.H, 0, len(ms))
	for _, m := range ms {
		out = append(out, gin.H{
			"symbol":        m.Symbol,
			"mark_price":    m.MarkPrice,
			"volume_24h":    m.Volume24h,
			"funding_rate":  m.FundingRate,
			"open_interest": m.OpenInterest,
			"max_leverage":  m.MaxLeverage,
		})
	}
	c.JSON(http.StatusOK, gin.H{"total_markets": len(out), "markets": out})
}

func (h *handlers) balances(c *gin.Context) {
	b, err := h.info.Balances(c.Request.Context())
	if err != nil {
		infoError(c, err)
		return
	}
	positions := make([]gin.H, 0, len(b.Positions))
	for _, p := range b.Positions {
		positions = append(positions, gin.H{
			"symbol":         p.Symbol,
			"size":           p.Size,
			"entry_price":    p.EntryPrice,
			"leverage":       p.Leverage,
			"unrealized_pnl": p.UnrealizedPnL,
			"position_value": p.PositionValue,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"account_value":     b.AccountValue,
		"withdrawable":      b.Withdrawable,
		"cross_margin_used": b.CrossMarginUsed,
		"positions":         positions,
	})
}

func (h *handlers) spot(c *gin.Context) {
	s, err := h.info.SpotMarkets(c.Request.Context())
	if err != nil {
		infoError(c, err)
		return
	}
	pairs := make([]gin.H, 0, len(s.Pairs))
	for _, p := range s.Pairs {
		pairs = append(pairs, gin.H{"name": p.Name, "mark_price": p.MarkPrice, "mid_price": p.MidPrice, "volume_24h": p.Volume24h})
	}
	tokens := make([]gin.H, 0, len(s.Tokens))
	for _, t := range s.Tokens {
		tokens = append(tokens, gin.H{"name": t.Name, "decimals": t.Decimals, "token_id": t.TokenID})
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens, "pairs": pairs})
}

func (h *handlers) openOrders(c *gin.Context) {
	orders, err := h.info.OpenOrders(c.Request.Context())
	if err != nil {
		infoError(c, err)
		return
	}
	out := make([]gin.H, 0, len(orders))
	for _, o := range orders {
		out = append(out, gin.H{
			"order_id":  o.OrderID,
			"symbol":    o.Symbol,
			"side":      o.Side.String(),
			"price":     o.Price,
			"size":      o.Size,
			"orig_size": o.OrigSize,
			"timestamp": o.Timestamp,
		})
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

func (h *handlers) bindIntent(c *gin.Context) (risk.TradeIntent, bool) {
	var req trading.IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     trading.KindInvalidIntent.Code(),
			"message":   "invalid request body: " + err.Error(),
			"retryable": false,
		})
		return risk.TradeIntent{}, false
	}
	in, err := req.Intent(h.maxSlippage)
	if err != nil {
		tradingError(c, err)
		return risk.TradeIntent{}, false
	}
	return in, true
}

func (h *handlers) submit(c *gin.Context) {
	in, ok := h.bindIntent(c)
	if !ok {
		return
	}
	ack, err := h.trader.Submit(c.Request.Context(), in)
	if err != nil {
		tradingError(c, err)
		return
	}
	body := gin.H{
		"symbol":    ack.Symbol.String(),
		"side":      ack.Side.String(),
		"size":      ack.Size,
		"order_id":  ack.OrderID,
		"client_id": ack.ClientID,
		"status":    string(ack.Status),
	}
	if ack.Status == broker.StatusFilled {
		body["filled_size"] = ack.FilledSize
		if ack.AvgPrice.Valid {
			body["avg_price"] = ack.AvgPrice.Decimal
		}
	}
	c.JSON(http.StatusCreated, body)
}

func (h *handlers) check(c *gin.Context) {
	in, ok := h.bindIntent(c)
	if !ok {
		return
	}
	d, err := h.trader.Evaluate(c.Request.Context(), in)
	if err != nil {
		tradingError(c, err)
		return
	}
	switch d := d.(type) {
	case risk.Approved:
		c.JSON(http.StatusOK, gin.H{
			"approved":   true,
			"symbol":     in.Symbol.String(),
			"mark_price": d.Snapshot().MarkPrice,
			"notional":   d.Notional(),
			"leverage":   in.EffectiveLeverage(),
		})
	case risk.Rejected:
		c.JSON(http.StatusOK, gin.H{
			"approved":  false,
			"symbol":    in.Symbol.String(),
			"violation": violationJSON(d.Violation),
		})
	}
}

func (h *handlers) cancel(c *gin.Context) {
	sym, err := market.ParseSymbol(c.Param("symbol"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": trading.KindInvalidIntent.Code(), "message": err.Error(), "retryable": false})
		return
	}
	oid, err := strconv.ParseUint(c.Param("oid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": trading.KindInvalidIntent.Code(), "message": "order id must be an unsigned integer", "retryable": false})
		return
	}
	if err := h.trader.Cancel(c.Request.Context(), sym, oid); err != nil {
		tradingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"canceled": true, "symbol": sym.String(), "order_id": oid})
}

// statusFor maps error kinds to HTTP status codes.
func statusFor(k trading.Kind) int {
	switch k {
	case trading.KindInvalidIntent:
		return http.StatusBadRequest
	case trading.KindRiskViolation:
		return http.StatusUnprocessableEntity
	case trading.KindOrderNotFound:
		return http.StatusNotFound
	case trading.KindExchangeRejected:
		return http.StatusConflict
	case trading.KindMarketDataUnavailable, trading.KindConnectionFailed:
		return http.StatusServiceUnavailable
	case trading.KindRequestFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func tradingError(c *gin.Context, err error) {
	var te *trading.Error
	if !errors.As(err, &te) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL", "message": err.Error(), "retryable": false})
		return
	}
	body := gin.H{
		"error":     te.Kind.Code(),
		"message":   te.Error(),
		"retryable": te.Retryable(),
	}
	if te.Violation != nil {
		body["violation"] = violationJSON(te.Violation)
	}
	if te.InsufficientBalance {
		body["insufficient_balance"] = true
	}
	c.JSON(statusFor(te.Kind), body)
}

func infoError(c *gin.Context, err error) {
	code := http.StatusBadGateway
	if errors.Is(err, broker.ErrConnection) {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"error": "UPSTREAM", "message": err.Error(), "retryable": code == http.StatusServiceUnavailable})
}

func violationJSON(v risk.Violation) gin.H {
	out := gin.H{"code": v.Code(), "message": v.String()}
	switch v := v.(type) {
	case risk.SymbolDisabled:
		out["symbol"] = v.Symbol.String()
	case risk.LeverageExceeded:
		out["symbol"] = v.Symbol.String()
		out["requested"] = v.Requested
		out["max"] = v.Max
	case risk.OrderNotionalExceeded:
		out["notional"] = v.Notional
		out["max"] = v.Max
	case risk.SymbolNotionalExceeded:
		out["symbol"] = v.Symbol.String()
		out["notional"] = v.Notional
		out["max"] = v.Max
	}
	return out
}
