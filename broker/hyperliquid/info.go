package hyperliquid

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rustyeddy/hltrader/broker"
	"github.com/rustyeddy/hltrader/market"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// dust is the smallest position size reported by Balances.
var dust = decimal.New(1, -4)

// Snapshot fetches the current mark for sym. Every call goes to the
// exchange; marks are never cached.
func (c *Client) Snapshot(ctx context.Context, sym market.Symbol) (market.Snapshot, error) {
	if sym.IsSpot() {
		return c.spotSnapshot(ctx, sym)
	}

	res, err := c.postInfo(ctx, map[string]any{"type": "metaAndAssetCtxs"})
	if err != nil {
		return market.Snapshot{}, err
	}
	ctxs := res.Get("1").Array()
	for i, u := range res.Get("0.universe").Array() {
		if !strings.EqualFold(u.Get("name").String(), sym.String()) {
			continue
		}
		if i >= len(ctxs) {
			break
		}
		mark, err := decimalField(ctxs[i], "markPx")
		if err != nil {
			return market.Snapshot{}, errors.Wrapf(market.ErrNoMark, "%s: %v", sym, err)
		}
		return market.Snapshot{
			Symbol:       sym,
			MarkPrice:    mark,
			SizeDecimals: int32(u.Get("szDecimals").Int()),
			MaxLeverage:  uint32(u.Get("maxLeverage").Uint()),
			Time:         c.now(),
		}, nil
	}
	return market.Snapshot{}, errors.Wrap(broker.ErrUnknownSymbol, sym.String())
}

func (c *Client) spotSnapshot(ctx context.Context, sym market.Symbol) (market.Snapshot, error) {
	res, err := c.postInfo(ctx, map[string]any{"type": "spotMetaAndAssetCtxs"})
	if err != nil {
		return market.Snapshot{}, err
	}
	meta := res.Get("0")
	ctxs := res.Get("1").Array()

	universe := meta.Get("universe").Array()
	for i, a := range parseSpotMeta(meta) {
		alias := "@" + universe[i].Get("index").String()
		if !strings.EqualFold(a.name, sym.String()) && alias != sym.String() {
			continue
		}
		ac, ok := spotContext(ctxs, i, a.name)
		if !ok {
			break
		}
		mark, err := decimalField(ac, "markPx")
		if err != nil {
			return market.Snapshot{}, errors.Wrapf(market.ErrNoMark, "%s: %v", sym, err)
		}
		return market.Snapshot{
			Symbol:       sym,
			MarkPrice:    mark,
			IsSpot:       true,
			SizeDecimals: a.sizeDecimals,
			Time:         c.now(),
		}, nil
	}
	return market.Snapshot{}, errors.Wrap(broker.ErrUnknownSymbol, sym.String())
}

// spotContext finds the asset context for the pair at universe position
// i. Contexts name their coin; fall back to position when they don't.
func spotContext(ctxs []gjson.Result, i int, name string) (gjson.Result, bool) {
	if i < len(ctxs) {
		coin := ctxs[i].Get("coin")
		if !coin.Exists() || coin.String() == name {
			return ctxs[i], true
		}
	}
	for _, ac := range ctxs {
		if ac.Get("coin").String() == name {
			return ac, true
		}
	}
	return gjson.Result{}, false
}

// Markets lists perpetual markets, skipping delisted ones.
func (c *Client) Markets(ctx context.Context) ([]broker.MarketInfo, error) {
	res, err := c.postInfo(ctx, map[string]any{"type": "metaAndAssetCtxs"})
	if err != nil {
		return nil, err
	}
	ctxs := res.Get("1").Array()

	var out []broker.MarketInfo
	for i, u := range res.Get("0.universe").Array() {
		if u.Get("isDelisted").Bool() || i >= len(ctxs) {
			continue
		}
		ac := ctxs[i]
		out = append(out, broker.MarketInfo{
			Symbol:       u.Get("name").String(),
			MarkPrice:    decimalOrZero(ac, "markPx"),
			Volume24h:    decimalOrZero(ac, "dayNtlVlm"),
			FundingRate:  decimalOrZero(ac, "funding"),
			OpenInterest: decimalOrZero(ac, "openInterest"),
			MaxLeverage:  uint32(u.Get("maxLeverage").Uint()),
			SizeDecimals: int32(u.Get("szDecimals").Int()),
		})
	}
	return out, nil
}

func (c *Client) SpotMarkets(ctx context.Context) (broker.SpotMarkets, error) {
	res, err := c.postInfo(ctx, map[string]any{"type": "spotMetaAndAssetCtxs"})
	if err != nil {
		return broker.SpotMarkets{}, err
	}
	meta := res.Get("0")
	ctxs := res.Get("1").Array()

	var out broker.SpotMarkets
	for _, t := range meta.Get("tokens").Array() {
		out.Tokens = append(out.Tokens, broker.SpotToken{
			Name:     t.Get("name").String(),
			Decimals: int32(t.Get("szDecimals").Int()),
			TokenID:  t.Get("tokenId").String(),
		})
	}
	for i, u := range meta.Get("universe").Array() {
		name := u.Get("name").String()
		ac, ok := spotContext(ctxs, i, name)
		if !ok {
			continue
		}
		out.Pairs = append(out.Pairs, broker.SpotPair{
			Name:      name,
			MarkPrice: decimalOrZero(ac, "markPx"),
			MidPrice:  decimalOrZero(ac, "midPx"),
			Volume24h: decimalOrZero(ac, "dayNtlVlm"),
		})
	}
	return out, nil
}

// Balances reads the wallet's clearinghouse state. Positions smaller than
// 0.0001 are dropped.
func (c *Client) Balances(ctx context.Context) (broker.Balances, error) {
	addr, err := c.Address()
	if err != nil {
		return broker.Balances{}, err
	}
	res, err := c.postInfo(ctx, map[string]any{"type": "clearinghouseState", "user": addr.Hex()})
	if err != nil {
		return broker.Balances{}, err
	}

	out := broker.Balances{
		AccountValue: decimalOrZero(res, "marginSummary.accountValue"),
		Withdrawable: decimalOrZero(res, "withdrawable"),
	}
	if v := res.Get("crossMarginUsed"); v.Exists() {
		out.CrossMarginUsed = decimalOrZero(res, "crossMarginUsed")
	} else {
		out.CrossMarginUsed = decimalOrZero(res, "crossMarginSummary.totalMarginUsed")
	}

	for _, ap := range res.Get("assetPositions").Array() {
		p := ap.Get("position")
		size := decimalOrZero(p, "szi")
		if size.Abs().LessThanOrEqual(dust) {
			continue
		}
		out.Positions = append(out.Positions, broker.Position{
			Symbol:        p.Get("coin").String(),
			Size:          size,
			EntryPrice:    decimalOrZero(p, "entryPx"),
			Leverage:      uint32(p.Get("leverage.value").Uint()),
			UnrealizedPnL: decimalOrZero(p, "unrealizedPnl"),
			PositionValue: decimalOrZero(p, "positionValue"),
		})
	}
	return out, nil
}

func (c *Client) OpenOrders(ctx context.Context) ([]broker.OpenOrder, error) {
	addr, err := c.Address()
	if err != nil {
		return nil, err
	}
	res, err := c.postInfo(ctx, map[string]any{"type": "openOrders", "user": addr.Hex()})
	if err != nil {
		return nil, err
	}

	var out []broker.OpenOrder
	for _, o := range res.Array() {
		side := market.Buy
		if o.Get("side").String() == "A" {
			side = market.Sell
		}
		size := decimalOrZero(o, "sz")
		orig := size
		if o.Get("origSz").Exists() {
			orig = decimalOrZero(o, "origSz")
		}
		out = append(out, broker.OpenOrder{
			OrderID:   o.Get("oid").Uint(),
			Symbol:    o.Get("coin").String(),
			Side:      side,
			Price:     decimalOrZero(o, "limitPx"),
			Size:      size,
			OrigSize:  orig,
			Timestamp: time.UnixMilli(o.Get("timestamp").Int()).UTC(),
		})
	}
	return out, nil
}

func decimalField(r gjson.Result, path string) (decimal.Decimal, error) {
	v := r.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return decimal.Zero, errors.Errorf("%s missing", path)
	}
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse %s", path)
	}
	return d, nil
}

func decimalOrZero(r gjson.Result, path string) decimal.Decimal {
	d, err := decimalField(r, path)
	if err != nil {
		return decimal.Zero
	}
	return d
}
