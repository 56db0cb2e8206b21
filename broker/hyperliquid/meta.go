package hyperliquid

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rustyeddy/hltrader/broker"
	"github.com/rustyeddy/hltrader/market"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// spotAssetOffset is added to a spot pair's universe index to form its
// asset id.
const spotAssetOffset = 10000

type asset struct {
	id           int
	name         string
	spot         bool
	sizeDecimals int32
	maxLeverage  uint32
}

// assetTable maps normalized symbols to exchange asset ids. Asset ids and
// decimals only change on listings, so the table is loaded once.
type assetTable struct {
	bySymbol map[market.Symbol]asset
}

func (t *assetTable) lookup(sym market.Symbol) (asset, bool) {
	a, ok := t.bySymbol[sym]
	return a, ok
}

// loadAssets fetches perp and spot metadata concurrently.
func (c *Client) loadAssets(ctx context.Context) (*assetTable, error) {
	c.mu.Lock()
	t := c.assets
	c.mu.Unlock()
	if t != nil {
		return t, nil
	}

	var perps, spots []asset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := c.postInfo(gctx, map[string]any{"type": "meta"})
		if err != nil {
			return err
		}
		perps = parsePerpMeta(res)
		return nil
	})
	g.Go(func() error {
		res, err := c.postInfo(gctx, map[string]any{"type": "spotMeta"})
		if err != nil {
			return err
		}
		spots = parseSpotMeta(res)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t = &assetTable{bySymbol: make(map[market.Symbol]asset, len(perps)+len(spots)*2)}
	for _, a := range append(perps, spots...) {
		sym, err := market.ParseSymbol(a.name)
		if err != nil {
			continue
		}
		t.bySymbol[sym] = a
		if a.spot {
			// "@N" always resolves, even for pairs with a canonical name.
			t.bySymbol[market.MustSymbol("@"+strconv.Itoa(a.id-spotAssetOffset))] = a
		}
	}

	c.mu.Lock()
	c.assets = t
	c.mu.Unlock()
	return t, nil
}

func (c *Client) resolve(ctx context.Context, sym market.Symbol) (asset, error) {
	t, err := c.loadAssets(ctx)
	if err != nil {
		return asset{}, err
	}
	a, ok := t.lookup(sym)
	if !ok {
		return asset{}, errors.Wrap(broker.ErrUnknownSymbol, sym.String())
	}
	return a, nil
}

func parsePerpMeta(meta gjson.Result) []asset {
	var out []asset
	for i, u := range meta.Get("universe").Array() {
		out = append(out, asset{
			id:           i,
			name:         u.Get("name").String(),
			sizeDecimals: int32(u.Get("szDecimals").Int()),
			maxLeverage:  uint32(u.Get("maxLeverage").Uint()),
		})
	}
	return out
}

func parseSpotMeta(meta gjson.Result) []asset {
	tokens := meta.Get("tokens").Array()
	var out []asset
	for _, u := range meta.Get("universe").Array() {
		idx := int(u.Get("index").Int())
		var szDec int32
		if base := u.Get("tokens.0"); base.Exists() {
			for _, tok := range tokens {
				if tok.Get("index").Int() == base.Int() {
					szDec = int32(tok.Get("szDecimals").Int())
					break
				}
			}
		}
		out = append(out, asset{
			id:           spotAssetOffset + idx,
			name:         u.Get("name").String(),
			spot:         true,
			sizeDecimals: szDec,
		})
	}
	return out
}
