package hyperliquid

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rustyeddy/hltrader/broker"
	"github.com/rustyeddy/hltrader/market"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// PlaceOrder sends one order. Market orders go out as IOC limits at the
// protective price. When leverage was requested on a perp, an
// updateLeverage action is sent first; if it fails the order is not sent.
func (c *Client) PlaceOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderAck, error) {
	a, err := c.resolve(ctx, req.Symbol)
	if err != nil {
		if errors.Is(err, broker.ErrUnknownSymbol) {
			return broker.OrderAck{}, broker.Reject("unknown asset " + req.Symbol.String())
		}
		return broker.OrderAck{}, err
	}

	px := req.Price()
	if !px.IsPositive() {
		return broker.OrderAck{}, broker.Reject("market order needs a protective price")
	}
	wirePx := roundPrice(px, a.sizeDecimals, a.spot, req.Side)
	if !wirePx.IsPositive() {
		return broker.OrderAck{}, broker.Reject("order price rounds to zero")
	}
	size := roundSize(req.Size, a.sizeDecimals)
	if !size.IsPositive() {
		return broker.OrderAck{}, broker.Reject("order size rounds to zero")
	}

	tif := req.TimeInForce
	switch {
	case req.Type == broker.Market:
		tif = market.IOC
	case tif == "":
		tif = market.GTC
	}

	if req.LeverageRequested && !a.spot {
		if err := c.updateLeverage(ctx, a, req.Leverage); err != nil {
			return broker.OrderAck{}, err
		}
	}

	action := orderAction{
		Type: "order",
		Orders: []orderWire{{
			Asset:      a.id,
			IsBuy:      req.Side.IsBuy(),
			LimitPx:    wire(wirePx),
			Size:       wire(size),
			ReduceOnly: req.ReduceOnly,
			OrderType:  orderTypeWire{Limit: limitWire{Tif: string(tif)}},
			Cloid:      req.ClientID,
		}},
		Grouping: "na",
	}

	c.log.WithFields(logrus.Fields{
		"symbol": req.Symbol.String(),
		"asset":  a.id,
		"side":   req.Side.String(),
		"px":     action.Orders[0].LimitPx,
		"sz":     action.Orders[0].Size,
		"tif":    string(tif),
	}).Debug("placing order")

	resp, err := c.postAction(ctx, action)
	if err != nil {
		return broker.OrderAck{}, err
	}
	return parseOrderResponse(resp, req, size)
}

func parseOrderResponse(resp gjson.Result, req broker.OrderRequest, size decimal.Decimal) (broker.OrderAck, error) {
	st := resp.Get("data.statuses.0")
	if !st.Exists() {
		return broker.OrderAck{}, broker.Reject("empty order response")
	}
	if msg := st.Get("error"); msg.Exists() {
		return broker.OrderAck{}, broker.Reject(msg.String())
	}

	ack := broker.OrderAck{
		Symbol:   req.Symbol,
		Side:     req.Side,
		Size:     size,
		ClientID: req.ClientID,
	}
	switch {
	case st.Get("resting").Exists():
		ack.Status = broker.StatusResting
		ack.OrderID = st.Get("resting.oid").Uint()
	case st.Get("filled").Exists():
		ack.Status = broker.StatusFilled
		ack.OrderID = st.Get("filled.oid").Uint()
		ack.FilledSize = decimalOrZero(st, "filled.totalSz")
		if avg, err := decimalField(st, "filled.avgPx"); err == nil {
			ack.AvgPrice = decimal.NewNullDecimal(avg)
		}
	default:
		return broker.OrderAck{}, broker.Reject("unrecognized order status: " + st.Raw)
	}
	return ack, nil
}

func (c *Client) updateLeverage(ctx context.Context, a asset, leverage uint32) error {
	resp, err := c.postAction(ctx, updateLeverageAction{
		Type:     "updateLeverage",
		Asset:    a.id,
		IsCross:  true,
		Leverage: leverage,
	})
	if err != nil {
		return errors.Wrap(err, "update leverage")
	}
	if msg := resp.Get("data.statuses.0.error"); msg.Exists() {
		return broker.Reject(msg.String())
	}
	return nil
}

// CancelOrder cancels a resting order by exchange id.
func (c *Client) CancelOrder(ctx context.Context, sym market.Symbol, oid uint64) error {
	a, err := c.resolve(ctx, sym)
	if err != nil {
		if errors.Is(err, broker.ErrUnknownSymbol) {
			return errors.Wrap(broker.ErrOrderNotFound, err.Error())
		}
		return err
	}

	resp, err := c.postAction(ctx, cancelAction{
		Type:    "cancel",
		Cancels: []cancelWire{{Asset: a.id, Oid: oid}},
	})
	if err != nil {
		return err
	}

	st := resp.Get("data.statuses.0")
	if st.Type == gjson.String && st.String() == "success" {
		return nil
	}
	msg := st.Get("error").String()
	if msg == "" {
		msg = st.Raw
	}
	if isNotFound(msg) {
		return errors.Wrap(broker.ErrOrderNotFound, msg)
	}
	return broker.Reject(msg)
}

func isNotFound(msg string) bool {
	l := strings.ToLower(msg)
	return strings.Contains(l, "never placed") ||
		strings.Contains(l, "already canceled") ||
		strings.Contains(l, "filled")
}
