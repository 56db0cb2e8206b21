package broker

import (
	"time"

	"github.com/rustyeddy/hltrader/market"
	"github.com/shopspring/decimal"
)

type OrderType string

const (
	Market OrderType = "market"
	Limit  OrderType = "limit"
)

// OrderRequest is a fully specified order, ready for the wire.
type OrderRequest struct {
	Symbol      market.Symbol
	Side        market.Side
	Size        decimal.Decimal
	Type        OrderType
	LimitPrice  decimal.NullDecimal // valid iff Type == Limit
	ReduceOnly  bool
	TimeInForce market.TimeInForce

	// ProtectivePrice bounds a market order's fill price. Venues without
	// native market orders send it as an IOC limit.
	ProtectivePrice decimal.NullDecimal

	Leverage          uint32 // always >= 1
	LeverageRequested bool   // caller asked for a leverage change
	IsSpot            bool
	SizeDecimals      int32
	ClientID          string // 0x-prefixed 128-bit hex
}

// Price is the price the order goes out at: the limit, the protective
// price, or zero for an unbounded market order.
func (r OrderRequest) Price() decimal.Decimal {
	if r.LimitPrice.Valid {
		return r.LimitPrice.Decimal
	}
	if r.ProtectivePrice.Valid {
		return r.ProtectivePrice.Decimal
	}
	return decimal.Zero
}

type OrderStatus string

const (
	StatusResting OrderStatus = "resting"
	StatusFilled  OrderStatus = "filled"
)

// OrderAck is the venue's acknowledgement of an accepted order.
type OrderAck struct {
	Symbol     market.Symbol
	Side       market.Side
	Size       decimal.Decimal
	OrderID    uint64
	ClientID   string
	Status     OrderStatus
	FilledSize decimal.Decimal
	AvgPrice   decimal.NullDecimal
}

type MarketInfo struct {
	Symbol       string
	MarkPrice    decimal.Decimal
	Volume24h    decimal.Decimal
	FundingRate  decimal.Decimal
	OpenInterest decimal.Decimal
	MaxLeverage  uint32
	SizeDecimals int32
}

type Position struct {
	Symbol        string
	Size          decimal.Decimal
	EntryPrice    decimal.Decimal
	Leverage      uint32
	UnrealizedPnL decimal.Decimal
	PositionValue decimal.Decimal
}

type Balances struct {
	AccountValue    decimal.Decimal
	Withdrawable    decimal.Decimal
	CrossMarginUsed decimal.Decimal
	Positions       []Position
}

type SpotToken struct {
	Name     string
	Decimals int32
	TokenID  string
}

type SpotPair struct {
	Name      string
	MarkPrice decimal.Decimal
	MidPrice  decimal.Decimal
	Volume24h decimal.Decimal
}

type SpotMarkets struct {
	Tokens []SpotToken
	Pairs  []SpotPair
}

type OpenOrder struct {
	OrderID   uint64
	Symbol    string
	Side      market.Side
	Price     decimal.Decimal
	Size      decimal.Decimal
	OrigSize  decimal.Decimal
	Timestamp time.Time
}
