package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Submission is one order submission and how it ended.
type Submission struct {
	ID              string
	Time            time.Time
	Symbol          string
	Side            string
	Size            decimal.Decimal
	OrderType       string // market, limit, or empty when no order was built
	LimitPrice      decimal.NullDecimal
	ProtectivePrice decimal.NullDecimal
	Leverage        uint32
	ReduceOnly      bool
	TimeInForce     string
	Notional        decimal.NullDecimal
	State           string
	Reason          string
	ExchangeOrderID uint64
	ClientID        string
}

type Journal interface {
	RecordSubmission(Submission) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordSubmission(Submission) error { return nil }

func (Nop) Close() error { return nil }
