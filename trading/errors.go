package trading

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/hltrader/market"
	"github.com/rustyeddy/hltrader/risk"
)

// Kind classifies trading failures.
type Kind int

const (
	KindInvalidIntent Kind = iota + 1
	KindRiskViolation
	KindMarketDataUnavailable
	KindExchangeRejected
	KindConnectionFailed
	KindOrderNotFound
	// KindRequestFailed covers exchange calls that failed for a local or
	// non-transport reason, such as a missing wallet key.
	KindRequestFailed
)

var (
	ErrInvalidIntent         = errors.New("invalid intent")
	ErrRiskViolation         = errors.New("risk violation")
	ErrMarketDataUnavailable = errors.New("market data unavailable")
	ErrExchangeRejected      = errors.New("exchange rejected")
	ErrConnectionFailed      = errors.New("connection failed")
	ErrOrderNotFound         = errors.New("order not found")
	ErrRequestFailed         = errors.New("request failed")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidIntent:
		return ErrInvalidIntent
	case KindRiskViolation:
		return ErrRiskViolation
	case KindMarketDataUnavailable:
		return ErrMarketDataUnavailable
	case KindExchangeRejected:
		return ErrExchangeRejected
	case KindConnectionFailed:
		return ErrConnectionFailed
	case KindOrderNotFound:
		return ErrOrderNotFound
	case KindRequestFailed:
		return ErrRequestFailed
	default:
		return nil
	}
}

// Code is the stable machine-readable name of k.
func (k Kind) Code() string {
	switch k {
	case KindInvalidIntent:
		return "INVALID_INTENT"
	case KindRiskViolation:
		return "RISK_VIOLATION"
	case KindMarketDataUnavailable:
		return "MARKET_DATA_UNAVAILABLE"
	case KindExchangeRejected:
		return "EXCHANGE_REJECTED"
	case KindConnectionFailed:
		return "CONNECTION_FAILED"
	case KindOrderNotFound:
		return "ORDER_NOT_FOUND"
	case KindRequestFailed:
		return "REQUEST_FAILED"
	default:
		return "UNKNOWN"
	}
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the only error type the service returns. Match it with
// errors.Is against the Err* sentinels or errors.As for the details.
type Error struct {
	Kind   Kind
	Symbol market.Symbol

	// Violation is set for KindRiskViolation.
	Violation risk.Violation

	// Reason is the venue's or validator's message.
	Reason string

	// InsufficientBalance is set when the venue refused for lack of funds.
	InsufficientBalance bool

	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRiskViolation:
		return "risk violation: " + e.Violation.String()
	case KindOrderNotFound:
		return fmt.Sprintf("order not found: %s", e.Reason)
	default:
		if e.Reason != "" {
			return e.Kind.String() + ": " + e.Reason
		}
		if e.Err != nil {
			return e.Kind.String() + ": " + e.Err.Error()
		}
		return e.Kind.String()
	}
}

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable is true only when the failure is transient and the order was
// either never sent or its outcome is unknown.
func (e *Error) Retryable() bool {
	return e.Kind == KindMarketDataUnavailable || e.Kind == KindConnectionFailed
}

// KindOf returns the Kind of a trading error, or 0 if err is not one.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}

// IsRetryable reports whether err is a trading error marked retryable.
func IsRetryable(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.Retryable()
}
