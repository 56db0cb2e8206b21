package market

import (
	"fmt"
	"strings"
)

type Side int

const (
	Buy Side = iota + 1
	Sell
)

func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "b", "long", "bid":
		return Buy, nil
	case "sell", "s", "short", "ask", "a":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown side %q (want buy|sell)", s)
	}
}

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

func (s Side) IsBuy() bool { return s == Buy }

func (s Side) Valid() bool { return s == Buy || s == Sell }

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// TimeInForce follows the exchange's limit order TIF values.
type TimeInForce string

const (
	GTC TimeInForce = "Gtc" // good til canceled
	IOC TimeInForce = "Ioc" // immediate or cancel
	ALO TimeInForce = "Alo" // add liquidity only (post-only)
)

func ParseTimeInForce(s string) (TimeInForce, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gtc":
		return GTC, nil
	case "ioc":
		return IOC, nil
	case "alo", "post", "postonly", "post-only":
		return ALO, nil
	default:
		return "", fmt.Errorf("unknown time in force %q (want Gtc|Ioc|Alo)", s)
	}
}

func (t TimeInForce) Valid() bool {
	return t == GTC || t == IOC || t == ALO
}
