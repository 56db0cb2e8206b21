package market

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSymbol = errors.New("invalid symbol")

// Symbol is an upper-cased, trimmed trading symbol. Perp coins are bare
// ("BTC"), spot pairs are BASE/QUOTE ("PURR/USDC") or index aliases ("@107").
// The zero value is not a valid symbol; use ParseSymbol.
type Symbol struct {
	s string
}

// ParseSymbol normalizes raw and rejects empty or malformed input.
func ParseSymbol(raw string) (Symbol, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return Symbol{}, fmt.Errorf("%w: empty", ErrInvalidSymbol)
	}

	if strings.HasPrefix(s, "@") {
		idx := s[1:]
		if idx == "" || strings.Trim(idx, "0123456789") != "" {
			return Symbol{}, fmt.Errorf("%w: %q", ErrInvalidSymbol, raw)
		}
		return Symbol{s: s}, nil
	}

	parts := strings.Split(s, "/")
	if len(parts) > 2 {
		return Symbol{}, fmt.Errorf("%w: %q", ErrInvalidSymbol, raw)
	}
	for _, p := range parts {
		if !validCoin(p) {
			return Symbol{}, fmt.Errorf("%w: %q", ErrInvalidSymbol, raw)
		}
	}
	return Symbol{s: s}, nil
}

// MustSymbol is ParseSymbol for constants and tests.
func MustSymbol(raw string) Symbol {
	s, err := ParseSymbol(raw)
	if err != nil {
		panic(err)
	}
	return s
}

func validCoin(p string) bool {
	if p == "" || len(p) > 20 {
		return false
	}
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == ':':
		default:
			return false
		}
	}
	return true
}

func (s Symbol) String() string { return s.s }

func (s Symbol) IsZero() bool { return s.s == "" }

// IsSpot reports whether the symbol names a spot pair rather than a perp coin.
func (s Symbol) IsSpot() bool {
	return strings.HasPrefix(s.s, "@") || strings.Contains(s.s, "/")
}

func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.s), nil
}

func (s *Symbol) UnmarshalText(b []byte) error {
	parsed, err := ParseSymbol(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
