package broker

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConnection means the venue could not be reached or answered with
	// a transport-level failure. The order outcome is unknown.
	ErrConnection = errors.New("exchange connection failed")

	ErrOrderNotFound = errors.New("order not found")
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// RejectedError is a definitive refusal by the venue.
type RejectedError struct {
	Reason              string
	InsufficientBalance bool
}

func (e *RejectedError) Error() string {
	return "exchange rejected order: " + e.Reason
}

// Reject classifies a venue error message.
func Reject(reason string) *RejectedError {
	l := strings.ToLower(reason)
	return &RejectedError{
		Reason:              reason,
		InsufficientBalance: strings.Contains(l, "insufficient") || strings.Contains(l, "margin"),
	}
}

// ConnectionError wraps a transport failure so errors.Is(err, ErrConnection)
// holds while keeping the cause.
func ConnectionError(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrConnection, cause)
}
