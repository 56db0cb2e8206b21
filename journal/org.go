package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatSubmissionOrg renders a submission as an Org-mode block. Structured
// facts go in a PROPERTIES drawer so they stay searchable.
func FormatSubmissionOrg(s Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** %s %s %s %s (%s)\n", strings.ToUpper(s.State), s.Side, s.Size, s.Symbol, shortID(s.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", s.ID)
	fmt.Fprintf(&b, ":TIME: %s\n", s.Time.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":SYMBOL: %s\n", s.Symbol)
	fmt.Fprintf(&b, ":SIDE: %s\n", s.Side)
	fmt.Fprintf(&b, ":SIZE: %s\n", s.Size)
	if s.OrderType != "" {
		fmt.Fprintf(&b, ":ORDER_TYPE: %s\n", s.OrderType)
	}
	if s.LimitPrice.Valid {
		fmt.Fprintf(&b, ":LIMIT_PRICE: %s\n", s.LimitPrice.Decimal)
	}
	if s.ProtectivePrice.Valid {
		fmt.Fprintf(&b, ":PROTECTIVE_PRICE: %s\n", s.ProtectivePrice.Decimal)
	}
	fmt.Fprintf(&b, ":LEVERAGE: %d\n", s.Leverage)
	fmt.Fprintf(&b, ":REDUCE_ONLY: %t\n", s.ReduceOnly)
	fmt.Fprintf(&b, ":TIF: %s\n", s.TimeInForce)
	if s.Notional.Valid {
		fmt.Fprintf(&b, ":NOTIONAL: %s\n", s.Notional.Decimal.StringFixed(2))
	}
	fmt.Fprintf(&b, ":STATE: %s\n", s.State)
	if s.Reason != "" {
		fmt.Fprintf(&b, ":REASON: %s\n", s.Reason)
	}
	if s.ExchangeOrderID != 0 {
		fmt.Fprintf(&b, ":EXCHANGE_OID: %d\n", s.ExchangeOrderID)
	}
	if s.ClientID != "" {
		fmt.Fprintf(&b, ":CLIENT_ID: %s\n", s.ClientID)
	}
	b.WriteString(":END:\n")
	b.WriteString("\n*** Notes\n- \n")
	return b.String()
}

// FormatSubmissionsOrg renders several submissions separated by blank lines.
func FormatSubmissionsOrg(subs []Submission) string {
	var b strings.Builder
	for i, s := range subs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatSubmissionOrg(s))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
