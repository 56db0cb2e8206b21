// Package display renders exchange and journal data as terminal tables.
package display

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rustyeddy/hltrader/broker"
	"github.com/rustyeddy/hltrader/journal"
	"github.com/rustyeddy/hltrader/risk"
	"github.com/shopspring/decimal"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

func usd(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

func pct(d decimal.Decimal) string { return d.Mul(decimal.NewFromInt(100)).StringFixed(4) + "%" }

func signed(d decimal.Decimal) string {
	s := usd(d.Abs())
	if d.IsNegative() {
		return text.FgRed.Sprint("-" + s)
	}
	return text.FgGreen.Sprint("+" + s)
}

func Markets(w io.Writer, ms []broker.MarketInfo) {
	t := newTable(w, fmt.Sprintf("PERPETUAL MARKETS (%d)", len(ms)))
	t.AppendHeader(table.Row{"Symbol", "Mark", "24h Volume", "Funding", "Open Interest", "Max Lev"})
	for _, m := range ms {
		t.AppendRow(table.Row{m.Symbol, m.MarkPrice.String(), usd(m.Volume24h), pct(m.FundingRate), m.OpenInterest.String(), fmt.Sprintf("%dx", m.MaxLeverage)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	t.Render()
}

func Balances(w io.Writer, b broker.Balances) {
	t := newTable(w, "ACCOUNT")
	t.AppendRows([]table.Row{
		{"Account Value", usd(b.AccountValue)},
		{"Withdrawable", usd(b.Withdrawable)},
		{"Cross Margin Used", usd(b.CrossMarginUsed)},
	})
	t.Render()

	if len(b.Positions) == 0 {
		fmt.Fprintln(w, "No open positions")
		return
	}
	p := newTable(w, "POSITIONS")
	p.AppendHeader(table.Row{"Symbol", "Size", "Entry", "Leverage", "Value", "PnL"})
	total := decimal.Zero
	for _, pos := range b.Positions {
		total = total.Add(pos.UnrealizedPnL)
		p.AppendRow(table.Row{pos.Symbol, pos.Size.String(), pos.EntryPrice.String(), fmt.Sprintf("%dx", pos.Leverage), usd(pos.PositionValue), signed(pos.UnrealizedPnL)})
	}
	p.AppendFooter(table.Row{"", "", "", "", "Total", signed(total)})
	p.Render()
}

func Spot(w io.Writer, s broker.SpotMarkets) {
	t := newTable(w, fmt.Sprintf("SPOT PAIRS (%d)", len(s.Pairs)))
	t.AppendHeader(table.Row{"Pair", "Mark", "Mid", "24h Volume"})
	for _, p := range s.Pairs {
		t.AppendRow(table.Row{p.Name, p.MarkPrice.String(), p.MidPrice.String(), usd(p.Volume24h)})
	}
	t.Render()
	fmt.Fprintf(w, "%d tokens listed\n", len(s.Tokens))
}

func OpenOrders(w io.Writer, orders []broker.OpenOrder) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No open orders")
		return
	}
	t := newTable(w, "OPEN ORDERS")
	t.AppendHeader(table.Row{"OID", "Symbol", "Side", "Price", "Size", "Orig", "Placed"})
	for _, o := range orders {
		t.AppendRow(table.Row{o.OrderID, o.Symbol, o.Side.String(), o.Price.String(), o.Size.String(), o.OrigSize.String(), o.Timestamp.Format("2006-01-02 15:04:05")})
	}
	t.Render()
}

func Ack(w io.Writer, a broker.OrderAck) {
	t := newTable(w, "ORDER ACCEPTED")
	t.AppendRows([]table.Row{
		{"Symbol", a.Symbol.String()},
		{"Side", a.Side.String()},
		{"Size", a.Size.String()},
		{"Order ID", a.OrderID},
		{"Client ID", a.ClientID},
		{"Status", string(a.Status)},
	})
	if a.Status == broker.StatusFilled {
		t.AppendRow(table.Row{"Filled", a.FilledSize.String()})
		if a.AvgPrice.Valid {
			t.AppendRow(table.Row{"Avg Price", a.AvgPrice.Decimal.String()})
		}
	}
	t.Render()
}

// Decision prints the outcome of an evaluate-only check.
func Decision(w io.Writer, d risk.Decision) {
	switch d := d.(type) {
	case risk.Approved:
		in := d.Intent()
		t := newTable(w, text.FgGreen.Sprint("APPROVED"))
		t.AppendRows([]table.Row{
			{"Symbol", in.Symbol.String()},
			{"Side", in.Side.String()},
			{"Size", in.Size.String()},
			{"Mark", d.Snapshot().MarkPrice.String()},
			{"Notional", usd(d.Notional())},
			{"Leverage", fmt.Sprintf("%dx", in.EffectiveLeverage())},
		})
		t.Render()
	case risk.Rejected:
		t := newTable(w, text.FgRed.Sprint("REJECTED"))
		t.AppendRows([]table.Row{
			{"Code", d.Violation.Code()},
			{"Reason", d.Violation.String()},
		})
		t.Render()
	}
}

func Policy(w io.Writer, p *risk.Policy) {
	g := p.Global()
	t := newTable(w, "RISK POLICY")
	t.AppendHeader(table.Row{"Symbol", "Enabled", "Max Lev", "Max Notional", "Effective Cap"})
	for _, sym := range p.Symbols() {
		l, _ := p.Lookup(sym)
		t.AppendRow(table.Row{sym.String(), l.Enabled, fmt.Sprintf("%dx", l.MaxLeverage), usd(l.MaxNotional), usd(p.SymbolCap(l))})
	}
	t.AppendFooter(table.Row{"Per order", usd(g.MaxNotionalPerOrder), "Per symbol", usd(g.MaxNotionalPerSymbol), ""})
	t.Render()
}

func Submissions(w io.Writer, subs []journal.Submission) {
	if len(subs) == 0 {
		fmt.Fprintln(w, "No submissions")
		return
	}
	t := newTable(w, fmt.Sprintf("SUBMISSIONS (%d)", len(subs)))
	t.AppendHeader(table.Row{"Time", "Symbol", "Side", "Size", "Type", "Notional", "State", "OID", "Reason"})
	for _, s := range subs {
		notional := ""
		if s.Notional.Valid {
			notional = usd(s.Notional.Decimal)
		}
		oid := ""
		if s.ExchangeOrderID != 0 {
			oid = fmt.Sprint(s.ExchangeOrderID)
		}
		t.AppendRow(table.Row{s.Time.Format("2006-01-02 15:04:05"), s.Symbol, s.Side, s.Size.String(), s.OrderType, notional, s.State, oid, s.Reason})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 9, WidthMax: 48}})
	t.Render()
}
