package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var csvHeader = []string{
	"id", "time", "symbol", "side", "size", "order_type", "limit_price", "protective_price",
	"leverage", "reduce_only", "tif", "notional", "state", "reason", "exchange_oid", "client_id",
}

// CSV appends submissions to a file. A new file gets a header row.
type CSV struct {
	mu sync.Mutex
	w  *csv.Writer
	f  *os.File
}

func NewCSV(path string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			_ = f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	return &CSV{w: w, f: f}, nil
}

func (j *CSV) RecordSubmission(s Submission) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.w.Write(csvRow(s)); err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}

func csvRow(s Submission) []string {
	return []string{
		s.ID,
		s.Time.UTC().Format(time.RFC3339Nano),
		s.Symbol,
		s.Side,
		s.Size.String(),
		s.OrderType,
		nullString(s.LimitPrice),
		nullString(s.ProtectivePrice),
		strconv.FormatUint(uint64(s.Leverage), 10),
		strconv.FormatBool(s.ReduceOnly),
		s.TimeInForce,
		nullString(s.Notional),
		s.State,
		s.Reason,
		strconv.FormatUint(s.ExchangeOrderID, 10),
		s.ClientID,
	}
}

func nullString(n decimal.NullDecimal) string {
	if !n.Valid {
		return ""
	}
	return n.Decimal.String()
}
