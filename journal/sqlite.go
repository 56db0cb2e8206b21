package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordSubmission(s Submission) error {
	_, err := j.db.Exec(`
		INSERT INTO submissions
		(id, time, symbol, side, size, order_type, limit_price, protective_price,
		 leverage, reduce_only, tif, notional, state, reason, exchange_oid, client_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Time.UTC(), s.Symbol, s.Side, s.Size.String(), s.OrderType,
		s.LimitPrice, s.ProtectivePrice,
		s.Leverage, s.ReduceOnly, s.TimeInForce, s.Notional,
		s.State, s.Reason, s.ExchangeOrderID, s.ClientID,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
