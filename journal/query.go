package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("submission not found")

const selectSubmission = `
	SELECT id, time, symbol, side, size, order_type, limit_price, protective_price,
	       leverage, reduce_only, tif, notional, state, reason, exchange_oid, client_id
	FROM submissions`

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (Submission, error) {
	var rec Submission
	err := row.Scan(
		&rec.ID,
		&rec.Time,
		&rec.Symbol,
		&rec.Side,
		&rec.Size,
		&rec.OrderType,
		&rec.LimitPrice,
		&rec.ProtectivePrice,
		&rec.Leverage,
		&rec.ReduceOnly,
		&rec.TimeInForce,
		&rec.Notional,
		&rec.State,
		&rec.Reason,
		&rec.ExchangeOrderID,
		&rec.ClientID,
	)
	return rec, err
}

// Get returns a single submission by ID.
func (j *SQLite) Get(id string) (Submission, error) {
	rec, err := scanSubmission(j.db.QueryRow(selectSubmission+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return Submission{}, err
	}
	return rec, nil
}

// ListBetween returns submissions with time in [start, end), oldest first.
func (j *SQLite) ListBetween(start, end time.Time) ([]Submission, error) {
	rows, err := j.db.Query(selectSubmission+`
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, id ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		rec, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Summary counts submissions per state in [start, end).
func (j *SQLite) Summary(start, end time.Time) (map[string]int, error) {
	rows, err := j.db.Query(`
		SELECT state, COUNT(*) FROM submissions
		WHERE time >= ? AND time < ?
		GROUP BY state`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			state string
			n     int
		)
		if err := rows.Scan(&state, &n); err != nil {
			return nil, err
		}
		out[state] = n
	}
	return out, rows.Err()
}
