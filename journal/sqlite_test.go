package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func sampleSubmission(id string, at time.Time) Submission {
	return Submission{
		ID:              id,
		Time:            at,
		Symbol:          "BTC",
		Side:            "buy",
		Size:            decimal.RequireFromString("0.015"),
		OrderType:       "market",
		ProtectivePrice: decimal.NewNullDecimal(decimal.RequireFromString("63000.5")),
		Leverage:        3,
		TimeInForce:     "Gtc",
		Notional:        decimal.NewNullDecimal(decimal.RequireFromString("900.0075")),
		State:           "acked",
		ExchangeOrderID: 77738308,
		ClientID:        "0x0000000000000000000000000000abcd",
	}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='submissions'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "submissions", name)
}

func TestSQLiteRecordSubmission(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, j.RecordSubmission(sampleSubmission("S1", at)))
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var (
		symbol, size, state string
		limit               sql.NullString
		protective          string
		oid                 int64
	)
	err = db.QueryRow(`SELECT symbol, size, state, limit_price, protective_price, exchange_oid FROM submissions WHERE id = ?`, "S1").
		Scan(&symbol, &size, &state, &limit, &protective, &oid)
	require.NoError(t, err)

	assert.Equal(t, "BTC", symbol)
	assert.Equal(t, "0.015", size)
	assert.Equal(t, "acked", state)
	assert.False(t, limit.Valid)
	assert.Equal(t, "63000.5", protective)
	assert.Equal(t, int64(77738308), oid)
}

func TestSQLiteDuplicateIDFails(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	s := sampleSubmission("DUP", time.Now())
	require.NoError(t, j.RecordSubmission(s))
	assert.Error(t, j.RecordSubmission(s))
}
