package journal

// Decimals are stored as TEXT to keep exact values.
const Schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	size TEXT NOT NULL,
	order_type TEXT NOT NULL,
	limit_price TEXT,
	protective_price TEXT,
	leverage INTEGER NOT NULL,
	reduce_only INTEGER NOT NULL,
	tif TEXT NOT NULL,
	notional TEXT,
	state TEXT NOT NULL,
	reason TEXT NOT NULL,
	exchange_oid INTEGER NOT NULL,
	client_id TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_time ON submissions(time);
CREATE INDEX IF NOT EXISTS idx_submissions_symbol ON submissions(symbol);
`
