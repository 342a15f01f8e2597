package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS processed_calls (
	call_id      TEXT PRIMARY KEY,
	processed_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// SQLiteLedger stores call ids in a local SQLite database.
type SQLiteLedger struct {
	set
	db *sql.DB
}

// NewSQLite opens the database at dsn, configures WAL mode and creates the
// table if needed.
func NewSQLite(ctx context.Context, dsn string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "ledger: sqlite exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteMigration); err != nil {
		db.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "ledger: sqlite migrate")
	}
	return &SQLiteLedger{set: newSet(), db: db}, nil
}

func (l *SQLiteLedger) Load(ctx context.Context) error {
	rows, err := l.db.QueryContext(ctx, `SELECT call_id FROM processed_calls`)
	if err != nil {
		return eris.Wrap(err, "ledger: sqlite load")
	}
	defer rows.Close() //nolint:errcheck

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return eris.Wrap(err, "ledger: sqlite scan")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return eris.Wrap(err, "ledger: sqlite rows")
	}

	l.replace(ids)
	return nil
}

// Persist inserts every id marked since the last persist in one transaction.
// Ids already stored are left untouched.
func (l *SQLiteLedger) Persist(ctx context.Context) error {
	ids := l.pendingIDs()
	if len(ids) == 0 {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "ledger: sqlite begin")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO processed_calls (call_id, processed_at) VALUES (?, ?)`)
	if err != nil {
		return eris.Wrap(err, "ledger: sqlite prepare")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id, now); err != nil {
			return eris.Wrapf(err, "ledger: sqlite insert %s", id)
		}
	}
	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "ledger: sqlite commit")
	}

	l.flushed(ids)
	return nil
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
