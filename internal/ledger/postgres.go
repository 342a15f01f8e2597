package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/call-insights/internal/db"
)

const postgresMigration = `
CREATE TABLE IF NOT EXISTS processed_calls (
	call_id      TEXT PRIMARY KEY,
	processed_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

var processedCalls = db.InsertConfig{
	Table:        "processed_calls",
	Columns:      []string{"call_id", "processed_at"},
	ConflictKeys: []string{"call_id"},
}

// PostgresLedger stores call ids in PostgreSQL. It lets several hosts share
// one ledger, though the single-writer assumption still holds.
type PostgresLedger struct {
	set
	pool db.Pool
}

// NewPostgres connects to the database and creates the table if needed.
func NewPostgres(ctx context.Context, connString string) (*PostgresLedger, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: postgres parse config")
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: postgres create pool")
	}
	l := newPostgresWithPool(pool)
	if err := l.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return l, nil
}

func newPostgresWithPool(pool db.Pool) *PostgresLedger {
	return &PostgresLedger{set: newSet(), pool: pool}
}

func (l *PostgresLedger) migrate(ctx context.Context) error {
	if err := l.pool.Ping(ctx); err != nil {
		return eris.Wrap(err, "ledger: postgres ping")
	}
	if _, err := l.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "ledger: postgres migrate")
	}
	return nil
}

func (l *PostgresLedger) Load(ctx context.Context) error {
	rows, err := l.pool.Query(ctx, `SELECT call_id FROM processed_calls`)
	if err != nil {
		return eris.Wrap(err, "ledger: postgres load")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return eris.Wrap(err, "ledger: postgres scan")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return eris.Wrap(err, "ledger: postgres rows")
	}

	l.replace(ids)
	return nil
}

// Persist inserts every id marked since the last persist in one transaction.
func (l *PostgresLedger) Persist(ctx context.Context) error {
	ids := l.pendingIDs()
	if len(ids) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, len(ids))
	for i, id := range ids {
		rows[i] = []any{id, now}
	}
	if _, err := db.BulkInsertMissing(ctx, l.pool, processedCalls, rows); err != nil {
		return eris.Wrap(err, "ledger: postgres persist")
	}

	l.flushed(ids)
	return nil
}

func (l *PostgresLedger) Close() error {
	l.pool.Close()
	return nil
}
