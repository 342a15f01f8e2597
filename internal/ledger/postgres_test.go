package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgresLedger(t *testing.T) (*PostgresLedger, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return newPostgresWithPool(mock), mock
}

func TestPostgresLedger_Migrate(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	mock.ExpectPing()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS processed_calls`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, l.migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_Load(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	mock.ExpectQuery(`SELECT call_id FROM processed_calls`).
		WillReturnRows(pgxmock.NewRows([]string{"call_id"}).AddRow("42").AddRow("7"))

	require.NoError(t, l.Load(context.Background()))
	assert.Equal(t, []string{"42", "7"}, l.IDs())
	assert.True(t, l.Contains("42"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_LoadError(t *testing.T) {
	l, mock := newMockPostgresLedger(t)
	mock.ExpectQuery(`SELECT call_id`).WillReturnError(errors.New("connection refused"))

	err := l.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger: postgres load")
}

func TestPostgresLedger_PersistOnlyPending(t *testing.T) {
	l, mock := newMockPostgresLedger(t)

	mock.ExpectQuery(`SELECT call_id`).
		WillReturnRows(pgxmock.NewRows([]string{"call_id"}).AddRow("41"))
	require.NoError(t, l.Load(context.Background()))

	l.Mark("41") // already durable
	l.Mark("42")

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_insert_processed_calls"}, []string{"call_id", "processed_at"}).
		WillReturnResult(1)
	mock.ExpectExec(`INSERT INTO "processed_calls" .* ON CONFLICT \("call_id"\) DO NOTHING`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, l.Persist(context.Background()))
	assert.Empty(t, l.pendingIDs())

	// Nothing pending: no database round trip.
	require.NoError(t, l.Persist(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_PersistErrorKeepsPending(t *testing.T) {
	l, mock := newMockPostgresLedger(t)
	l.Mark("42")

	mock.ExpectBegin().WillReturnError(errors.New("pool closed"))

	err := l.Persist(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger: postgres persist")
	assert.Equal(t, []string{"42"}, l.pendingIDs())
}
