package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/call-insights/internal/config"
)

func configFor(driver, path string) config.LedgerConfig {
	return config.LedgerConfig{Driver: driver, Path: path}
}

func TestSQLiteLedger_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	l, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, l.Load(ctx))
	assert.Equal(t, 0, l.Len())

	l.Mark("42")
	l.Mark("43")
	require.NoError(t, l.Persist(ctx))
	// Persisting again with nothing pending is a no-op.
	require.NoError(t, l.Persist(ctx))
	require.NoError(t, l.Close())

	reopened, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close() //nolint:errcheck
	require.NoError(t, reopened.Load(ctx))
	assert.Equal(t, []string{"42", "43"}, reopened.IDs())

	reopened.Mark("43")
	reopened.Mark("44")
	require.NoError(t, reopened.Persist(ctx))
	require.NoError(t, reopened.Load(ctx))
	assert.Equal(t, 3, reopened.Len())
}

func TestSQLiteLedger_PersistAfterClose(t *testing.T) {
	ctx := context.Background()
	l, err := NewSQLite(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l.Mark("42")
	assert.Error(t, l.Persist(ctx))
	// The id stays pending for the next attempt.
	assert.Equal(t, []string{"42"}, l.pendingIDs())
}
