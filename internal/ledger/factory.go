package ledger

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/call-insights/internal/config"
)

// New builds the configured backend and loads it.
func New(ctx context.Context, cfg config.LedgerConfig) (Ledger, error) {
	var (
		l   Ledger
		err error
	)
	switch cfg.Driver {
	case "", "file":
		l = NewFile(cfg.Path)
	case "sqlite":
		l, err = NewSQLite(ctx, cfg.Path)
	case "postgres":
		l, err = NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("ledger: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := l.Load(ctx); err != nil {
		l.Close() //nolint:errcheck
		return nil, err
	}
	return l, nil
}
