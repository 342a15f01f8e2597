package ledger

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// FileLedger stores one call id per line in a UTF-8 text file.
type FileLedger struct {
	set
	path string
}

// NewFile creates a ledger backed by path. The file need not exist.
func NewFile(path string) *FileLedger {
	return &FileLedger{set: newSet(), path: path}
}

// Load reads every non-blank line. A missing file is an empty ledger.
func (l *FileLedger) Load(_ context.Context) error {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		l.replace(nil)
		return nil
	}
	if err != nil {
		return eris.Wrapf(err, "ledger: open %s", l.path)
	}
	defer f.Close() //nolint:errcheck

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	if err := sc.Err(); err != nil {
		return eris.Wrapf(err, "ledger: read %s", l.path)
	}

	l.replace(ids)
	return nil
}

// Persist rewrites the whole file from the in-memory set. The new content is
// written to a temp file in the same directory and renamed over the old one.
func (l *FileLedger) Persist(_ context.Context) error {
	ids := l.IDs()

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "ledger: mkdir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "ledger: create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	w := bufio.NewWriter(tmp)
	for _, id := range ids {
		if _, err := w.WriteString(id + "\n"); err != nil {
			tmp.Close() //nolint:errcheck
			return eris.Wrap(err, "ledger: write temp file")
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "ledger: flush temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "ledger: close temp file")
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return eris.Wrapf(err, "ledger: replace %s", l.path)
	}

	l.flushed(ids)
	return nil
}

// Close is a no-op.
func (l *FileLedger) Close() error { return nil }
