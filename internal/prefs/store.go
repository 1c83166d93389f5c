package prefs

import (
	"context"
	"errors"
	"strings"
	"time"

	logx "tabwheel/pkg/logx"
)

var ErrClosed = errors.New("prefs store closed")

// Config configures the preference store backend.
//
// Driver values:
//   - "sqlite": SQLite database file (default)
//   - "memory": process-local, lost on restart (tests, dry runs)
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store is a string-keyed persistence backend. Get reports presence
// explicitly so callers can distinguish "unset" from a stored zero value.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string) error
	Close() error
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, errors.New("unknown prefs driver: " + driver)
	}
}
