package prefs

import (
	"context"
	"strconv"
	"time"

	logx "tabwheel/pkg/logx"
)

// Storage keys. Interval values are stored as integer milliseconds,
// booleans as "0"/"1", the first-run marker as unix milliseconds.
const (
	keyFlipInterval    = "flip_interval_ms"
	keyReloadInterval  = "reload_interval_ms"
	keyAutoStart       = "auto_start"
	keyPauseWhenActive = "pause_when_active"
	keyFirstRunAt      = "first_run_at"
)

// Defaults applied when a key has never been written.
const (
	DefaultFlipInterval   = 16 * time.Second
	DefaultReloadInterval = 31 * time.Minute
)

// Prefs exposes typed accessors over a Store.
//
// Read failures degrade to the default value (with a warn log) rather than
// surfacing an error: a scheduling tick has nothing useful to do with a
// storage error, and stale defaults keep the carousel alive.
type Prefs struct {
	store Store
	log   logx.Logger
}

func New(store Store, log logx.Logger) *Prefs {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Prefs{store: store, log: log}
}

func (p *Prefs) FlipInterval(ctx context.Context) time.Duration {
	return p.durationMS(ctx, keyFlipInterval, DefaultFlipInterval)
}

func (p *Prefs) SetFlipInterval(ctx context.Context, d time.Duration) error {
	return p.store.Put(ctx, keyFlipInterval, strconv.FormatInt(d.Milliseconds(), 10))
}

func (p *Prefs) ReloadInterval(ctx context.Context) time.Duration {
	return p.durationMS(ctx, keyReloadInterval, DefaultReloadInterval)
}

func (p *Prefs) SetReloadInterval(ctx context.Context, d time.Duration) error {
	return p.store.Put(ctx, keyReloadInterval, strconv.FormatInt(d.Milliseconds(), 10))
}

func (p *Prefs) AutoStart(ctx context.Context) bool {
	return p.boolean(ctx, keyAutoStart, false)
}

func (p *Prefs) SetAutoStart(ctx context.Context, v bool) error {
	return p.store.Put(ctx, keyAutoStart, boolVal(v))
}

func (p *Prefs) PauseWhenActive(ctx context.Context) bool {
	return p.boolean(ctx, keyPauseWhenActive, false)
}

func (p *Prefs) SetPauseWhenActive(ctx context.Context, v bool) error {
	return p.store.Put(ctx, keyPauseWhenActive, boolVal(v))
}

// FirstRun returns the recorded first-run timestamp. ok is false until
// MarkFirstRun has been called once; the marker is never cleared.
func (p *Prefs) FirstRun(ctx context.Context) (time.Time, bool) {
	raw, ok, err := p.store.Get(ctx, keyFirstRunAt)
	if err != nil {
		p.log.Warn("prefs read failed", logx.String("key", keyFirstRunAt), logx.Err(err))
		return time.Time{}, false
	}
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.log.Warn("prefs value malformed", logx.String("key", keyFirstRunAt), logx.String("raw", raw))
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func (p *Prefs) MarkFirstRun(ctx context.Context, t time.Time) error {
	return p.store.Put(ctx, keyFirstRunAt, strconv.FormatInt(t.UnixMilli(), 10))
}

func (p *Prefs) durationMS(ctx context.Context, key string, def time.Duration) time.Duration {
	raw, ok, err := p.store.Get(ctx, key)
	if err != nil {
		p.log.Warn("prefs read failed", logx.String("key", key), logx.Err(err))
		return def
	}
	if !ok {
		return def
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.log.Warn("prefs value malformed", logx.String("key", key), logx.String("raw", raw))
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func (p *Prefs) boolean(ctx context.Context, key string, def bool) bool {
	raw, ok, err := p.store.Get(ctx, key)
	if err != nil {
		p.log.Warn("prefs read failed", logx.String("key", key), logx.Err(err))
		return def
	}
	if !ok {
		return def
	}
	return raw == "1" || raw == "true"
}

func boolVal(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
