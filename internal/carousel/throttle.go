package carousel

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"tabwheel/internal/browser"
	"tabwheel/internal/prefs"
	logx "tabwheel/pkg/logx"
)

// Throttle decides whether a tab is due for a forced refresh.
//
// It keeps a per-tab ledger of last-reload times. Entries are created
// lazily on first check and never removed; a stale entry for a closed tab
// is harmless. The reload interval is read fresh from prefs on every call,
// so a mid-run preference change takes effect immediately.
//
// On top of the per-tab interval, a global rate limiter caps total reload
// throughput so a mis-set (zero/negative) reload interval cannot turn the
// rotation into a request hammer.
type Throttle struct {
	prefs *prefs.Prefs
	log   logx.Logger

	mu   sync.Mutex
	last map[browser.TabID]time.Time

	limiter *rate.Limiter
}

// Global reload budget: sustained one reload per second, small burst.
const (
	reloadRate  = rate.Limit(1)
	reloadBurst = 30
)

func NewThrottle(p *prefs.Prefs, log logx.Logger) *Throttle {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Throttle{
		prefs:   p,
		log:     log,
		last:    map[browser.TabID]time.Time{},
		limiter: rate.NewLimiter(reloadRate, reloadBurst),
	}
}

// ShouldReload reports whether the tab's last reload is at least one reload
// interval ago (boundary inclusive), or has never happened. A true result
// obliges the caller to fire the reload and then call RecordReload; the two
// steps are not atomic, but the scheduler is the only caller.
func (t *Throttle) ShouldReload(ctx context.Context, id browser.TabID, now time.Time) bool {
	interval := t.prefs.ReloadInterval(ctx)

	t.mu.Lock()
	last, seen := t.last[id]
	t.mu.Unlock()

	if seen && now.Sub(last) < interval {
		return false
	}
	if !t.limiter.Allow() {
		t.log.Debug("reload suppressed by global rate cap", logx.Int64("tab", int64(id)))
		return false
	}
	return true
}

// RecordReload stamps the ledger after a reload was fired.
func (t *Throttle) RecordReload(id browser.TabID, now time.Time) {
	t.mu.Lock()
	t.last[id] = now
	t.mu.Unlock()
}
