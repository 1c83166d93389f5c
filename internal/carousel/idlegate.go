package carousel

import (
	"context"
	"time"

	"tabwheel/internal/browser"
	"tabwheel/internal/prefs"
	logx "tabwheel/pkg/logx"
)

// IdleThreshold is how long the user must be inactive before the host
// reports idle. Fixed; not a preference.
const IdleThreshold = 15 * time.Second

// IdleGate decides whether a tick may advance the rotation.
//
// The advance is allowed when pause-when-active is disabled, or when the
// host reports the user idle. A failed idle query counts as "not allowed":
// the tick becomes a no-op but the timer chain keeps running.
type IdleGate struct {
	host  browser.Host
	prefs *prefs.Prefs
	log   logx.Logger
}

func NewIdleGate(host browser.Host, p *prefs.Prefs, log logx.Logger) *IdleGate {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &IdleGate{host: host, prefs: p, log: log}
}

func (g *IdleGate) Allowed(ctx context.Context) bool {
	if !g.prefs.PauseWhenActive(ctx) {
		return true
	}
	state, err := g.host.IdleState(ctx, IdleThreshold)
	if err != nil {
		g.log.Warn("idle query failed; skipping advance", logx.Err(err))
		return false
	}
	return state == browser.Idle
}
