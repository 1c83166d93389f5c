package core

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	logx "tabwheel/pkg/logx"
)

// notifySystemd reports readiness and, when WatchdogSec is set on the
// unit, keeps the watchdog fed. Outside systemd both calls are no-ops.
func (a *App) notifySystemd(ctx context.Context) {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		a.log.Debug("sd_notify ready failed", logx.Err(err))
	}

	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}

	t := time.NewTicker(interval / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}
	}
}

func sdStopping() {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
}
