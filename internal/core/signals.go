package core

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	logx "tabwheel/pkg/logx"
)

// watchToggleSignal treats SIGUSR1 as the user's trigger: start the
// carousel, or stop it if it is already spinning.
func (a *App) watchToggleSignal(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			a.log.Debug("toggle signal received")
			if err := a.ctrl.Toggle(ctx); err != nil {
				a.log.Warn("toggle failed", logx.Err(err))
			}
		}
	}
}
