// Package core assembles the daemon: config, logging, preference store,
// browser host, carousel engine, and the optional calendar and Telegram
// services.
package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"tabwheel/internal/activation"
	"tabwheel/internal/browser"
	"tabwheel/internal/browser/cdp"
	"tabwheel/internal/calendar"
	"tabwheel/internal/carousel"
	"tabwheel/internal/config"
	"tabwheel/internal/eventbus"
	"tabwheel/internal/notifier"
	"tabwheel/internal/prefs"
	logx "tabwheel/pkg/logx"
)

type App struct {
	cfgm *config.Manager
	logs *logx.Service
	log  logx.Logger

	bus   eventbus.Bus
	store prefs.Store
	prefs *prefs.Prefs
	host  browser.Host
	wheel *carousel.Scheduler
	ctrl  *activation.Controller
	cal   *calendar.Service
	notif *notifier.Service

	cancel context.CancelFunc
}

func NewApp(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", cfgPath, err)
	}

	logs, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	a := &App{cfgm: cfgm, logs: logs, log: log}

	busy, err := config.ParseDurationField("prefs.busy_timeout", cfg.Prefs.BusyTimeout)
	if err != nil {
		a.closePartial()
		return nil, err
	}
	store, err := prefs.Open(prefs.Config{
		Driver:      cfg.Prefs.Driver,
		Path:        cfg.Prefs.Path,
		BusyTimeout: busy,
	}, log.With(logx.String("comp", "prefs")))
	if err != nil {
		a.closePartial()
		return nil, fmt.Errorf("prefs store: %w", err)
	}
	a.store = store
	a.prefs = prefs.New(store, log.With(logx.String("comp", "prefs")))

	host, err := openHost(cfg.Browser, log)
	if err != nil {
		a.closePartial()
		return nil, err
	}
	a.host = host

	a.bus = eventbus.New()
	gate := carousel.NewIdleGate(host, a.prefs, log.With(logx.String("comp", "idlegate")))
	throttle := carousel.NewThrottle(a.prefs, log.With(logx.String("comp", "throttle")))
	a.wheel = carousel.New(host, a.prefs, gate, throttle, a.bus, log.With(logx.String("comp", "carousel")))
	a.ctrl = activation.New(a.prefs, a.wheel, a.bus, log.With(logx.String("comp", "activation")))
	a.cal = calendar.New(cfg.Calendar, a.wheel, log.With(logx.String("comp", "calendar")))

	ncfg := notifier.Config{}
	if cfg.Telegram != nil {
		ncfg = notifier.Config{
			Enabled:    cfg.Telegram.Enabled,
			Token:      cfg.Telegram.Token,
			ChatID:     cfg.Telegram.ChatID,
			RatePerSec: cfg.Telegram.RatePerSec,
		}
	}
	notif, err := notifier.New(ncfg, log.With(logx.String("comp", "notifier")))
	if err != nil {
		a.closePartial()
		return nil, err
	}
	a.notif = notif

	return a, nil
}

func openHost(cfg config.BrowserConfig, log logx.Logger) (browser.Host, error) {
	connectTimeout, err := config.ParseDurationField("browser.connect_timeout", cfg.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case "", "cdp":
		return cdp.Connect(cdp.Config{
			Endpoint:       cfg.Endpoint,
			ConnectTimeout: connectTimeout,
		}, log.With(logx.String("comp", "cdp")))
	default:
		return nil, fmt.Errorf("browser: unknown driver %q", cfg.Driver)
	}
}

func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.notif.Start(runCtx, a.bus)
	if err := a.cal.Start(runCtx); err != nil {
		cancel()
		return err
	}

	go a.watchConfig(runCtx)
	go a.watchToggleSignal(runCtx)
	go a.notifySystemd(runCtx)

	if err := a.ctrl.AutoStart(runCtx); err != nil {
		a.log.Warn("auto-start failed", logx.Err(err))
	}

	a.log.Info("tabwheel started")
	return nil
}

// watchConfig hot-reloads the logging section. Preference changes don't
// come through here: they live in the store, not the config file.
func (a *App) watchConfig(ctx context.Context) {
	updates := a.cfgm.Subscribe(4)
	defer a.cfgm.Unsubscribe(updates)

	go func() { _ = a.cfgm.Watch(ctx) }()

	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-updates:
			if !ok || cfg == nil {
				return
			}
			a.logs.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.Logging.Console,
				File: logx.FileConfig{
					Enabled: cfg.Logging.File.Enabled,
					Path:    cfg.Logging.File.Path,
				},
			})
			a.log.Info("config reloaded", logx.String("log_level", cfg.Logging.Level))
		}
	}
}

func (a *App) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	sdStopping()

	// Bounded stop: one stuck component must not hang the unit past
	// systemd's TimeoutStopSec.
	step := func(name string, max time.Duration, fn func()) {
		done := make(chan struct{})
		go func() {
			defer close(done)
			fn()
		}()
		select {
		case <-done:
		case <-time.After(max):
			a.log.Warn("stop step timed out", logx.String("step", name), logx.Duration("max", max))
		case <-ctx.Done():
			a.log.Warn("stop interrupted", logx.String("step", name))
		}
	}

	step("calendar", 5*time.Second, a.cal.Stop)
	step("carousel", 5*time.Second, func() { a.wheel.Stop(ctx) })
	step("notifier", 5*time.Second, a.notif.Stop)

	if c, ok := a.host.(io.Closer); ok {
		step("browser", 5*time.Second, func() {
			if err := c.Close(); err != nil {
				a.log.Warn("browser detach failed", logx.Err(err))
			}
		})
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("prefs store close failed", logx.Err(err))
	}

	a.log.Info("tabwheel stopped")
	a.logs.Close()
	return nil
}

func (a *App) closePartial() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if c, ok := a.host.(io.Closer); ok {
		_ = c.Close()
	}
	if a.logs != nil {
		a.logs.Close()
	}
}
