package carousel

import (
	"context"
	"errors"
	"sync"
	"time"

	"tabwheel/internal/browser"
	"tabwheel/internal/eventbus"
	"tabwheel/internal/prefs"
	logx "tabwheel/pkg/logx"
)

var ErrAlreadyRunning = errors.New("carousel already running")

// FlipEvent is published on eventbus.EventTabFlipped.
type FlipEvent struct {
	Window browser.WindowID
	Tab    browser.TabID
	URL    string
	Cursor uint64
}

// ReloadEvent is published on eventbus.EventTabReloaded.
type ReloadEvent struct {
	Tab browser.TabID
	URL string
}

// SkipEvent is published on eventbus.EventTickSkipped.
type SkipEvent struct {
	Reason string // "active", "empty", "tabs", "select"
}

// Scheduler rotates the tabs of one captured window.
type Scheduler struct {
	log      logx.Logger
	host     browser.Host
	prefs    *prefs.Prefs
	gate     *IdleGate
	throttle *Throttle
	bus      eventbus.Bus

	mu             sync.Mutex
	timer          *time.Timer
	gen            uint64
	cursor         uint64
	window         browser.WindowID
	every          time.Duration
	everyFromPrefs bool

	runCtx    context.Context
	runCancel context.CancelFunc
}

func New(host browser.Host, p *prefs.Prefs, gate *IdleGate, throttle *Throttle, bus eventbus.Bus, log logx.Logger) *Scheduler {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Scheduler{
		log:      log,
		host:     host,
		prefs:    p,
		gate:     gate,
		throttle: throttle,
		bus:      bus,
	}
}

// Start captures the current window, resets the cursor, and schedules the
// first tick after every. An explicit every > 0 governs the whole run; with
// every <= 0 the flip-interval preference is used and re-read each tick so
// edits apply without a restart. Returns ErrAlreadyRunning instead of
// spawning a second timer chain.
func (s *Scheduler) Start(ctx context.Context, every time.Duration) error {
	s.mu.Lock()
	if s.timer != nil {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.mu.Unlock()

	// CurrentWindow and the prefs read can block on their transports, so
	// resolve them outside the lock; Running/Stop must stay responsive.
	win, err := s.host.CurrentWindow(ctx)
	if err != nil {
		return err
	}
	fromPrefs := every <= 0
	if fromPrefs {
		every = s.prefs.FlipInterval(ctx)
	}

	s.mu.Lock()
	if s.timer != nil {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.window = win
	s.every = every
	s.everyFromPrefs = fromPrefs
	s.cursor = 0
	s.gen++
	gen := s.gen
	s.runCtx, s.runCancel = context.WithCancel(ctx)
	s.timer = time.AfterFunc(every, func() { s.tick(gen) })
	s.mu.Unlock()

	if err := s.host.SetIndicator(ctx, true); err != nil {
		s.log.Debug("indicator update failed", logx.Err(err))
	}
	s.bus.Publish(eventbus.Event{Type: eventbus.EventCarouselStarted, Data: win})
	s.log.Info("carousel started", logx.Int64("window", int64(win)), logx.Duration("every", every))
	return nil
}

// Stop cancels the pending tick and invalidates in-flight tick work.
// Safe to call when already stopped.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.timer == nil {
		s.mu.Unlock()
		return
	}
	t := s.timer
	s.timer = nil
	s.gen++
	cancel := s.runCancel
	s.runCancel = nil
	s.runCtx = nil
	win := s.window
	s.mu.Unlock()

	t.Stop()
	if cancel != nil {
		cancel()
	}
	if err := s.host.SetIndicator(ctx, false); err != nil {
		s.log.Debug("indicator update failed", logx.Err(err))
	}
	s.bus.Publish(eventbus.Event{Type: eventbus.EventCarouselStopped, Data: win})
	s.log.Info("carousel stopped")
}

// Running reports whether a timer chain is live.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.timer == nil {
		s.mu.Unlock()
		return
	}
	ctx := s.runCtx
	win := s.window
	s.mu.Unlock()

	if s.gate.Allowed(ctx) {
		s.advance(ctx, gen, win)
	} else {
		s.log.Debug("advance gated; user active")
		s.bus.Publish(eventbus.Event{Type: eventbus.EventTickSkipped, Data: SkipEvent{Reason: "active"}})
	}

	// The chain runs continuously while started; only the work inside each
	// tick is gated. A preference-driven run re-reads the flip interval so
	// edits apply from the next tick; an explicit interval sticks.
	s.mu.Lock()
	every, fromPrefs := s.every, s.everyFromPrefs
	s.mu.Unlock()
	if fromPrefs {
		every = s.prefs.FlipInterval(ctx)
	}
	s.mu.Lock()
	if gen == s.gen && s.timer != nil {
		s.every = every
		s.timer = time.AfterFunc(every, func() { s.tick(gen) })
	}
	s.mu.Unlock()
}

func (s *Scheduler) advance(ctx context.Context, gen uint64, win browser.WindowID) {
	tabs, err := s.host.Tabs(ctx, win)
	if err != nil {
		s.log.Warn("tab list read failed", logx.Int64("window", int64(win)), logx.Err(err))
		s.bus.Publish(eventbus.Event{Type: eventbus.EventTickSkipped, Data: SkipEvent{Reason: "tabs"}})
		return
	}
	if len(tabs) == 0 {
		s.log.Debug("window has no tabs; skipping tick", logx.Int64("window", int64(win)))
		s.bus.Publish(eventbus.Event{Type: eventbus.EventTickSkipped, Data: SkipEvent{Reason: "empty"}})
		return
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	cursor := s.cursor
	s.mu.Unlock()

	n := uint64(len(tabs))
	current := tabs[cursor%n]
	if err := s.host.Activate(ctx, current.ID); err != nil {
		// Selection failed: leave the cursor alone so the next tick retries
		// the same position.
		s.log.Warn("tab activate failed", logx.Int64("tab", int64(current.ID)), logx.Err(err))
		s.bus.Publish(eventbus.Event{Type: eventbus.EventTickSkipped, Data: SkipEvent{Reason: "select"}})
		return
	}
	s.bus.Publish(eventbus.Event{Type: eventbus.EventTabFlipped, Data: FlipEvent{Window: win, Tab: current.ID, URL: current.URL, Cursor: cursor}})

	next := tabs[(cursor+1)%n]
	now := time.Now()
	if s.throttle.ShouldReload(ctx, next.ID, now) {
		if err := s.host.Reload(ctx, next.ID); err != nil {
			// Fire-and-forget: the command didn't go out, so don't stamp the
			// ledger; the next pass will try again.
			s.log.Warn("tab reload failed", logx.Int64("tab", int64(next.ID)), logx.Err(err))
		} else {
			s.throttle.RecordReload(next.ID, now)
			s.bus.Publish(eventbus.Event{Type: eventbus.EventTabReloaded, Data: ReloadEvent{Tab: next.ID, URL: next.URL}})
			s.log.Debug("tab reloaded", logx.Int64("tab", int64(next.ID)), logx.String("url", next.URL))
		}
	}

	s.mu.Lock()
	if gen == s.gen {
		s.cursor = cursor + 1
	}
	s.mu.Unlock()
}
