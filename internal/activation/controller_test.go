package activation

import (
	"context"
	"sync"
	"testing"
	"time"

	"tabwheel/internal/browser"
	"tabwheel/internal/carousel"
	"tabwheel/internal/eventbus"
	"tabwheel/internal/prefs"
	logx "tabwheel/pkg/logx"
)

// stubHost is the minimal Host needed to start/stop a scheduler.
type stubHost struct {
	mu        sync.Mutex
	indicator []bool
}

func (h *stubHost) CurrentWindow(ctx context.Context) (browser.WindowID, error) { return 1, nil }
func (h *stubHost) Tabs(ctx context.Context, win browser.WindowID) ([]browser.Tab, error) {
	return []browser.Tab{{ID: 1}}, nil
}
func (h *stubHost) Activate(ctx context.Context, id browser.TabID) error { return nil }
func (h *stubHost) Reload(ctx context.Context, id browser.TabID) error   { return nil }
func (h *stubHost) IdleState(ctx context.Context, threshold time.Duration) (browser.IdleState, error) {
	return browser.Idle, nil
}
func (h *stubHost) SetIndicator(ctx context.Context, running bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.indicator = append(h.indicator, running)
	return nil
}

func newFixture(t *testing.T) (*Controller, *carousel.Scheduler, *prefs.Prefs, eventbus.Bus) {
	t.Helper()
	p := prefs.New(prefs.NewMemory(), logx.Nop())
	host := &stubHost{}
	bus := eventbus.New()
	wheel := carousel.New(host, p,
		carousel.NewIdleGate(host, p, logx.Nop()),
		carousel.NewThrottle(p, logx.Nop()),
		bus, logx.Nop())
	return New(p, wheel, bus, logx.Nop()), wheel, p, bus
}

func TestFirstTriggerShowsTutorialAndStarts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl, wheel, p, bus := newFixture(t)

	events, unsub := bus.Subscribe(8)
	defer unsub()

	if err := ctrl.Toggle(ctx); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	defer wheel.Stop(ctx)

	if _, ok := p.FirstRun(ctx); !ok {
		t.Fatal("first-run marker not set")
	}
	if !wheel.Running() {
		t.Fatal("carousel should start on first trigger")
	}

	select {
	case e := <-events:
		if e.Type != eventbus.EventTutorialShown {
			t.Fatalf("first event = %s, want tutorial.shown", e.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no tutorial event published")
	}
}

func TestSecondTriggerStopsWithoutTutorial(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl, wheel, p, bus := newFixture(t)

	if err := ctrl.Toggle(ctx); err != nil {
		t.Fatalf("first Toggle: %v", err)
	}
	first, _ := p.FirstRun(ctx)

	events, unsub := bus.Subscribe(8)
	defer unsub()

	if err := ctrl.Toggle(ctx); err != nil {
		t.Fatalf("second Toggle: %v", err)
	}
	if wheel.Running() {
		t.Fatal("second trigger should stop the carousel")
	}
	again, _ := p.FirstRun(ctx)
	if !again.Equal(first) {
		t.Fatal("first-run marker must not be rewritten")
	}
	for {
		select {
		case e := <-events:
			if e.Type == eventbus.EventTutorialShown {
				t.Fatal("tutorial shown twice")
			}
			continue
		default:
		}
		break
	}
}

func TestAutoStart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl, wheel, p, _ := newFixture(t)

	// Disabled: nothing happens.
	if err := ctrl.AutoStart(ctx); err != nil {
		t.Fatalf("AutoStart (disabled): %v", err)
	}
	if wheel.Running() {
		t.Fatal("carousel must not start with auto-start off")
	}

	if err := p.SetAutoStart(ctx, true); err != nil {
		t.Fatalf("SetAutoStart: %v", err)
	}
	if err := ctrl.AutoStart(ctx); err != nil {
		t.Fatalf("AutoStart: %v", err)
	}
	defer wheel.Stop(ctx)
	if !wheel.Running() {
		t.Fatal("carousel should be running after auto-start")
	}
	if _, ok := p.FirstRun(ctx); ok {
		t.Fatal("auto-start is not a trigger; no tutorial marker expected")
	}

	// Idempotent when already running.
	if err := ctrl.AutoStart(ctx); err != nil {
		t.Fatalf("AutoStart while running: %v", err)
	}
}
