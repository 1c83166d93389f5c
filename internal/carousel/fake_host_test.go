package carousel

import (
	"context"
	"sync"
	"time"

	"tabwheel/internal/browser"
)

// fakeHost is an in-memory browser.Host for engine tests.
type fakeHost struct {
	mu sync.Mutex

	window  browser.WindowID
	winGate chan struct{}
	tabs    []browser.Tab
	idle    browser.IdleState
	idleErr error
	tabsErr error

	activated []browser.TabID
	reloaded  []browser.TabID
	indicator []bool
}

func newFakeHost(tabs ...browser.Tab) *fakeHost {
	return &fakeHost{window: 1, tabs: tabs, idle: browser.Idle}
}

func (h *fakeHost) CurrentWindow(ctx context.Context) (browser.WindowID, error) {
	_ = ctx
	h.mu.Lock()
	gate := h.winGate
	win := h.window
	h.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return win, nil
}

func (h *fakeHost) Tabs(ctx context.Context, win browser.WindowID) ([]browser.Tab, error) {
	_ = ctx
	_ = win
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.tabsErr != nil {
		return nil, h.tabsErr
	}
	out := make([]browser.Tab, len(h.tabs))
	copy(out, h.tabs)
	return out, nil
}

func (h *fakeHost) Activate(ctx context.Context, id browser.TabID) error {
	_ = ctx
	h.mu.Lock()
	defer h.mu.Unlock()
	h.activated = append(h.activated, id)
	return nil
}

func (h *fakeHost) Reload(ctx context.Context, id browser.TabID) error {
	_ = ctx
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloaded = append(h.reloaded, id)
	return nil
}

func (h *fakeHost) IdleState(ctx context.Context, threshold time.Duration) (browser.IdleState, error) {
	_ = ctx
	_ = threshold
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.idleErr != nil {
		return "", h.idleErr
	}
	return h.idle, nil
}

func (h *fakeHost) SetIndicator(ctx context.Context, running bool) error {
	_ = ctx
	h.mu.Lock()
	defer h.mu.Unlock()
	h.indicator = append(h.indicator, running)
	return nil
}

func (h *fakeHost) setIdle(state browser.IdleState) {
	h.mu.Lock()
	h.idle = state
	h.mu.Unlock()
}

func (h *fakeHost) setTabs(tabs ...browser.Tab) {
	h.mu.Lock()
	h.tabs = tabs
	h.mu.Unlock()
}

func (h *fakeHost) setTabsErr(err error) {
	h.mu.Lock()
	h.tabsErr = err
	h.mu.Unlock()
}

func (h *fakeHost) setIdleErr(err error) {
	h.mu.Lock()
	h.idleErr = err
	h.mu.Unlock()
}

// blockWindow makes CurrentWindow hang until gate is closed.
func (h *fakeHost) blockWindow(gate chan struct{}) {
	h.mu.Lock()
	h.winGate = gate
	h.mu.Unlock()
}

func (h *fakeHost) activations() []browser.TabID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]browser.TabID(nil), h.activated...)
}

func (h *fakeHost) reloads() []browser.TabID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]browser.TabID(nil), h.reloaded...)
}

func (h *fakeHost) lastIndicator() (bool, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.indicator) == 0 {
		return false, false
	}
	return h.indicator[len(h.indicator)-1], true
}
