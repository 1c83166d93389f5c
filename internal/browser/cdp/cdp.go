// Package cdp adapts a running Chromium, attached over the DevTools
// protocol, to the browser.Host interface.
//
// Windows map to browser contexts and tabs map to pages. Tab identifiers
// are assigned on first sight and stay stable for the lifetime of the
// page, so the carousel's cursor and reload ledger survive tab churn.
package cdp

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"tabwheel/internal/browser"
	logx "tabwheel/pkg/logx"
)

const defaultConnectTimeout = 15 * time.Second

// lastInputJS stamps a timestamp on every user input so IdleState can
// tell an active user from an idle one. Installed as an init script on
// each context and evaluated directly on pages that predate the attach.
const lastInputJS = `(() => {
	if (window.__twLastInput !== undefined) return;
	window.__twLastInput = Date.now();
	const mark = () => { window.__twLastInput = Date.now(); };
	for (const ev of ['mousemove', 'mousedown', 'keydown', 'wheel', 'touchstart']) {
		window.addEventListener(ev, mark, { passive: true, capture: true });
	}
})()`

const readLastInputJS = `() => window.__twLastInput || 0`

// badgeJS prefixes the title with the affordance the user would click:
// a pause glyph while running, a play glyph while stopped.
const badgeJS = `(running) => {
	const base = document.title.replace(/^[⏵⏸] /, '');
	document.title = (running ? '⏸ ' : '⏵ ') + base;
}`

type Config struct {
	Endpoint       string
	ConnectTimeout time.Duration
}

type Host struct {
	log logx.Logger
	pw  *playwright.Playwright
	bw  playwright.Browser

	mu      sync.Mutex
	nextWin int64
	nextTab int64
	winIDs  map[playwright.BrowserContext]browser.WindowID
	wins    map[browser.WindowID]playwright.BrowserContext
	tabIDs  map[playwright.Page]browser.TabID
	pages   map[browser.TabID]playwright.Page
}

var _ browser.Host = (*Host)(nil)

// Connect attaches to a Chromium instance exposing a DevTools endpoint
// (chromium --remote-debugging-port=9222).
func Connect(cfg Config, log logx.Logger) (*Host, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("cdp: endpoint not configured")
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	opts := &playwright.RunOptions{Verbose: false, Stdout: io.Discard, Stderr: io.Discard}
	if err := playwright.Install(opts); err != nil {
		return nil, fmt.Errorf("cdp: install driver: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("cdp: start driver: %w", err)
	}

	timeoutMs := float64(timeout.Milliseconds())
	bw, err := pw.Chromium.ConnectOverCDP(cfg.Endpoint, playwright.BrowserTypeConnectOverCDPOptions{
		Timeout: &timeoutMs,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("cdp: attach to %s: %w", cfg.Endpoint, err)
	}

	h := &Host{
		log:    log,
		pw:     pw,
		bw:     bw,
		winIDs: map[playwright.BrowserContext]browser.WindowID{},
		wins:   map[browser.WindowID]playwright.BrowserContext{},
		tabIDs: map[playwright.Page]browser.TabID{},
		pages:  map[browser.TabID]playwright.Page{},
	}
	h.instrument()
	log.Info("attached to browser", logx.String("endpoint", cfg.Endpoint))
	return h, nil
}

// instrument installs the input tracker on every context (for pages
// opened later) and directly on pages that already exist.
func (h *Host) instrument() {
	script := lastInputJS
	for _, bc := range h.bw.Contexts() {
		if err := bc.AddInitScript(playwright.Script{Content: &script}); err != nil {
			h.log.Warn("init script install failed", logx.Err(err))
		}
		for _, p := range bc.Pages() {
			if _, err := p.Evaluate(lastInputJS); err != nil {
				h.log.Debug("input tracker install failed", logx.String("url", p.URL()), logx.Err(err))
			}
		}
	}
}

// CurrentWindow returns the browser's default context. A CDP attach
// always exposes at least one.
func (h *Host) CurrentWindow(ctx context.Context) (browser.WindowID, error) {
	contexts := h.bw.Contexts()
	if len(contexts) == 0 {
		return 0, fmt.Errorf("cdp: browser has no contexts")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.windowIDLocked(contexts[0]), nil
}

func (h *Host) windowIDLocked(bc playwright.BrowserContext) browser.WindowID {
	if id, ok := h.winIDs[bc]; ok {
		return id
	}
	h.nextWin++
	id := browser.WindowID(h.nextWin)
	h.winIDs[bc] = id
	h.wins[id] = bc
	return id
}

// Tabs lists the window's pages in browser order, assigning stable IDs.
func (h *Host) Tabs(ctx context.Context, win browser.WindowID) ([]browser.Tab, error) {
	h.mu.Lock()
	bc, ok := h.wins[win]
	h.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("cdp: unknown window %d", win)
	}

	pages := bc.Pages()
	tabs := make([]browser.Tab, 0, len(pages))
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range pages {
		if p.IsClosed() {
			continue
		}
		id, ok := h.tabIDs[p]
		if !ok {
			h.nextTab++
			id = browser.TabID(h.nextTab)
			h.tabIDs[p] = id
			h.pages[id] = p
		}
		tabs = append(tabs, browser.Tab{ID: id, URL: p.URL()})
	}
	return tabs, nil
}

func (h *Host) page(id browser.TabID) (playwright.Page, error) {
	h.mu.Lock()
	p, ok := h.pages[id]
	h.mu.Unlock()
	if !ok || p.IsClosed() {
		return nil, fmt.Errorf("cdp: tab %d is gone", id)
	}
	return p, nil
}

func (h *Host) Activate(ctx context.Context, id browser.TabID) error {
	p, err := h.page(id)
	if err != nil {
		return err
	}
	if err := p.BringToFront(); err != nil {
		return fmt.Errorf("cdp: activate tab %d: %w", id, err)
	}
	return nil
}

func (h *Host) Reload(ctx context.Context, id browser.TabID) error {
	p, err := h.page(id)
	if err != nil {
		return err
	}
	if _, err := p.Reload(); err != nil {
		return fmt.Errorf("cdp: reload tab %d: %w", id, err)
	}
	// A reload wipes the in-page tracker; the init script reinstalls it on
	// pages opened post-attach, but not on pre-existing ones.
	if _, err := p.Evaluate(lastInputJS); err != nil {
		h.log.Debug("input tracker reinstall failed", logx.Err(err))
	}
	return nil
}

// IdleState reports Active when any page saw user input within threshold.
// Pages where the tracker can't run (crashed, chrome:// URLs) count as
// idle.
func (h *Host) IdleState(ctx context.Context, threshold time.Duration) (browser.IdleState, error) {
	var last float64
	seen := 0
	for _, bc := range h.bw.Contexts() {
		for _, p := range bc.Pages() {
			if p.IsClosed() {
				continue
			}
			v, err := p.Evaluate(readLastInputJS)
			if err != nil {
				continue
			}
			seen++
			if ts, ok := v.(float64); ok && ts > last {
				last = ts
			}
		}
	}
	if seen == 0 {
		return "", fmt.Errorf("cdp: no page answered the idle probe")
	}
	if last == 0 {
		return browser.Idle, nil
	}
	since := time.Since(time.UnixMilli(int64(last)))
	if since < threshold {
		return browser.Active, nil
	}
	return browser.Idle, nil
}

// SetIndicator badges the visible tab's title with the current toggle
// affordance. Best effort; a page that rejects the script is skipped.
func (h *Host) SetIndicator(ctx context.Context, running bool) error {
	for _, bc := range h.bw.Contexts() {
		for _, p := range bc.Pages() {
			if p.IsClosed() {
				continue
			}
			if _, err := p.Evaluate(badgeJS, running); err != nil {
				h.log.Debug("indicator update failed", logx.String("url", p.URL()), logx.Err(err))
			}
		}
	}
	return nil
}

// Close detaches from the browser without closing it and stops the
// driver process.
func (h *Host) Close() error {
	var first error
	if err := h.bw.Close(); err != nil {
		first = err
	}
	if err := h.pw.Stop(); err != nil && first == nil {
		first = err
	}
	return first
}
