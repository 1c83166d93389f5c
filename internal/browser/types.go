// Package browser defines the host-environment boundary: everything the
// carousel engine needs from a browser (tab enumeration, selection, reload,
// idle detection, indicator) expressed as a narrow interface so adapters
// and test fakes stay interchangeable.
package browser

import (
	"context"
	"time"
)

// TabID identifies a tab. IDs are opaque and process-unique while the tab
// exists; they are never reused within a run.
type TabID int64

// WindowID identifies a browser window (one ordered set of tabs).
type WindowID int64

// Tab is one entry in a window's ordered tab list.
type Tab struct {
	ID  TabID
	URL string
}

// IdleState is the host's report of user activity.
type IdleState string

const (
	Idle   IdleState = "idle"
	Active IdleState = "active"
)

// Host is the browser the carousel drives.
//
// All calls may block on the underlying automation transport, so they take
// a context. Reload is fire-and-forget: a returned nil only means the
// command was issued, not that the page loaded.
type Host interface {
	// CurrentWindow returns the window the carousel should rotate in.
	CurrentWindow(ctx context.Context) (WindowID, error)

	// Tabs returns the window's live tab list in display order.
	Tabs(ctx context.Context, win WindowID) ([]Tab, error)

	// Activate brings the tab to the front.
	Activate(ctx context.Context, id TabID) error

	// Reload re-issues the tab's current URL to its existing location.
	Reload(ctx context.Context, id TabID) error

	// IdleState reports whether the user has been inactive for at least
	// threshold.
	IdleState(ctx context.Context, threshold time.Duration) (IdleState, error)

	// SetIndicator flips the user-visible start/stop affordance.
	SetIndicator(ctx context.Context, running bool) error
}
