package prefs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "tabwheel/pkg/logx"
)

func TestDefaultsWhenUnset(t *testing.T) {
	t.Parallel()
	p := New(NewMemory(), logx.Nop())
	ctx := context.Background()

	if got := p.FlipInterval(ctx); got != DefaultFlipInterval {
		t.Fatalf("FlipInterval = %v, want %v", got, DefaultFlipInterval)
	}
	if got := p.ReloadInterval(ctx); got != DefaultReloadInterval {
		t.Fatalf("ReloadInterval = %v, want %v", got, DefaultReloadInterval)
	}
	if p.AutoStart(ctx) {
		t.Fatal("AutoStart default should be false")
	}
	if p.PauseWhenActive(ctx) {
		t.Fatal("PauseWhenActive default should be false")
	}
	if _, ok := p.FirstRun(ctx); ok {
		t.Fatal("FirstRun should be unset")
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	p := New(NewMemory(), logx.Nop())
	ctx := context.Background()

	if err := p.SetFlipInterval(ctx, 5*time.Second); err != nil {
		t.Fatalf("SetFlipInterval: %v", err)
	}
	if got := p.FlipInterval(ctx); got != 5*time.Second {
		t.Fatalf("FlipInterval = %v, want 5s", got)
	}

	if err := p.SetPauseWhenActive(ctx, true); err != nil {
		t.Fatalf("SetPauseWhenActive: %v", err)
	}
	if !p.PauseWhenActive(ctx) {
		t.Fatal("PauseWhenActive should be true after set")
	}
}

func TestStoredZeroIsHonored(t *testing.T) {
	t.Parallel()
	p := New(NewMemory(), logx.Nop())
	ctx := context.Background()

	// An explicit zero must not fall back to the default.
	if err := p.SetReloadInterval(ctx, 0); err != nil {
		t.Fatalf("SetReloadInterval: %v", err)
	}
	if got := p.ReloadInterval(ctx); got != 0 {
		t.Fatalf("ReloadInterval = %v, want 0", got)
	}

	if err := p.SetAutoStart(ctx, false); err != nil {
		t.Fatalf("SetAutoStart: %v", err)
	}
	if p.AutoStart(ctx) {
		t.Fatal("AutoStart should read back false")
	}
}

func TestFirstRunMarker(t *testing.T) {
	t.Parallel()
	p := New(NewMemory(), logx.Nop())
	ctx := context.Background()

	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	if err := p.MarkFirstRun(ctx, at); err != nil {
		t.Fatalf("MarkFirstRun: %v", err)
	}
	got, ok := p.FirstRun(ctx)
	if !ok {
		t.Fatal("FirstRun should be set")
	}
	if !got.Equal(at) {
		t.Fatalf("FirstRun = %v, want %v", got, at)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	st, err := Open(Config{Driver: "sqlite", Path: path, BusyTimeout: time.Second}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p := New(st, logx.Nop())
	if err := p.SetFlipInterval(ctx, 5*time.Second); err != nil {
		t.Fatalf("SetFlipInterval: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st, err = Open(Config{Driver: "sqlite", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()
	p = New(st, logx.Nop())
	if got := p.FlipInterval(ctx); got != 5*time.Second {
		t.Fatalf("FlipInterval after reopen = %v, want 5s", got)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
