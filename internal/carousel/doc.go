// Package carousel implements tabwheel's tab rotation engine.
//
// # Overview
//
// A Scheduler owns a self-rescheduling timer chain. Each tick it consults
// the IdleGate, and if the advance is allowed it re-reads the window's live
// tab list, activates the current tab, and asks the Throttle whether the
// upcoming tab is stale enough to reload. The next tick is scheduled after
// the flip interval whether or not the work ran; only Stop breaks the chain.
//
// # Cursor
//
// The tab cursor is a monotonically increasing counter, reduced modulo the
// live tab count at use time. This tolerates tabs being added or removed
// between ticks: the rotation may visibly jump, but never indexes out of
// range. An empty tab list makes the tick a no-op.
//
// # Cancellation
//
// Start hands every tick a generation number. Stop bumps the generation and
// cancels the run context, so tick work that was already in flight when
// Stop was called discards its effects instead of mutating tab state late.
// Re-entering Start while running is rejected with ErrAlreadyRunning.
package carousel
