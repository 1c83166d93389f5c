// Package prefs persists tabwheel's user preferences and the first-run
// marker in a small key-value store.
//
// Presence semantics are explicit: a key that was never written reads back
// as its default, while an explicitly stored zero/false is returned as-is.
// (The legacy behavior this replaces coerced falsy stored values back to
// the default, which made a real 0 indistinguishable from "unset".)
//
// Values are not range-validated. A zero or negative interval is stored
// and returned faithfully; scheduling with it is the caller's problem.
package prefs
