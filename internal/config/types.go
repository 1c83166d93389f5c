package config

// Config is tabwheel's on-disk configuration (JSON or YAML).
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
// User-facing carousel settings (flip interval, reload interval, auto
// start, pause-when-active) are NOT here: they live in the preference
// store so they survive independently of config file edits.
type Config struct {
	Logging LoggingConfig `json:"logging"`
	Prefs   PrefsConfig   `json:"prefs"`
	Browser BrowserConfig `json:"browser"`

	// Telegram enables lifecycle notices to a chat. Optional; off when the
	// section is omitted.
	Telegram *TelegramConfig `json:"telegram,omitempty"`

	// Calendar starts/stops the carousel on cron schedules (kiosk hours).
	// Optional; off when the section is omitted.
	Calendar *CalendarConfig `json:"calendar,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// PrefsConfig controls the preference store backend.
//
// Example:
//
//	"prefs": { "driver": "sqlite", "path": "./tabwheel.db" }
type PrefsConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// BrowserConfig controls the host adapter.
//
// Driver values:
//   - "cdp": attach to a running Chromium over the DevTools protocol.
type BrowserConfig struct {
	Driver   string `json:"driver"`
	Endpoint string `json:"endpoint,omitempty"` // e.g. "http://127.0.0.1:9222"

	// ConnectTimeout bounds the initial attach. Go duration string.
	ConnectTimeout string `json:"connect_timeout,omitempty"`
}

type TelegramConfig struct {
	Enabled    bool   `json:"enabled"`
	Token      string `json:"token"`
	ChatID     int64  `json:"chat_id"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

// CalendarConfig holds cron specs evaluated in Timezone (IANA name,
// default local). Both 5-field and 6-field (seconds) specs are accepted,
// as are descriptors like "@daily".
type CalendarConfig struct {
	Enabled  bool     `json:"enabled"`
	Timezone string   `json:"timezone,omitempty"`
	Start    []string `json:"start,omitempty"`
	Stop     []string `json:"stop,omitempty"`
}
