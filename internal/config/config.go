// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"path/filepath"
	"time"
)

// StructuredConfig is the top-level configuration container. It is populated
// by merging values from environment variables, command-line flags, an
// optional JSON file and the defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env:       direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds process-level settings: logging and the duress PIN.
	App App `envPrefix:"APP_"`

	// Storage holds the local database and the plaintext file roots.
	Storage Storage `envPrefix:"STORAGE_"`

	// KeyStore holds settings of the device key store.
	KeyStore KeyStore `envPrefix:"KEYSTORE_"`

	// Adapter holds the remote store and realtime endpoints.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds intervals and timeouts of background jobs.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// LogLevel is a zerolog level name ("debug", "info", ...).
	// Env: APP_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`

	// LogFile, when set, receives the log instead of stdout.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`

	// PanicPINHash is the argon2id hash of the duress PIN that authorises an
	// emergency wipe. While it is empty the wipe needs no PIN.
	// Env: APP_PANIC_PIN_HASH
	PanicPINHash string `env:"PANIC_PIN_HASH"`

	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups the local persistence settings.
type Storage struct {
	// DataDir is the base directory every unset path below is derived from.
	// Env: STORAGE_DATA_DIR
	DataDir string `env:"DATA_DIR"`

	// DB holds the local SQLite database settings.
	DB DB `envPrefix:"DB_"`

	// Files holds the roots that contain decrypted plaintext artifacts.
	Files Files `envPrefix:"FILES_"`
}

// DB holds connection settings for the local database.
type DB struct {
	// DSN is the SQLite database file path or file: URI.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Files lists the directories that hold plaintext and are destroyed by a
// panic wipe.
type Files struct {
	// Env: STORAGE_FILES_MEDIA_DIR
	MediaDir string `env:"MEDIA_DIR"`
	// Env: STORAGE_FILES_VOICE_DIR
	VoiceDir string `env:"VOICE_DIR"`
	// Env: STORAGE_FILES_VIDEO_NOTE_DIR
	VideoNoteDir string `env:"VIDEO_NOTE_DIR"`
	// Env: STORAGE_FILES_PREFERENCES_DIR
	PreferencesDir string `env:"PREFERENCES_DIR"`
	// Env: STORAGE_FILES_CACHE_DIR
	CacheDir string `env:"CACHE_DIR"`
}

// Roots returns every configured directory, in wipe order.
func (f Files) Roots() []string {
	roots := make([]string, 0, 5)
	for _, dir := range []string{f.MediaDir, f.VoiceDir, f.VideoNoteDir, f.PreferencesDir, f.CacheDir} {
		if dir != "" {
			roots = append(roots, dir)
		}
	}
	return roots
}

// KeyStore holds settings of the software key store fallback.
type KeyStore struct {
	// Dir holds the wrapped device master key.
	// Env: KEYSTORE_DIR
	Dir string `env:"DIR"`

	// RequirePresence denies key unwrapping when no presence check is
	// available.
	// Env: KEYSTORE_REQUIRE_PRESENCE
	RequirePresence bool `env:"REQUIRE_PRESENCE"`
}

// Adapter holds configuration of the remote collaborators.
type Adapter struct {
	// HTTPAddress is the base URL of the remote message store.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RealtimeAddress is the WebSocket URL of the new-message signal.
	// Empty disables push and leaves polling only.
	// Env: ADAPTER_REALTIME_ADDRESS
	RealtimeAddress string `env:"REALTIME_ADDRESS"`

	// Token is the bearer token; its "sub" claim identifies the local user.
	// Env: ADAPTER_TOKEN
	Token string `env:"TOKEN"`

	// RequestTimeout bounds a single outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds configuration of background jobs.
type Workers struct {
	// PollInterval is the fixed period of the per-chat poller.
	// Env: WORKERS_POLL_INTERVAL
	PollInterval time.Duration `env:"POLL_INTERVAL"`

	// RetentionInterval is how often due deletions are swept.
	// Env: WORKERS_RETENTION_INTERVAL
	RetentionInterval time.Duration `env:"RETENTION_INTERVAL"`

	// SendTimeout bounds a remote send, independently of the caller.
	// Env: WORKERS_SEND_TIMEOUT
	SendTimeout time.Duration `env:"SEND_TIMEOUT"`

	// PendingTimeout is the age after which a pending message with no
	// in-flight send is marked FAILED.
	// Env: WORKERS_PENDING_TIMEOUT
	PendingTimeout time.Duration `env:"PENDING_TIMEOUT"`
}

// Default values used when no source sets a field.
const (
	DefaultDataDir           = "messenger-data"
	DefaultLogLevel          = "info"
	DefaultRequestTimeout    = 15 * time.Second
	DefaultPollInterval      = 5 * time.Second
	DefaultRetentionInterval = 30 * time.Second
	DefaultSendTimeout       = 30 * time.Second
	DefaultPendingTimeout    = 2 * time.Minute
)

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App:     App{LogLevel: DefaultLogLevel},
		Storage: Storage{DataDir: DefaultDataDir},
		Adapter: Adapter{RequestTimeout: DefaultRequestTimeout},
		Workers: Workers{
			PollInterval:      DefaultPollInterval,
			RetentionInterval: DefaultRetentionInterval,
			SendTimeout:       DefaultSendTimeout,
			PendingTimeout:    DefaultPendingTimeout,
		},
	}
}

// deriveFromDataDir fills every unset path from Storage.DataDir.
func (cfg *StructuredConfig) deriveFromDataDir() {
	base := cfg.Storage.DataDir
	if base == "" {
		return
	}

	setIfEmpty := func(dst *string, elem ...string) {
		if *dst == "" {
			*dst = filepath.Join(append([]string{base}, elem...)...)
		}
	}

	setIfEmpty(&cfg.Storage.DB.DSN, "messenger.db")
	setIfEmpty(&cfg.Storage.Files.MediaDir, "media")
	setIfEmpty(&cfg.Storage.Files.VoiceDir, "voice")
	setIfEmpty(&cfg.Storage.Files.VideoNoteDir, "video_notes")
	setIfEmpty(&cfg.Storage.Files.PreferencesDir, "preferences")
	setIfEmpty(&cfg.Storage.Files.CacheDir, "cache")
	setIfEmpty(&cfg.KeyStore.Dir, "keystore")
}

// GetStructuredConfig loads and merges the configuration from all available
// sources and derives unset paths.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
