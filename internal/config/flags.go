// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"flag"
	"fmt"
	"net/url"
	"time"
)

// urlValue is a flag.Value that only accepts absolute http(s) or ws(s) URLs.
type urlValue struct {
	raw string
}

func (u *urlValue) String() string {
	return u.raw
}

func (u *urlValue) Set(s string) error {
	parsed, err := url.Parse(s)
	if err != nil {
		return err
	}
	switch parsed.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL %q has no host", s)
	}
	u.raw = s
	return nil
}

// parseFlags parses the command-line flags in args.
//
// Flags:
//
//	-a remote message store base URL
//	-ws realtime signal WebSocket URL
//	-d database DSN
//	-data-dir base data directory
//	-media-dir decrypted media directory
//	-keystore-dir key store directory
//	-c/-config json file path with configs
//	-log-level log level
//	-log-file log file path
//	-token bearer token
//	-request-timeout request timeout (e.g., "15s")
//	-poll-interval poll interval (e.g., "5s")
//	-retention-interval retention sweep interval
//	-send-timeout remote send timeout
//	-pending-timeout age after which unsent messages fail
func parseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("messenger", flag.ContinueOnError)

	var remoteAddress, realtimeAddress urlValue
	var databaseDSN, dataDir, mediaDir, keyStoreDir string
	var jsonConfigPath string
	var logLevel, logFile, token string
	var requestTimeout, pollInterval, retentionInterval, sendTimeout, pendingTimeout time.Duration

	fs.Var(&remoteAddress, "a", "Remote message store base URL")
	fs.Var(&realtimeAddress, "ws", "Realtime signal WebSocket URL")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&dataDir, "data-dir", "", "Base data directory")
	fs.StringVar(&mediaDir, "media-dir", "", "Decrypted media directory")
	fs.StringVar(&keyStoreDir, "keystore-dir", "", "Key store directory")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&logLevel, "log-level", "", "Log level")
	fs.StringVar(&logFile, "log-file", "", "Log file path")
	fs.StringVar(&token, "token", "", "Bearer token")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 15s)")
	fs.DurationVar(&pollInterval, "poll-interval", 0, "Poll interval (e.g., 5s)")
	fs.DurationVar(&retentionInterval, "retention-interval", 0, "Retention sweep interval")
	fs.DurationVar(&sendTimeout, "send-timeout", 0, "Remote send timeout")
	fs.DurationVar(&pendingTimeout, "pending-timeout", 0, "Pending message timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			LogLevel: logLevel,
			LogFile:  logFile,
		},
		Storage: Storage{
			DataDir: dataDir,
			DB:      DB{DSN: databaseDSN},
			Files:   Files{MediaDir: mediaDir},
		},
		KeyStore: KeyStore{Dir: keyStoreDir},
		Adapter: Adapter{
			HTTPAddress:     remoteAddress.String(),
			RealtimeAddress: realtimeAddress.String(),
			Token:           token,
			RequestTimeout:  requestTimeout,
		},
		Workers: Workers{
			PollInterval:      pollInterval,
			RetentionInterval: retentionInterval,
			SendTimeout:       sendTimeout,
			PendingTimeout:    pendingTimeout,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}
