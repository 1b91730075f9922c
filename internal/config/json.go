// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		LogLevel     string `json:"log_level"`
		LogFile      string `json:"log_file"`
		PanicPINHash string `json:"panic_pin_hash"`
		Version      string `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DataDir string `json:"data_dir"`

		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Files struct {
			MediaDir       string `json:"media_dir"`
			VoiceDir       string `json:"voice_dir"`
			VideoNoteDir   string `json:"video_note_dir"`
			PreferencesDir string `json:"preferences_dir"`
			CacheDir       string `json:"cache_dir"`
		} `json:"files,omitempty"`
	} `json:"storage,omitempty"`

	KeyStore struct {
		Dir             string `json:"dir"`
		RequirePresence bool   `json:"require_presence"`
	} `json:"keystore,omitempty"`

	Adapter struct {
		HTTPAddress     string   `json:"http_address"`
		RealtimeAddress string   `json:"realtime_address"`
		Token           string   `json:"token"`
		RequestTimeout  Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Workers struct {
		PollInterval      Duration `json:"poll_interval"`
		RetentionInterval Duration `json:"retention_interval"`
		SendTimeout       Duration `json:"send_timeout"`
		PendingTimeout    Duration `json:"pending_timeout"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			LogLevel:     jsonCfg.App.LogLevel,
			LogFile:      jsonCfg.App.LogFile,
			PanicPINHash: jsonCfg.App.PanicPINHash,
			Version:      jsonCfg.App.Version,
		},
		Storage: Storage{
			DataDir: jsonCfg.Storage.DataDir,
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			Files: Files{
				MediaDir:       jsonCfg.Storage.Files.MediaDir,
				VoiceDir:       jsonCfg.Storage.Files.VoiceDir,
				VideoNoteDir:   jsonCfg.Storage.Files.VideoNoteDir,
				PreferencesDir: jsonCfg.Storage.Files.PreferencesDir,
				CacheDir:       jsonCfg.Storage.Files.CacheDir,
			},
		},
		KeyStore: KeyStore{
			Dir:             jsonCfg.KeyStore.Dir,
			RequirePresence: jsonCfg.KeyStore.RequirePresence,
		},
		Adapter: Adapter{
			HTTPAddress:     jsonCfg.Adapter.HTTPAddress,
			RealtimeAddress: jsonCfg.Adapter.RealtimeAddress,
			Token:           jsonCfg.Adapter.Token,
			RequestTimeout:  time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Workers: Workers{
			PollInterval:      time.Duration(jsonCfg.Workers.PollInterval),
			RetentionInterval: time.Duration(jsonCfg.Workers.RetentionInterval),
			SendTimeout:       time.Duration(jsonCfg.Workers.SendTimeout),
			PendingTimeout:    time.Duration(jsonCfg.Workers.PendingTimeout),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
