// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "fmt"

// MessengerConfig is the validated runtime view of [StructuredConfig].
type MessengerConfig struct {
	App      App
	Storage  Storage
	KeyStore KeyStore
	Adapter  Adapter
	Workers  Workers
}

// GetMessengerConfig builds and validates the runtime configuration from the
// merged structured configuration.
func GetMessengerConfig() (*MessengerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	messengerCfg := NewMessengerConfig(cfg)
	return messengerCfg, messengerCfg.validate()
}

// NewMessengerConfig maps the structured config onto the runtime view.
func NewMessengerConfig(cfg *StructuredConfig) *MessengerConfig {
	return &MessengerConfig{
		App:      cfg.App,
		Storage:  cfg.Storage,
		KeyStore: cfg.KeyStore,
		Adapter:  cfg.Adapter,
		Workers:  cfg.Workers,
	}
}

// Validate reports whether cfg is usable.
func (cfg *MessengerConfig) Validate() error {
	return cfg.validate()
}
