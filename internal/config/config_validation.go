// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"strings"
)

func (cfg *MessengerConfig) validate() error {
	var errs []error

	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		errs = append(errs, ErrInvalidStorageConfigs)
	} else if cfg.Storage.Files.MediaDir == "" {
		errs = append(errs, ErrInvalidStorageConfigs)
	}

	if cfg.KeyStore.Dir == "" {
		errs = append(errs, ErrInvalidKeyStoreConfigs)
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		errs = append(errs, ErrInvalidAdapterConfigs)
	}

	if cfg.Workers.PollInterval <= 0 ||
		cfg.Workers.RetentionInterval <= 0 ||
		cfg.Workers.SendTimeout <= 0 ||
		cfg.Workers.PendingTimeout <= 0 {
		errs = append(errs, ErrInvalidWorkerConfigs)
	}

	if cfg.App.PanicPINHash != "" && !strings.Contains(cfg.App.PanicPINHash, "$") {
		errs = append(errs, ErrInvalidAppConfigs)
	}

	return errors.Join(errs...)
}
