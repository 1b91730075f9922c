// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

// Validation errors returned when required configuration groups are
// incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates a missing remote store address or a
	// non-positive request timeout.
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates an empty or in-memory DSN, or a
	// missing media root.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAppConfigs indicates a malformed panic PIN hash.
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidWorkerConfigs indicates a non-positive interval or timeout.
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
	// ErrInvalidKeyStoreConfigs indicates a missing key store directory.
	ErrInvalidKeyStoreConfigs = errors.New("invalid key store configuration")
)
