// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package vault

import "errors"

var (
	// ErrAccessDenied is returned when the key store refused to unwrap
	// because the user-presence check failed. It is surfaced to the caller.
	ErrAccessDenied = errors.New("key access denied")

	// ErrNotFound is returned when the key row is missing or its wrapped
	// bytes can no longer be unwrapped (corrupt row, destroyed master key).
	ErrNotFound = errors.New("session key not found")
)
