// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package keystore

import "errors"

var (
	// ErrAccessDenied is returned when the presence gate refuses. The caller
	// may prompt the user again.
	ErrAccessDenied = errors.New("key store access denied")

	// ErrMasterKeyNotFound is returned when the master key does not exist,
	// which is expected after a panic wipe.
	ErrMasterKeyNotFound = errors.New("master key not found")

	// ErrUnwrapFailed is returned when wrapped bytes do not authenticate
	// under the master key (corruption or a replaced master key).
	ErrUnwrapFailed = errors.New("unwrap failed")
)
