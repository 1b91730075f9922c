// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import "errors"

var (
	// ErrEncryptionFailed wraps an unexpected failure of the cipher or the
	// random source. It is not a content error and is never expected.
	ErrEncryptionFailed = errors.New("encryption failed")

	// ErrAuthenticationFailed means the integrity tag did not verify. The
	// payload is permanently unreadable with the given key and is never
	// retried.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidKey is returned for keys that are not 32 bytes long.
	ErrInvalidKey = errors.New("invalid key length")
)
