// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SessionKey is the persisted form of a per-chat symmetric key. Only the
// wrapped bytes are ever stored; the raw key exists in memory transiently.
type SessionKey struct {
	ChatID string
	KeyID  string

	// Wrapped is the key encrypted by the device master key.
	Wrapped []byte
	// WrapIV is the nonce used for wrapping.
	WrapIV []byte

	// Current marks the key used for new encryption. Older keys stay
	// available for decrypting historical ciphertext.
	Current bool

	CreatedAt time.Time
}
