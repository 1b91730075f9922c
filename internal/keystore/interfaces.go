// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package keystore abstracts the OS-backed hardware key store (Android
// Keystore, Secure Enclave, TPM, OS keychain) that holds the device master
// key. Session keys are wrapped by that master key before they reach durable
// storage.
//
// A file-backed software implementation is provided for platforms without
// hardware support and for tests. The user-presence requirement is modelled
// by an injectable [PresenceGate].
package keystore

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mock/keystore_mock.go -package=mock

// HardwareKeyStore wraps and unwraps key material with a device master key
// that never leaves the store.
type HardwareKeyStore interface {
	// Wrap encrypts plain with the master key, creating the master key on
	// first use. Returns the wrapped bytes and the wrap IV.
	Wrap(ctx context.Context, plain []byte) (wrapped, iv []byte, err error)

	// Unwrap decrypts wrapped. It requires the presence gate to pass and
	// fails with [ErrAccessDenied] otherwise. Concurrent calls are
	// serialised. The caller owns the returned slice and must zero it.
	Unwrap(ctx context.Context, wrapped, iv []byte) ([]byte, error)

	// DestroyMasterKey irreversibly removes the master key. Every wrapped
	// key becomes undecryptable.
	DestroyMasterKey(ctx context.Context) error
}

// PresenceGate confirms that the user is present (biometric, device
// credential) before key material is released.
type PresenceGate interface {
	Confirm(ctx context.Context) error
}
