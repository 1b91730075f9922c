// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package crypto holds the authenticated-encryption primitives used for
// message and media payloads. It performs no I/O and knows nothing about
// chats, storage or the network.
//
// Scheme:
//
//	key              = GenerateKey()                 (32 bytes, per chat)
//	ciphertext, nonce = Encrypt(plaintext, key)      (AES-256-GCM, fresh nonce)
//	plaintext        = Decrypt(ciphertext, nonce, key)
//
// Raw key material is zeroed after use with [SecureZero], normally through
// [WithKey] so the zeroing runs on every exit path.
package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_engine_mock.go -package=mock

// Engine is the AEAD contract used by the vault and the sync engine.
type Engine interface {
	// GenerateKey reads a new 256-bit key from the OS CSPRNG.
	GenerateKey() ([]byte, error)

	// Encrypt seals plaintext with key. A fresh random nonce is drawn on
	// every call and returned next to the ciphertext. Fails with
	// [ErrEncryptionFailed] only when the underlying primitive fails.
	Encrypt(plaintext, key []byte) (ciphertext, nonce []byte, err error)

	// Decrypt opens ciphertext sealed by Encrypt. Fails with
	// [ErrAuthenticationFailed] when the tag does not verify, which covers
	// tampering, truncation, a wrong nonce and a wrong key.
	Decrypt(ciphertext, nonce, key []byte) ([]byte, error)
}
