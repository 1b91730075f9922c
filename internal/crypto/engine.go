// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// KeySize is the length of every session and master key (AES-256).
const KeySize = 32

// aesGCMEngine is the private implementation of [Engine].
type aesGCMEngine struct {
	// random is the nonce and key source. It is always crypto/rand outside
	// of tests; nonces are never derived from a counter.
	random io.Reader
}

// NewEngine constructs an AES-256-GCM [Engine] backed by crypto/rand.
func NewEngine() Engine {
	return &aesGCMEngine{random: rand.Reader}
}

// GenerateKey implements [Engine].
func (e *aesGCMEngine) GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(e.random, key); err != nil {
		return nil, fmt.Errorf("%w: generate key: %w", ErrEncryptionFailed, err)
	}
	return key, nil
}

// Encrypt implements [Engine]. The whole plaintext is authenticated; no
// associated data is used.
func (e *aesGCMEngine) Encrypt(plaintext, key []byte) ([]byte, []byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrEncryptionFailed, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(e.random, nonce); err != nil {
		return nil, nil, fmt.Errorf("%w: generate nonce: %w", ErrEncryptionFailed, err)
	}

	return gcm.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Decrypt implements [Engine].
func (e *aesGCMEngine) Decrypt(ciphertext, nonce, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	if len(nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("%w: nonce length %d", ErrAuthenticationFailed, len(nonce))
	}
	if len(ciphertext) < gcm.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrAuthenticationFailed)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d want %d", ErrInvalidKey, len(key), KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}
