// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrMalformedPINHash is returned when a stored PIN hash cannot be decoded.
var ErrMalformedPINHash = errors.New("malformed pin hash")

// PINHasher derives verifiers for short user secrets (unlock and duress
// PINs) with Argon2id.
type PINHasher struct {
	// Argon2id tuning parameters. Kept in the struct so they can be lowered
	// for constrained devices and in tests.
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewPINHasher returns a [PINHasher] with the OWASP (2024) Argon2id
// parameters: 1 iteration, 64 MiB, 4 threads, 32-byte output.
func NewPINHasher() *PINHasher {
	return &PINHasher{
		argonTime:    1,
		argonMemory:  64 * 1024,
		argonThreads: 4,
		argonKeyLen:  32,
	}
}

// NewPINHasherWithParams is used where the default memory cost is too high.
func NewPINHasherWithParams(time, memoryKiB uint32, threads uint8) *PINHasher {
	return &PINHasher{
		argonTime:    time,
		argonMemory:  memoryKiB,
		argonThreads: threads,
		argonKeyLen:  32,
	}
}

// Hash returns "base64(salt)$base64(digest)" for pin.
func (h *PINHasher) Hash(pin string) (string, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate pin salt: %w", err)
	}
	digest := h.derive(pin, salt)
	defer SecureZero(digest)

	return base64.RawStdEncoding.EncodeToString(salt) + "$" + base64.RawStdEncoding.EncodeToString(digest), nil
}

// Verify reports whether pin matches encoded, comparing in constant time.
func (h *PINHasher) Verify(pin, encoded string) (bool, error) {
	saltPart, digestPart, ok := strings.Cut(encoded, "$")
	if !ok {
		return false, ErrMalformedPINHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(saltPart)
	if err != nil {
		return false, fmt.Errorf("%w: salt: %w", ErrMalformedPINHash, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(digestPart)
	if err != nil {
		return false, fmt.Errorf("%w: digest: %w", ErrMalformedPINHash, err)
	}

	got := h.derive(pin, salt)
	defer SecureZero(got)

	return ConstantTimeEqual(got, want), nil
}

func (h *PINHasher) derive(pin string, salt []byte) []byte {
	return argon2.IDKey([]byte(pin), salt, h.argonTime, h.argonMemory, h.argonThreads, h.argonKeyLen)
}
