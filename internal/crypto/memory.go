// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/subtle"
	"runtime"
)

// SecureZero overwrites buf with zeros. The slice is kept alive past the
// write so the store cannot be elided.
func SecureZero(buf []byte) {
	if len(buf) == 0 {
		return
	}
	clear(buf)
	runtime.KeepAlive(buf)
}

// WithKey runs fn with key and zeroes key afterwards, on success, on error
// and on panic alike.
func WithKey(key []byte, fn func(key []byte) error) error {
	defer SecureZero(key)
	return fn(key)
}

// ConstantTimeEqual compares two secrets without leaking where they differ.
// Both buffers are always walked to the length of the longer one, so neither
// a mismatch position nor a length difference shortens the comparison.
// Use it for PIN and secret verification only.
func ConstantTimeEqual(a, b []byte) bool {
	n := max(len(a), len(b))

	var diff byte
	for i := 0; i < n; i++ {
		var x, y byte
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		diff |= x ^ y
	}

	lengthsMatch := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	return subtle.ConstantTimeByteEq(diff, 0)&lengthsMatch == 1
}
