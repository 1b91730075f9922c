// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "fmt"

// MessageType defines the logical kind of payload carried by a message.
// The value determines how the decrypted payload must be interpreted.
type MessageType string

const (
	// TypeText is a plain UTF-8 text message.
	TypeText MessageType = "TEXT"

	// TypeVoice is a recorded voice clip.
	TypeVoice MessageType = "VOICE"

	// TypeImage is a still image.
	TypeImage MessageType = "IMAGE"

	// TypeVideo is a regular video attachment.
	TypeVideo MessageType = "VIDEO"

	// TypeVideoNote is a short round video note.
	TypeVideoNote MessageType = "VIDEO_NOTE"

	// TypeFile is an arbitrary file attachment.
	TypeFile MessageType = "FILE"

	// TypeLocation is a shared geographic location.
	TypeLocation MessageType = "LOCATION"
)

// IsMedia reports whether payloads of this type are kept as plaintext files
// on disk rather than inline in the message row.
func (t MessageType) IsMedia() bool {
	switch t {
	case TypeVoice, TypeImage, TypeVideo, TypeVideoNote, TypeFile:
		return true
	}
	return false
}

// Validate returns an error for values outside the known set.
func (t MessageType) Validate() error {
	switch t {
	case TypeText, TypeVoice, TypeImage, TypeVideo, TypeVideoNote, TypeFile, TypeLocation:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownMessageType, string(t))
}
