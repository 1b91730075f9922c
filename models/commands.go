// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// SendCommand asks to send an inline message (text, location).
type SendCommand struct {
	ChatID    string
	Type      MessageType
	Plaintext []byte
}

// SendMediaCommand asks to send the file at SourcePath as a media message.
type SendMediaCommand struct {
	ChatID     string
	Type       MessageType
	SourcePath string
}

// DeleteCommand asks to delete one message.
type DeleteCommand struct {
	MessageID string
	Scope     DeleteScope
}

// AutoDeleteCommand attaches a deletion policy to a message or a chat.
type AutoDeleteCommand struct {
	Target Target
	Policy DeletionPolicy
}
