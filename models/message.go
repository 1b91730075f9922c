// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"strings"
	"time"
)

// ProvisionalIDPrefix marks client-generated identifiers that have not yet
// been superseded by a canonical remote ID.
const ProvisionalIDPrefix = "local_"

// Message is the local durable representation of one logical message.
//
// Exactly one row exists per logical message for its whole lifetime. A
// server-confirmed arrival replaces its pending counterpart; the two are
// matched by [Message.Correlation] because their IDs differ.
type Message struct {
	// ID is either a provisional "local_<millis>_<random>" value or the
	// canonical ID assigned by the remote store.
	ID string `json:"id"`

	ChatID   string `json:"chat_id"`
	SenderID string `json:"sender_id"`

	// Ciphertext and Nonce are the AEAD output exactly as exchanged with the
	// remote store.
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`

	Type MessageType `json:"type"`

	// Timestamp is assigned by the sending client in unix milliseconds and is
	// the correlation key with the server.
	Timestamp int64 `json:"timestamp"`

	Status Status `json:"status"`

	// Content holds the decrypted text for inline types. It is never sent.
	Content string `json:"-"`

	// ContentError is set when the payload could not be authenticated or
	// decrypted. The message is shown as unreadable.
	ContentError string `json:"-"`

	// LocalPath points to the decrypted media file, when there is one.
	LocalPath string `json:"-"`

	// RemoteURL is the location of the uploaded media blob, if any.
	RemoteURL string `json:"remote_url,omitempty"`

	// DeleteAt is an optional absolute auto-delete deadline.
	DeleteAt *time.Time `json:"-"`

	// Attempt counts user-initiated resends of this logical message.
	Attempt int `json:"-"`

	CreatedAt time.Time `json:"-"`
}

// Correlation is the (chat, sender, timestamp) tuple used to match a remote
// message against its local pending counterpart.
type Correlation struct {
	ChatID    string
	SenderID  string
	Timestamp int64
}

// Correlation returns the correlation tuple of m.
func (m Message) Correlation() Correlation {
	return Correlation{ChatID: m.ChatID, SenderID: m.SenderID, Timestamp: m.Timestamp}
}

// IsProvisional reports whether m still carries a client-generated ID.
func (m Message) IsProvisional() bool {
	return IsProvisionalID(m.ID)
}

// IsProvisionalID reports whether id was generated locally.
func IsProvisionalID(id string) bool {
	return strings.HasPrefix(id, ProvisionalIDPrefix)
}

// RemoteMessage is a message as reported by the remote store.
type RemoteMessage struct {
	ID         string      `json:"id"`
	ChatID     string      `json:"chat_id"`
	SenderID   string      `json:"sender_id"`
	Ciphertext []byte      `json:"ciphertext"`
	Nonce      []byte      `json:"nonce"`
	Timestamp  int64       `json:"timestamp"`
	Type       MessageType `json:"type"`
	Status     string      `json:"status"`
	RemoteURL  string      `json:"remote_url,omitempty"`
}

// ToMessage converts r into a local row with the given local state.
func (r RemoteMessage) ToMessage() Message {
	return Message{
		ID:         r.ID,
		ChatID:     r.ChatID,
		SenderID:   r.SenderID,
		Ciphertext: r.Ciphertext,
		Nonce:      r.Nonce,
		Type:       r.Type,
		Timestamp:  r.Timestamp,
		Status:     ParseRemoteStatus(r.Status),
		RemoteURL:  r.RemoteURL,
	}
}

// DeleteScope tells DeleteMessage whose copy to remove.
type DeleteScope string

const (
	DeleteForMe       DeleteScope = "me"
	DeleteForEveryone DeleteScope = "everyone"
)

// MessageView is the read model pushed to the presentation layer.
type MessageView struct {
	ID         string
	ChatID     string
	SenderID   string
	Type       MessageType
	Timestamp  int64
	Status     Status
	Text       string
	MediaPath  string
	Unreadable bool
	Outgoing   bool
}

// NewMessageView builds the view of m as seen by selfID.
func NewMessageView(m Message, selfID string) MessageView {
	return MessageView{
		ID:         m.ID,
		ChatID:     m.ChatID,
		SenderID:   m.SenderID,
		Type:       m.Type,
		Timestamp:  m.Timestamp,
		Status:     m.Status,
		Text:       m.Content,
		MediaPath:  m.LocalPath,
		Unreadable: m.ContentError != "",
		Outgoing:   m.SenderID == selfID,
	}
}
