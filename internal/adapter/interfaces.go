// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport-layer collaborators of the sync
// engine: the remote message store and the realtime new-message signal.
//
// [RemoteStore] is implemented over HTTP/REST ([NewHTTPRemoteStore]) and
// [RealtimeSignal] over a WebSocket ([NewWebSocketSignal]). Transport errors
// are mapped to the sentinels in errors.go so that callers can use
// [errors.Is] without knowing the protocol.
package adapter

import (
	"context"

	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// RemoteStore is the server holding ciphertext messages per chat. It is
// eventually consistent and never sees plaintext.
type RemoteStore interface {
	// Fetch returns every message the server holds for chatID.
	Fetch(ctx context.Context, chatID string) ([]models.RemoteMessage, error)

	// Send stores one message and returns it with its canonical ID.
	Send(ctx context.Context, req SendRequest) (models.RemoteMessage, error)

	// Delete removes a message for every participant.
	Delete(ctx context.Context, chatID, messageID string) error

	// SelfID is the sender ID the server knows the local user by.
	SelfID() string
}

// RealtimeSignal notifies that a chat has new remote messages. It carries no
// payload; the receiver reconciles the chat.
type RealtimeSignal interface {
	// Listen blocks, invoking onNewMessage for every signal, until ctx is done.
	Listen(ctx context.Context, onNewMessage func(chatID string)) error
}

// SendRequest is the body of a remote send. Ciphertext and Nonce are
// base64-encoded on the wire.
type SendRequest struct {
	ChatID     string             `json:"chat_id"`
	Ciphertext []byte             `json:"ciphertext"`
	Nonce      []byte             `json:"nonce"`
	Type       models.MessageType `json:"type"`
	Timestamp  int64              `json:"timestamp"`
	RemoteURL  string             `json:"remote_url,omitempty"`
}
