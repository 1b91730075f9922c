// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service holds the messenger's business logic: the delivery state
// machine ([SyncEngine]), time- and event-driven retention
// ([RetentionScheduler]), the per-chat message feed and the [MessengerService]
// facade exposed to the presentation layer.
package service

import (
	"context"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/vault"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

// MessengerService is the command surface offered to the UI.
type MessengerService interface {
	// Send encrypts and sends an inline message. The returned message is
	// valid even when the error wraps [ErrSendFailed]; it is then FAILED.
	Send(ctx context.Context, cmd models.SendCommand) (models.Message, error)
	// SendMedia sends the file at cmd.SourcePath. Same contract as Send.
	SendMedia(ctx context.Context, cmd models.SendMediaCommand) (models.Message, error)
	// Resend retries a FAILED message as a new send.
	Resend(ctx context.Context, messageID string) (models.Message, error)

	DeleteMessage(ctx context.Context, cmd models.DeleteCommand) error
	ScheduleAutoDelete(ctx context.Context, cmd models.AutoDeleteCommand) error

	// Messages streams the chat's decrypted view, newest first. The current
	// state is delivered immediately; later values replace earlier ones.
	Messages(ctx context.Context, chatID string) (<-chan []models.MessageView, func(), error)

	Attach(ctx context.Context, chatID string) error
	Detach(chatID string)

	// PanicWipe destroys all local secrets. When a duress PIN is configured
	// pin must match it.
	PanicWipe(ctx context.Context, pin string) (models.WipeResult, error)
}

// MessengerServiceWrapper defines middleware composition for MessengerService.
type MessengerServiceWrapper interface {
	Wrap(MessengerService) MessengerService
}

// KeyVault is the part of the session-key vault the sync engine needs.
type KeyVault interface {
	GetOrCreateKey(ctx context.Context, chatID string) (vault.KeyHandle, error)
	Keys(ctx context.Context, chatID string) ([]vault.KeyHandle, error)
	WithKey(ctx context.Context, h vault.KeyHandle, fn func(key []byte) error) error
}

// FileEraser securely removes a single file.
type FileEraser interface {
	WipeFile(ctx context.Context, path string) models.WipeEntry
	WipeDirectory(ctx context.Context, root string) models.WipeResult
}

// PanicWiper destroys every local secret.
type PanicWiper interface {
	PanicWipe(ctx context.Context) models.WipeResult
}

// StatusObserver is told about message identity and status changes that
// matter for retention.
type StatusObserver interface {
	OnStatusChange(ctx context.Context, msg models.Message, status models.Status) error
	ReassignMessage(ctx context.Context, fromID, toID string) error
}

// Job is a background loop with an explicit lifecycle.
type Job interface {
	// Start launches the loop; it runs until ctx is done or Stop is called.
	Start(ctx context.Context)
	// Stop cancels the loop and waits for it to exit.
	Stop()
}
