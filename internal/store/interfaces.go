// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

// MessageRepository persists message rows. It enforces atomicity only; the
// delivery rules live in the sync engine.
type MessageRepository interface {
	// InsertIfAbsent stores msg unless a row with the same ID exists and
	// reports whether a row was written.
	InsertIfAbsent(ctx context.Context, msg models.Message) (bool, error)
	// ReconcileInsert stores a server-confirmed message. Within one
	// transaction it advances an existing row, or removes the local pending
	// counterpart with the same correlation tuple and inserts msg. A message
	// that was destroyed locally is never inserted again.
	ReconcileInsert(ctx context.Context, msg models.Message) (ReconcileResult, error)
	// ReplaceProvisional swaps the row with provisionalID for canonical.
	ReplaceProvisional(ctx context.Context, provisionalID string, canonical models.Message) error

	Get(ctx context.Context, id string) (models.Message, error)
	Exists(ctx context.Context, id string) (bool, error)
	// IsPurged reports whether msg, or the pending row it was sent from, was
	// destroyed locally.
	IsPurged(ctx context.Context, msg models.Message) (bool, error)
	FindByCorrelation(ctx context.Context, c models.Correlation) (models.Message, error)
	ListByChat(ctx context.Context, chatID string, opts ListOptions) ([]models.Message, error)
	ListByStatus(ctx context.Context, status models.Status, createdBefore time.Time) ([]models.Message, error)

	// UpdateStatus moves the row to next only if its current status allows it.
	UpdateStatus(ctx context.Context, id string, next models.Status) error
	UpdateLocalPath(ctx context.Context, id, path string) error
	SetDeleteAt(ctx context.Context, id string, at *time.Time) error

	// Delete and DeleteByChat destroy rows and tombstone their IDs.
	Delete(ctx context.Context, id string) error
	DeleteByChat(ctx context.Context, chatID string) (int64, error)
	ChatIDs(ctx context.Context) ([]string, error)
	// PurgeAll removes every row and every tombstone.
	PurgeAll(ctx context.Context) (int64, error)
}

// KeyRepository persists wrapped session keys.
type KeyRepository interface {
	// InsertCurrentIfAbsent stores key as the chat's current key unless the
	// chat already has one, and reports whether it was stored.
	InsertCurrentIfAbsent(ctx context.Context, key models.SessionKey) (bool, error)
	GetCurrent(ctx context.Context, chatID string) (models.SessionKey, error)
	Get(ctx context.Context, keyID string) (models.SessionKey, error)
	// ListByChat returns the current key first, then older keys newest first.
	ListByChat(ctx context.Context, chatID string) ([]models.SessionKey, error)
	List(ctx context.Context) ([]models.SessionKey, error)
	// Supersede demotes the chat's current key and stores next as current.
	Supersede(ctx context.Context, next models.SessionKey) error
	Delete(ctx context.Context, keyID string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// ScheduleRepository persists scheduled deletions, at most one per target.
type ScheduleRepository interface {
	Upsert(ctx context.Context, s models.ScheduledDeletion) error
	Get(ctx context.Context, target models.Target) (models.ScheduledDeletion, error)
	// Delete removes the entry and reports whether one existed.
	Delete(ctx context.Context, target models.Target) (bool, error)
	Due(ctx context.Context, now time.Time) ([]models.ScheduledDeletion, error)
	ListByPolicy(ctx context.Context, policy models.PolicyKind) ([]models.ScheduledDeletion, error)
	// MarkDue sets due_at for entries of the given policy that have none yet.
	MarkDue(ctx context.Context, target models.Target, policy models.PolicyKind, at time.Time) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// PreferenceRepository stores small key/value settings grouped by namespace.
type PreferenceRepository interface {
	Put(ctx context.Context, namespace, key, value string) error
	Get(ctx context.Context, namespace, key string) (string, error)
	Namespaces(ctx context.Context) ([]string, error)
	ClearAll(ctx context.Context) (int64, error)
}

// ListOptions narrows [MessageRepository.ListByChat].
type ListOptions struct {
	// Limit caps the number of rows; zero means no limit.
	Limit uint64
	// Before, when non-zero, only returns messages older than this timestamp.
	Before int64
}

// ReconcileResult describes what [MessageRepository.ReconcileInsert] did.
type ReconcileResult struct {
	// Inserted is true when a new canonical row was written.
	Inserted bool
	// Advanced is true when an existing row moved forward to the remote status.
	Advanced bool
	// Replaced is the local pending row the canonical one superseded, if any.
	Replaced *models.Message
	// Purged is true when msg was skipped because it was destroyed locally.
	Purged bool
}
