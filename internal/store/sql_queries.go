// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

const messageColumns = `id, chat_id, sender_id, ciphertext, nonce, type, timestamp, status,
	content, content_error, local_path, remote_url, delete_at, attempt, created_at`

const (
	insertMessageIfAbsent = `INSERT INTO messages (` + messageColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING;`

	getMessage = `SELECT ` + messageColumns + `
		FROM messages
		WHERE id = ?;`

	getMessageStatus = `SELECT status FROM messages WHERE id = ?;`

	findMessageByCorrelation = `SELECT ` + messageColumns + `
		FROM messages
		WHERE chat_id = ? AND sender_id = ? AND timestamp = ?
		ORDER BY created_at
		LIMIT 1;`

	// a pending row is superseded by its canonical arrival; FAILED is included
	// because the server may have stored a message whose ack never arrived
	findPendingByCorrelation = `SELECT ` + messageColumns + `
		FROM messages
		WHERE chat_id = ? AND sender_id = ? AND timestamp = ?
		  AND id LIKE 'local\_%' ESCAPE '\'
		  AND status IN ('LOCAL_PENDING', 'FAILED')
		ORDER BY created_at
		LIMIT 1;`

	listMessagesByStatus = `SELECT ` + messageColumns + `
		FROM messages
		WHERE status = ? AND created_at < ?
		ORDER BY created_at;`

	updateMessageLocalPath = `UPDATE messages SET local_path = ? WHERE id = ?;`
	updateMessageDeleteAt  = `UPDATE messages SET delete_at = ? WHERE id = ?;`
	deleteMessage          = `DELETE FROM messages WHERE id = ?;`
	deleteChatMessages     = `DELETE FROM messages WHERE chat_id = ?;`
	listChatIDs            = `SELECT DISTINCT chat_id FROM messages ORDER BY chat_id;`
	purgeMessages          = `DELETE FROM messages;`
)

const (
	tombstoneMessage = `INSERT OR IGNORE INTO purged_messages (id, chat_id, sender_id, timestamp, purged_at)
		SELECT id, chat_id, sender_id, timestamp, ? FROM messages WHERE id = ?;`

	tombstoneChatMessages = `INSERT OR IGNORE INTO purged_messages (id, chat_id, sender_id, timestamp, purged_at)
		SELECT id, chat_id, sender_id, timestamp, ? FROM messages WHERE chat_id = ?;`

	insertTombstone = `INSERT OR IGNORE INTO purged_messages (id, chat_id, sender_id, timestamp, purged_at)
		VALUES (?, ?, ?, ?, ?);`

	// a destroyed pending row also hides the canonical copy the server
	// assigned to it, which shares its correlation tuple
	countTombstones = `SELECT COUNT(*) FROM purged_messages
		WHERE id = ?
		   OR (chat_id = ? AND sender_id = ? AND timestamp = ?
		       AND id LIKE 'local\_%' ESCAPE '\');`

	countTombstonesByID = `SELECT COUNT(*) FROM purged_messages WHERE id = ?;`

	purgeTombstones = `DELETE FROM purged_messages;`
)

const keyColumns = `key_id, chat_id, wrapped, wrap_iv, is_current, created_at`

const (
	insertCurrentKeyIfAbsent = `INSERT OR IGNORE INTO session_keys (` + keyColumns + `)
		VALUES (?, ?, ?, ?, 1, ?);`

	getCurrentKey = `SELECT ` + keyColumns + `
		FROM session_keys
		WHERE chat_id = ? AND is_current = 1;`

	getKey = `SELECT ` + keyColumns + `
		FROM session_keys
		WHERE key_id = ?;`

	listChatKeys = `SELECT ` + keyColumns + `
		FROM session_keys
		WHERE chat_id = ?
		ORDER BY is_current DESC, created_at DESC, key_id;`

	listKeys = `SELECT ` + keyColumns + `
		FROM session_keys
		ORDER BY chat_id, created_at;`

	demoteCurrentKey = `UPDATE session_keys SET is_current = 0 WHERE chat_id = ? AND is_current = 1;`
	insertCurrentKey = `INSERT INTO session_keys (` + keyColumns + `)
		VALUES (?, ?, ?, ?, 1, ?);`
	deleteKey     = `DELETE FROM session_keys WHERE key_id = ?;`
	deleteAllKeys = `DELETE FROM session_keys;`
)

const scheduleColumns = `target_kind, target_id, policy, due_at, created_at`

const (
	upsertSchedule = `INSERT INTO scheduled_deletions (` + scheduleColumns + `)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(target_kind, target_id) DO UPDATE SET
			policy = excluded.policy,
			due_at = excluded.due_at,
			created_at = excluded.created_at;`

	getSchedule = `SELECT ` + scheduleColumns + `
		FROM scheduled_deletions
		WHERE target_kind = ? AND target_id = ?;`

	deleteSchedule = `DELETE FROM scheduled_deletions WHERE target_kind = ? AND target_id = ?;`

	listDueSchedules = `SELECT ` + scheduleColumns + `
		FROM scheduled_deletions
		WHERE due_at IS NOT NULL AND due_at <= ?
		ORDER BY due_at, target_kind, target_id;`

	listSchedulesByPolicy = `SELECT ` + scheduleColumns + `
		FROM scheduled_deletions
		WHERE policy = ?
		ORDER BY created_at;`

	markScheduleDue = `UPDATE scheduled_deletions
		SET due_at = ?
		WHERE target_kind = ? AND target_id = ? AND policy = ? AND due_at IS NULL;`

	deleteAllSchedules = `DELETE FROM scheduled_deletions;`
)

const (
	upsertPreference = `INSERT INTO preferences (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at;`

	getPreference = `SELECT value FROM preferences WHERE namespace = ? AND key = ?;`

	listPreferenceNamespaces = `SELECT DISTINCT namespace FROM preferences ORDER BY namespace;`

	deleteAllPreferences = `DELETE FROM preferences;`
)

// buildListByChatQuery builds the paged chat history query, newest first.
func buildListByChatQuery(chatID string, opts ListOptions) (string, []any, error) {
	builder := sq.Select(messageColumns).
		From("messages").
		Where(sq.Eq{"chat_id": chatID}).
		OrderBy("timestamp DESC", "id DESC")

	if opts.Before > 0 {
		builder = builder.Where(sq.Lt{"timestamp": opts.Before})
	}
	if opts.Limit > 0 {
		builder = builder.Limit(opts.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// buildConditionalStatusUpdate builds an UPDATE that only matches rows whose
// current status can legally move to next.
func buildConditionalStatusUpdate(id string, next models.Status) (string, []any, error) {
	sources := models.SourcesFor(next)
	allowed := make([]string, 0, len(sources))
	for _, s := range sources {
		allowed = append(allowed, string(s))
	}

	query, args, err := sq.Update("messages").
		Set("status", string(next)).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"status": allowed}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

// time columns are stored as unix milliseconds.

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullableMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}
