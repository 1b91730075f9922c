// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

// messageRepository is the SQLite implementation of [MessageRepository].
type messageRepository struct {
	*DB
	logger *logger.Logger
}

func NewMessageRepository(db *DB, logger *logger.Logger) MessageRepository {
	return &messageRepository{
		DB:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (models.Message, error) {
	var (
		msg       models.Message
		deleteAt  sql.NullInt64
		createdAt int64
	)

	err := row.Scan(
		&msg.ID,
		&msg.ChatID,
		&msg.SenderID,
		&msg.Ciphertext,
		&msg.Nonce,
		&msg.Type,
		&msg.Timestamp,
		&msg.Status,
		&msg.Content,
		&msg.ContentError,
		&msg.LocalPath,
		&msg.RemoteURL,
		&deleteAt,
		&msg.Attempt,
		&createdAt,
	)
	if err != nil {
		return models.Message{}, err
	}

	msg.DeleteAt = timePtr(deleteAt)
	msg.CreatedAt = fromMillis(createdAt)
	return msg, nil
}

func messageArgs(msg models.Message) []any {
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return []any{
		msg.ID,
		msg.ChatID,
		msg.SenderID,
		msg.Ciphertext,
		msg.Nonce,
		string(msg.Type),
		msg.Timestamp,
		string(msg.Status),
		msg.Content,
		msg.ContentError,
		msg.LocalPath,
		msg.RemoteURL,
		nullableMillis(msg.DeleteAt),
		msg.Attempt,
		toMillis(createdAt),
	}
}

func insertIfAbsent(ctx context.Context, db DBTX, msg models.Message) (bool, error) {
	res, err := db.ExecContext(ctx, insertMessageIfAbsent, messageArgs(msg)...)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return n == 1, nil
}

func (r *messageRepository) InsertIfAbsent(ctx context.Context, msg models.Message) (bool, error) {
	log := logger.FromContext(ctx)

	inserted, err := insertIfAbsent(ctx, r.DB, msg)
	if err != nil {
		log.Err(err).
			Str("func", "messageRepository.InsertIfAbsent").
			Str("message_id", msg.ID).
			Str("chat_id", msg.ChatID).
			Msg("failed to insert message")
		return false, err
	}

	return inserted, nil
}

// isPurged reports whether msg was destroyed locally, either under its own
// ID or as the pending row it was sent from.
func isPurged(ctx context.Context, db DBTX, msg models.Message) (bool, error) {
	c := msg.Correlation()
	var n int
	if err := db.QueryRowContext(ctx, countTombstones, msg.ID, c.ChatID, c.SenderID, c.Timestamp).Scan(&n); err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return n > 0, nil
}

func tombstone(ctx context.Context, db DBTX, msg models.Message) error {
	c := msg.Correlation()
	_, err := db.ExecContext(ctx, insertTombstone, msg.ID, c.ChatID, c.SenderID, c.Timestamp, toMillis(time.Now()))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (r *messageRepository) IsPurged(ctx context.Context, msg models.Message) (bool, error) {
	purged, err := isPurged(ctx, r.DB, msg)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "messageRepository.IsPurged").
			Str("message_id", msg.ID).
			Msg("failed to look up tombstone")
		return false, err
	}
	return purged, nil
}

func (r *messageRepository) ReconcileInsert(ctx context.Context, msg models.Message) (ReconcileResult, error) {
	log := logger.FromContext(ctx)

	var result ReconcileResult
	err := r.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		result = ReconcileResult{}

		var current models.Status
		err := tx.QueryRowContext(ctx, getMessageStatus, msg.ID).Scan(&current)
		switch {
		case err == nil:
			// already known: only a forward move is applied
			if !current.CanTransitionTo(msg.Status) {
				return nil
			}
			advanced, err := updateStatus(ctx, tx, msg.ID, msg.Status)
			if err != nil {
				return err
			}
			result.Advanced = advanced
			return nil
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}

		purged, err := isPurged(ctx, tx, msg)
		if err != nil {
			return err
		}
		if purged {
			result.Purged = true
			return tombstone(ctx, tx, msg)
		}

		c := msg.Correlation()
		pending, err := scanMessage(tx.QueryRowContext(ctx, findPendingByCorrelation, c.ChatID, c.SenderID, c.Timestamp))
		switch {
		case err == nil:
			if _, err := tx.ExecContext(ctx, deleteMessage, pending.ID); err != nil {
				return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
			}
			result.Replaced = &pending
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		inserted, err := insertIfAbsent(ctx, tx, msg)
		if err != nil {
			return err
		}
		result.Inserted = inserted
		return nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "messageRepository.ReconcileInsert").
			Str("message_id", msg.ID).
			Str("chat_id", msg.ChatID).
			Msg("failed to reconcile message")
		return ReconcileResult{}, err
	}

	return result, nil
}

func (r *messageRepository) ReplaceProvisional(ctx context.Context, provisionalID string, canonical models.Message) error {
	log := logger.FromContext(ctx)

	var dropped bool
	err := r.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		dropped = false

		res, err := tx.ExecContext(ctx, deleteMessage, provisionalID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		if removed == 0 {
			var n int
			if err := tx.QueryRowContext(ctx, countTombstonesByID, provisionalID).Scan(&n); err != nil {
				return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
			}
			if n > 0 {
				// purged while the send was in flight: the canonical ID stays
				// destroyed too
				dropped = true
				return tombstone(ctx, tx, canonical)
			}
		}

		inserted, err := insertIfAbsent(ctx, tx, canonical)
		if err != nil {
			return err
		}

		// the pending row was deleted by the user while the send was in flight
		// and nothing else produced the canonical row: do not resurrect it
		if removed == 0 && inserted {
			return fmt.Errorf("%w: %s", ErrMessageNotFound, provisionalID)
		}
		return nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "messageRepository.ReplaceProvisional").
			Str("provisional_id", provisionalID).
			Str("message_id", canonical.ID).
			Msg("failed to replace provisional message")
		return err
	}
	if dropped {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, provisionalID)
	}

	return nil
}

func (r *messageRepository) Get(ctx context.Context, id string) (models.Message, error) {
	msg, err := scanMessage(r.QueryRowContext(ctx, getMessage, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "messageRepository.Get").
			Str("message_id", id).
			Msg("failed to scan message row")
		return models.Message{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return msg, nil
}

func (r *messageRepository) Exists(ctx context.Context, id string) (bool, error) {
	var status string
	err := r.QueryRowContext(ctx, getMessageStatus, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return true, nil
}

func (r *messageRepository) FindByCorrelation(ctx context.Context, c models.Correlation) (models.Message, error) {
	msg, err := scanMessage(r.QueryRowContext(ctx, findMessageByCorrelation, c.ChatID, c.SenderID, c.Timestamp))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	if err != nil {
		return models.Message{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return msg, nil
}

func (r *messageRepository) ListByChat(ctx context.Context, chatID string, opts ListOptions) ([]models.Message, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListByChatQuery(chatID, opts)
	if err != nil {
		log.Err(err).
			Str("func", "messageRepository.ListByChat").
			Str("chat_id", chatID).
			Msg("failed to create query")
		return nil, err
	}

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "messageRepository.ListByChat").
			Str("chat_id", chatID).
			Msg("failed to execute query for chat history")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

func (r *messageRepository) ListByStatus(ctx context.Context, status models.Status, createdBefore time.Time) ([]models.Message, error) {
	if createdBefore.IsZero() {
		createdBefore = time.Now().Add(time.Hour)
	}

	rows, err := r.QueryContext(ctx, listMessagesByStatus, string(status), toMillis(createdBefore))
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "messageRepository.ListByStatus").
			Str("status", string(status)).
			Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

func collectMessages(rows *sql.Rows) ([]models.Message, error) {
	result := make([]models.Message, 0, 50)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		result = append(result, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return result, nil
}

func updateStatus(ctx context.Context, db DBTX, id string, next models.Status) (bool, error) {
	query, args, err := buildConditionalStatusUpdate(id, next)
	if err != nil {
		return false, err
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return n == 1, nil
}

func (r *messageRepository) UpdateStatus(ctx context.Context, id string, next models.Status) error {
	log := logger.FromContext(ctx)

	updated, err := updateStatus(ctx, r.DB, id, next)
	if err != nil {
		log.Err(err).
			Str("func", "messageRepository.UpdateStatus").
			Str("message_id", id).
			Str("status", string(next)).
			Msg("failed to update message status")
		return err
	}
	if updated {
		return nil
	}

	exists, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	return fmt.Errorf("%w: %s -> %s", ErrStatusTransition, id, next)
}

func (r *messageRepository) UpdateLocalPath(ctx context.Context, id, path string) error {
	return r.execAffectingOne(ctx, "messageRepository.UpdateLocalPath", id, updateMessageLocalPath, path, id)
}

func (r *messageRepository) SetDeleteAt(ctx context.Context, id string, at *time.Time) error {
	return r.execAffectingOne(ctx, "messageRepository.SetDeleteAt", id, updateMessageDeleteAt, nullableMillis(at), id)
}

// Delete removes the row and leaves a tombstone in the same transaction.
func (r *messageRepository) Delete(ctx context.Context, id string) error {
	err := r.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, tombstoneMessage, toMillis(time.Now()), id); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		res, err := tx.ExecContext(ctx, deleteMessage, id)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrMessageNotFound) {
		logger.FromContext(ctx).Err(err).
			Str("func", "messageRepository.Delete").
			Str("message_id", id).
			Msg("failed to delete message")
	}
	return err
}

func (r *messageRepository) execAffectingOne(ctx context.Context, fn, id, query string, args ...any) error {
	res, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", fn).
			Str("message_id", id).
			Msg("failed to execute statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	return nil
}

func (r *messageRepository) DeleteByChat(ctx context.Context, chatID string) (int64, error) {
	var deleted int64
	err := r.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, tombstoneChatMessages, toMillis(time.Now()), chatID); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		res, err := tx.ExecContext(ctx, deleteChatMessages, chatID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "messageRepository.DeleteByChat").
			Str("chat_id", chatID).
			Msg("failed to delete chat messages")
		return 0, err
	}
	return deleted, nil
}

func (r *messageRepository) ChatIDs(ctx context.Context) ([]string, error) {
	rows, err := r.QueryContext(ctx, listChatIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	ids := make([]string, 0, 16)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return ids, nil
}

// PurgeAll removes every message together with the tombstones.
func (r *messageRepository) PurgeAll(ctx context.Context) (int64, error) {
	var purged int64
	err := r.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, purgeTombstones); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		res, err := tx.ExecContext(ctx, purgeMessages)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		purged, err = res.RowsAffected()
		return err
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "messageRepository.PurgeAll").
			Msg("failed to purge messages")
		return 0, err
	}
	return purged, nil
}
