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

type keyRepository struct {
	*DB
	logger *logger.Logger
}

func NewKeyRepository(db *DB, logger *logger.Logger) KeyRepository {
	return &keyRepository{
		DB:     db,
		logger: logger,
	}
}

func scanKey(row rowScanner) (models.SessionKey, error) {
	var (
		key       models.SessionKey
		createdAt int64
	)
	if err := row.Scan(&key.KeyID, &key.ChatID, &key.Wrapped, &key.WrapIV, &key.Current, &createdAt); err != nil {
		return models.SessionKey{}, err
	}
	key.CreatedAt = fromMillis(createdAt)
	return key, nil
}

func keyCreatedAt(key models.SessionKey) int64 {
	if key.CreatedAt.IsZero() {
		return toMillis(time.Now())
	}
	return toMillis(key.CreatedAt)
}

func (k *keyRepository) InsertCurrentIfAbsent(ctx context.Context, key models.SessionKey) (bool, error) {
	res, err := k.ExecContext(ctx, insertCurrentKeyIfAbsent,
		key.KeyID, key.ChatID, key.Wrapped, key.WrapIV, keyCreatedAt(key))
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "keyRepository.InsertCurrentIfAbsent").
			Str("chat_id", key.ChatID).
			Msg("failed to insert session key")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return n == 1, nil
}

func (k *keyRepository) GetCurrent(ctx context.Context, chatID string) (models.SessionKey, error) {
	key, err := scanKey(k.QueryRowContext(ctx, getCurrentKey, chatID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SessionKey{}, fmt.Errorf("%w: chat %s", ErrKeyNotFound, chatID)
	}
	if err != nil {
		return models.SessionKey{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return key, nil
}

func (k *keyRepository) Get(ctx context.Context, keyID string) (models.SessionKey, error) {
	key, err := scanKey(k.QueryRowContext(ctx, getKey, keyID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.SessionKey{}, fmt.Errorf("%w: %s", ErrKeyNotFound, keyID)
	}
	if err != nil {
		return models.SessionKey{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return key, nil
}

func (k *keyRepository) ListByChat(ctx context.Context, chatID string) ([]models.SessionKey, error) {
	return k.list(ctx, "keyRepository.ListByChat", listChatKeys, chatID)
}

func (k *keyRepository) List(ctx context.Context) ([]models.SessionKey, error) {
	return k.list(ctx, "keyRepository.List", listKeys)
}

func (k *keyRepository) list(ctx context.Context, fn, query string, args ...any) ([]models.SessionKey, error) {
	rows, err := k.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", fn).Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	keys := make([]models.SessionKey, 0, 4)
	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return keys, nil
}

func (k *keyRepository) Supersede(ctx context.Context, next models.SessionKey) error {
	err := k.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, demoteCurrentKey, next.ChatID); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		_, err := tx.ExecContext(ctx, insertCurrentKey,
			next.KeyID, next.ChatID, next.Wrapped, next.WrapIV, keyCreatedAt(next))
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrKeyConflict, next.KeyID)
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "keyRepository.Supersede").
			Str("chat_id", next.ChatID).
			Msg("failed to rotate session key")
		return err
	}
	return nil
}

func (k *keyRepository) Delete(ctx context.Context, keyID string) error {
	res, err := k.ExecContext(ctx, deleteKey, keyID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, keyID)
	}
	return nil
}

func (k *keyRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := k.ExecContext(ctx, deleteAllKeys)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return res.RowsAffected()
}
