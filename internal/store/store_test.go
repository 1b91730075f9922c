// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/config"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func newTestStorages(t *testing.T) *Storages {
	t.Helper()
	s, err := NewStorages(testContext(), config.DB{DSN: filepath.Join(t.TempDir(), "messenger.db")}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newDBFromSQL(db), mock
}

func newDBFromSQL(db *sql.DB) *DB {
	return &DB{
		DB:                 db,
		errorClassificator: NewSQLiteErrorClassifier(),
		logger:             logger.Nop(),
	}
}

var baseTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func textMessage(id, chatID, senderID string, ts int64, status models.Status) models.Message {
	return models.Message{
		ID:         id,
		ChatID:     chatID,
		SenderID:   senderID,
		Ciphertext: []byte("ct-" + id),
		Nonce:      []byte("nonce-123456"),
		Type:       models.TypeText,
		Timestamp:  ts,
		Status:     status,
		Content:    "hello " + id,
		CreatedAt:  baseTime,
	}
}
