// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/config"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
)

func TestSQLiteErrorClassifier(t *testing.T) {
	c := NewSQLiteErrorClassifier()

	tests := []struct {
		name string
		err  error
		want ErrorClassification
	}{
		{name: "nil", err: nil, want: NonRetryable},
		{name: "busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, want: Retryable},
		{name: "locked wrapped", err: errors.Join(errors.New("ctx"), sqlite3.Error{Code: sqlite3.ErrLocked}), want: Retryable},
		{name: "constraint", err: sqlite3.Error{Code: sqlite3.ErrConstraint}, want: NonRetryable},
		{name: "other", err: errors.New("boom"), want: NonRetryable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}))
	assert.True(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}))
	assert.False(t, isUniqueViolation(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintCheck}))
	assert.False(t, isUniqueViolation(errors.New("x")))
}

func TestWithTx_RetriesBusy(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM preferences")).
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrBusy})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM preferences")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	calls := 0
	err := db.WithTx(testContext(), func(ctx context.Context, tx DBTX) error {
		calls++
		_, err := tx.ExecContext(ctx, deleteAllPreferences)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_DoesNotRetryFinalErrors(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	calls := 0
	err := db.WithTx(testContext(), func(ctx context.Context, tx DBTX) error {
		calls++
		return errors.New("logic error")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_BeginError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("closed"))

	err := db.WithTx(testContext(), func(ctx context.Context, tx DBTX) error { return nil })
	assert.ErrorIs(t, err, ErrBeginningTransaction)
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = db.WithTx(testContext(), func(ctx context.Context, tx DBTX) error {
			panic("kaput")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewConnectSQLite(t *testing.T) {
	ctx := testContext()

	_, err := NewConnectSQLite(ctx, config.DB{}, logger.Nop())
	assert.ErrorIs(t, err, ErrEmptyDSN)

	dsn := filepath.Join(t.TempDir(), "nested", "dir", "m.db")
	db, err := NewConnectSQLite(ctx, config.DB{DSN: dsn}, logger.Nop())
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	assert.FileExists(t, dsn)
}

func TestWithSQLiteParams(t *testing.T) {
	assert.Equal(t, "/tmp/a.db?"+sqliteParams, withSQLiteParams("/tmp/a.db"))
	assert.Equal(t, "file:/tmp/a.db?cache=shared&"+sqliteParams, withSQLiteParams("file:/tmp/a.db?cache=shared"))
}
