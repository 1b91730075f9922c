// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/config"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
)

// Storages groups every local repository over one SQLite database.
type Storages struct {
	Messages    MessageRepository
	Keys        KeyRepository
	Schedules   ScheduleRepository
	Preferences PreferenceRepository

	db *DB
}

// NewStorages opens the database at cfg.DSN, applies migrations and wires
// the repositories.
func NewStorages(ctx context.Context, cfg config.DB, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return newStoragesFromDB(db, logger), nil
}

func newStoragesFromDB(db *DB, logger *logger.Logger) *Storages {
	return &Storages{
		Messages:    NewMessageRepository(db, logger),
		Keys:        NewKeyRepository(db, logger),
		Schedules:   NewScheduleRepository(db, logger),
		Preferences: NewPreferenceRepository(db, logger),
		db:          db,
	}
}

// Close releases the database handle.
func (s *Storages) Close() error {
	return s.db.Close()
}
