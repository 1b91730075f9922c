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
)

type preferenceRepository struct {
	*DB
	logger *logger.Logger
}

func NewPreferenceRepository(db *DB, logger *logger.Logger) PreferenceRepository {
	return &preferenceRepository{
		DB:     db,
		logger: logger,
	}
}

func (p *preferenceRepository) Put(ctx context.Context, namespace, key, value string) error {
	_, err := p.ExecContext(ctx, upsertPreference, namespace, key, value, toMillis(time.Now()))
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "preferenceRepository.Put").
			Str("namespace", namespace).
			Str("key", key).
			Msg("failed to store preference")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (p *preferenceRepository) Get(ctx context.Context, namespace, key string) (string, error) {
	var value string
	err := p.QueryRowContext(ctx, getPreference, namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s/%s", ErrPreferenceNotFound, namespace, key)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return value, nil
}

func (p *preferenceRepository) Namespaces(ctx context.Context) ([]string, error) {
	rows, err := p.QueryContext(ctx, listPreferenceNamespaces)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	namespaces := make([]string, 0, 4)
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		namespaces = append(namespaces, ns)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return namespaces, nil
}

func (p *preferenceRepository) ClearAll(ctx context.Context) (int64, error) {
	res, err := p.ExecContext(ctx, deleteAllPreferences)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "preferenceRepository.ClearAll").
			Msg("failed to clear preferences")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return res.RowsAffected()
}
