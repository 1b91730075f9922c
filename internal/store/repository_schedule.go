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

type scheduleRepository struct {
	*DB
	logger *logger.Logger
}

func NewScheduleRepository(db *DB, logger *logger.Logger) ScheduleRepository {
	return &scheduleRepository{
		DB:     db,
		logger: logger,
	}
}

func scanSchedule(row rowScanner) (models.ScheduledDeletion, error) {
	var (
		s         models.ScheduledDeletion
		dueAt     sql.NullInt64
		createdAt int64
	)
	if err := row.Scan(&s.Target.Kind, &s.Target.ID, &s.Policy, &dueAt, &createdAt); err != nil {
		return models.ScheduledDeletion{}, err
	}
	s.DueAt = timePtr(dueAt)
	s.CreatedAt = fromMillis(createdAt)
	return s, nil
}

func (s *scheduleRepository) Upsert(ctx context.Context, sd models.ScheduledDeletion) error {
	createdAt := sd.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.ExecContext(ctx, upsertSchedule,
		string(sd.Target.Kind), sd.Target.ID, string(sd.Policy), nullableMillis(sd.DueAt), toMillis(createdAt))
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "scheduleRepository.Upsert").
			Str("target", sd.Target.String()).
			Str("policy", string(sd.Policy)).
			Msg("failed to upsert scheduled deletion")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (s *scheduleRepository) Get(ctx context.Context, target models.Target) (models.ScheduledDeletion, error) {
	sd, err := scanSchedule(s.QueryRowContext(ctx, getSchedule, string(target.Kind), target.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ScheduledDeletion{}, fmt.Errorf("%w: %s", ErrScheduleNotFound, target)
	}
	if err != nil {
		return models.ScheduledDeletion{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return sd, nil
}

func (s *scheduleRepository) Delete(ctx context.Context, target models.Target) (bool, error) {
	res, err := s.ExecContext(ctx, deleteSchedule, string(target.Kind), target.ID)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "scheduleRepository.Delete").
			Str("target", target.String()).
			Msg("failed to delete scheduled deletion")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return n > 0, nil
}

func (s *scheduleRepository) Due(ctx context.Context, now time.Time) ([]models.ScheduledDeletion, error) {
	return s.list(ctx, "scheduleRepository.Due", listDueSchedules, toMillis(now))
}

func (s *scheduleRepository) ListByPolicy(ctx context.Context, policy models.PolicyKind) ([]models.ScheduledDeletion, error) {
	return s.list(ctx, "scheduleRepository.ListByPolicy", listSchedulesByPolicy, string(policy))
}

func (s *scheduleRepository) list(ctx context.Context, fn, query string, args ...any) ([]models.ScheduledDeletion, error) {
	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", fn).Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	result := make([]models.ScheduledDeletion, 0, 8)
	for rows.Next() {
		sd, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		result = append(result, sd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return result, nil
}

func (s *scheduleRepository) MarkDue(ctx context.Context, target models.Target, policy models.PolicyKind, at time.Time) (bool, error) {
	res, err := s.ExecContext(ctx, markScheduleDue, toMillis(at), string(target.Kind), target.ID, string(policy))
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return n > 0, nil
}

func (s *scheduleRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.ExecContext(ctx, deleteAllSchedules)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return res.RowsAffected()
}
