// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/store"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/utils"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

// RetentionScheduler keeps the auto-delete schedule. Entries either carry a
// deadline or wait for an event (the message being read, the session
// ending). [RetentionScheduler.Sweep] destroys whatever is due.
//
// A message-level entry takes precedence over the policy of its chat.
type RetentionScheduler struct {
	schedules store.ScheduleRepository
	messages  store.MessageRepository
	purger    *Purger
	clock     utils.Clock

	// sweeps never overlap
	sweepMu sync.Mutex

	logger *logger.Logger
}

func NewRetentionScheduler(storages *store.Storages, purger *Purger, clock utils.Clock, log *logger.Logger) *RetentionScheduler {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &RetentionScheduler{
		schedules: storages.Schedules,
		messages:  storages.Messages,
		purger:    purger,
		clock:     clock,
		logger:    log.WithComponent("retention"),
	}
}

// Schedule dispatches on the target kind.
func (r *RetentionScheduler) Schedule(ctx context.Context, target models.Target, policy models.DeletionPolicy) error {
	switch target.Kind {
	case models.TargetMessage:
		return r.ScheduleMessageDeletion(ctx, target.ID, policy)
	case models.TargetChat:
		return r.ScheduleChatDeletion(ctx, target.ID, policy)
	}
	return fmt.Errorf("%w: %q", models.ErrUnknownTarget, string(target.Kind))
}

// ScheduleMessageDeletion replaces the message's entry. [models.Never]
// removes it.
func (r *RetentionScheduler) ScheduleMessageDeletion(ctx context.Context, messageID string, policy models.DeletionPolicy) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	if policy.Kind == models.PolicyNever {
		return r.CancelMessageDeletion(ctx, messageID)
	}

	msg, err := r.messages.Get(ctx, messageID)
	if err != nil {
		return err
	}

	now := r.clock.Now()
	entry := models.ScheduledDeletion{
		Target:    models.MessageTarget(messageID),
		Policy:    policy.Kind,
		CreatedAt: now,
	}
	switch policy.Kind {
	case models.PolicyAfterDuration:
		due := now.Add(policy.After)
		entry.DueAt = &due
	case models.PolicyAfterRead:
		if msg.Status == models.StatusRead {
			entry.DueAt = &now
		}
	}

	if err := r.schedules.Upsert(ctx, entry); err != nil {
		return err
	}
	if err := r.messages.SetDeleteAt(ctx, messageID, entry.DueAt); err != nil && !errors.Is(err, store.ErrMessageNotFound) {
		return err
	}

	r.logger.Debug().
		Str("func", "RetentionScheduler.ScheduleMessageDeletion").
		Str("message_id", messageID).
		Str("policy", string(policy.Kind)).
		Msg("message deletion scheduled")
	return nil
}

// ScheduleChatDeletion replaces the chat's entry. A duration or ON_EXIT
// policy destroys the whole chat; AFTER_READ destroys each message of the
// chat once it is read.
func (r *RetentionScheduler) ScheduleChatDeletion(ctx context.Context, chatID string, policy models.DeletionPolicy) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	if policy.Kind == models.PolicyNever {
		return r.CancelChatDeletion(ctx, chatID)
	}

	now := r.clock.Now()
	entry := models.ScheduledDeletion{
		Target:    models.ChatTarget(chatID),
		Policy:    policy.Kind,
		CreatedAt: now,
	}
	if policy.Kind == models.PolicyAfterDuration {
		due := now.Add(policy.After)
		entry.DueAt = &due
	}
	if err := r.schedules.Upsert(ctx, entry); err != nil {
		return err
	}

	if policy.Kind == models.PolicyAfterRead {
		// messages that were read before the policy was set
		rows, err := r.messages.ListByChat(ctx, chatID, store.ListOptions{})
		if err != nil {
			return err
		}
		for _, m := range rows {
			if m.Status != models.StatusRead {
				continue
			}
			if err := r.applyChatAfterRead(ctx, m, now); err != nil {
				return err
			}
		}
	}

	r.logger.Debug().
		Str("func", "RetentionScheduler.ScheduleChatDeletion").
		Str("chat_id", chatID).
		Str("policy", string(policy.Kind)).
		Msg("chat deletion scheduled")
	return nil
}

// CancelMessageDeletion removes the message's entry, if any.
func (r *RetentionScheduler) CancelMessageDeletion(ctx context.Context, messageID string) error {
	if _, err := r.schedules.Delete(ctx, models.MessageTarget(messageID)); err != nil {
		return err
	}
	if err := r.messages.SetDeleteAt(ctx, messageID, nil); err != nil && !errors.Is(err, store.ErrMessageNotFound) {
		return err
	}
	return nil
}

// CancelChatDeletion removes the chat's entry, if any.
func (r *RetentionScheduler) CancelChatDeletion(ctx context.Context, chatID string) error {
	_, err := r.schedules.Delete(ctx, models.ChatTarget(chatID))
	return err
}

// DueDeletions returns the targets whose deadline is at or before now.
func (r *RetentionScheduler) DueDeletions(ctx context.Context, now time.Time) ([]models.Target, error) {
	due, err := r.schedules.Due(ctx, now)
	if err != nil {
		return nil, err
	}
	targets := make([]models.Target, 0, len(due))
	for _, d := range due {
		targets = append(targets, d.Target)
	}
	return targets, nil
}

// OnStatusChange makes AFTER_READ entries due as soon as a message becomes
// READ.
func (r *RetentionScheduler) OnStatusChange(ctx context.Context, msg models.Message, status models.Status) error {
	if status != models.StatusRead {
		return nil
	}
	now := r.clock.Now()

	marked, err := r.schedules.MarkDue(ctx, models.MessageTarget(msg.ID), models.PolicyAfterRead, now)
	if err != nil {
		return err
	}
	if marked {
		r.logger.Debug().
			Str("func", "RetentionScheduler.OnStatusChange").
			Str("message_id", msg.ID).
			Msg("read message is due for deletion")
		return nil
	}

	return r.applyChatAfterRead(ctx, msg, now)
}

// applyChatAfterRead schedules a read message for immediate deletion when
// its chat has an AFTER_READ policy and the message has no entry of its own.
func (r *RetentionScheduler) applyChatAfterRead(ctx context.Context, msg models.Message, now time.Time) error {
	chat, err := r.schedules.Get(ctx, models.ChatTarget(msg.ChatID))
	if errors.Is(err, store.ErrScheduleNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if chat.Policy != models.PolicyAfterRead {
		return nil
	}

	existing, err := r.schedules.Get(ctx, models.MessageTarget(msg.ID))
	switch {
	case err == nil:
		if existing.Policy != models.PolicyAfterRead || existing.DueAt != nil {
			return nil
		}
	case !errors.Is(err, store.ErrScheduleNotFound):
		return err
	}

	return r.schedules.Upsert(ctx, models.ScheduledDeletion{
		Target:    models.MessageTarget(msg.ID),
		Policy:    models.PolicyAfterRead,
		DueAt:     &now,
		CreatedAt: now,
	})
}

// OnExit makes every ON_EXIT entry due.
func (r *RetentionScheduler) OnExit(ctx context.Context) error {
	entries, err := r.schedules.ListByPolicy(ctx, models.PolicyOnExit)
	if err != nil {
		return err
	}
	now := r.clock.Now()

	var errs []error
	for _, e := range entries {
		if _, err := r.schedules.MarkDue(ctx, e.Target, models.PolicyOnExit, now); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ReassignMessage moves the entry of a provisional message to the ID that
// replaced it.
func (r *RetentionScheduler) ReassignMessage(ctx context.Context, fromID, toID string) error {
	entry, err := r.schedules.Get(ctx, models.MessageTarget(fromID))
	if errors.Is(err, store.ErrScheduleNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	entry.Target = models.MessageTarget(toID)
	if err := r.schedules.Upsert(ctx, entry); err != nil {
		return err
	}
	_, err = r.schedules.Delete(ctx, models.MessageTarget(fromID))
	return err
}

// Sweep destroys every target that is due at now. An entry is only removed
// after its target was destroyed; a failed target stays scheduled and is
// retried by the next sweep.
func (r *RetentionScheduler) Sweep(ctx context.Context, now time.Time) models.WipeResult {
	r.sweepMu.Lock()
	defer r.sweepMu.Unlock()

	log := r.logger.With().Str("func", "RetentionScheduler.Sweep").Logger()

	var result models.WipeResult

	due, err := r.DueDeletions(ctx, now)
	if err != nil {
		log.Err(err).Msg("failed to load due deletions")
		result.Add(models.WipeEntry{Target: "table:scheduled_deletions", Outcome: models.WipeFailed, Err: err})
		return result
	}

	for _, target := range due {
		purged := r.purger.PurgeTarget(ctx, target)
		result.Merge(purged)
		if !purged.Success() {
			log.Warn().Str("target", target.String()).Msg("target not destroyed, keeping schedule")
			continue
		}
		if _, err := r.schedules.Delete(ctx, target); err != nil {
			log.Err(err).Str("target", target.String()).Msg("failed to delete schedule entry")
		}
	}

	if len(due) > 0 {
		succeeded, failed := result.Counts()
		log.Info().
			Int("targets", len(due)).
			Int("succeeded", succeeded).
			Int("failed", failed).
			Msg("retention sweep finished")
	}
	return result
}

// SweepNow sweeps with the scheduler's clock.
func (r *RetentionScheduler) SweepNow(ctx context.Context) models.WipeResult {
	return r.Sweep(ctx, r.clock.Now())
}
