// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/config"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/store"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

// Purger destroys the local copy of messages and chats. A row is only
// removed once its media file is gone, so a failed wipe is retried by the
// next pass instead of leaving an orphaned plaintext file. Removed rows leave
// a tombstone and a later reconcile does not fetch them back.
type Purger struct {
	messages  store.MessageRepository
	schedules store.ScheduleRepository
	eraser    FileEraser
	media     mediaStore
	feed      *Feed
	logger    *logger.Logger
}

func NewPurger(storages *store.Storages, eraser FileEraser, files config.Files, feed *Feed, log *logger.Logger) *Purger {
	return &Purger{
		messages:  storages.Messages,
		schedules: storages.Schedules,
		eraser:    eraser,
		media:     newMediaStore(files),
		feed:      feed,
		logger:    log.WithComponent("purger"),
	}
}

func (p *Purger) PurgeTarget(ctx context.Context, target models.Target) models.WipeResult {
	if target.Kind == models.TargetChat {
		return p.PurgeChat(ctx, target.ID)
	}
	return p.purgeMessage(ctx, target.ID, true)
}

// PurgeMessage marks the message PURGED, wipes its media and deletes the
// row together with its schedule entry.
func (p *Purger) PurgeMessage(ctx context.Context, id string) models.WipeResult {
	return p.purgeMessage(ctx, id, true)
}

func (p *Purger) purgeMessage(ctx context.Context, id string, publish bool) models.WipeResult {
	log := p.logger.With().Str("func", "Purger.purgeMessage").Str("message_id", id).Logger()
	target := "message:" + id

	var result models.WipeResult

	msg, err := p.messages.Get(ctx, id)
	if errors.Is(err, store.ErrMessageNotFound) {
		log.Debug().Msg("message already gone")
		p.dropSchedule(ctx, models.MessageTarget(id))
		result.Add(models.WipeEntry{Target: target, Outcome: models.WipeFull})
		return result
	}
	if err != nil {
		result.Add(models.WipeEntry{Target: target, Outcome: models.WipeFailed, Err: err})
		return result
	}

	if err := p.messages.UpdateStatus(ctx, id, models.StatusPurged); err != nil &&
		!errors.Is(err, store.ErrStatusTransition) && !errors.Is(err, store.ErrMessageNotFound) {
		log.Err(err).Msg("failed to mark message purged")
	}

	if msg.LocalPath != "" {
		entry := p.eraser.WipeFile(ctx, msg.LocalPath)
		result.Add(entry)
		if !entry.Succeeded() {
			log.Warn().Err(entry.Err).Str("path", msg.LocalPath).Msg("media wipe failed, keeping row for retry")
			result.Add(models.WipeEntry{Target: target, Outcome: models.WipeFailed, Err: entry.Err})
			return result
		}
	}

	if err := p.messages.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrMessageNotFound) {
		log.Err(err).Msg("failed to delete message row")
		result.Add(models.WipeEntry{Target: target, Outcome: models.WipeFailed, Err: err})
		return result
	}
	p.dropSchedule(ctx, models.MessageTarget(id))
	result.Add(models.WipeEntry{Target: target, Outcome: models.WipeFull})

	if publish {
		p.feed.Publish(ctx, msg.ChatID)
	}
	return result
}

// PurgeChat purges every message of chatID and the chat's media
// directories. Session keys are kept: the chat may continue.
func (p *Purger) PurgeChat(ctx context.Context, chatID string) models.WipeResult {
	log := p.logger.With().Str("func", "Purger.PurgeChat").Str("chat_id", chatID).Logger()
	target := "chat:" + chatID

	var result models.WipeResult

	rows, err := p.messages.ListByChat(ctx, chatID, store.ListOptions{})
	if err != nil {
		result.Add(models.WipeEntry{Target: target, Outcome: models.WipeFailed, Err: err})
		return result
	}

	for _, m := range rows {
		result.Merge(p.purgeMessage(ctx, m.ID, false))
	}
	for _, dir := range p.media.chatDirs(chatID) {
		result.Merge(p.eraser.WipeDirectory(ctx, dir))
	}

	if result.Success() {
		if _, err := p.messages.DeleteByChat(ctx, chatID); err != nil {
			result.Add(models.WipeEntry{Target: target, Outcome: models.WipeFailed, Err: err})
		} else {
			result.Add(models.WipeEntry{Target: target, Outcome: models.WipeFull})
		}
	}

	succeeded, failed := result.Counts()
	log.Info().Int("succeeded", succeeded).Int("failed", failed).Msg("chat purged")

	p.feed.Publish(ctx, chatID)
	return result
}

func (p *Purger) dropSchedule(ctx context.Context, target models.Target) {
	if _, err := p.schedules.Delete(ctx, target); err != nil {
		p.logger.Err(err).
			Str("func", "Purger.dropSchedule").
			Str("target", target.String()).
			Msg("failed to delete schedule entry")
	}
}
