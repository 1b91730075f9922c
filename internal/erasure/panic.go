// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package erasure

import (
	"context"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/store"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

// KeyDestroyer removes every session key and the device master key.
type KeyDestroyer interface {
	DestroyAll(ctx context.Context) models.WipeResult
}

// PanicWiper destroys all local secrets on user demand.
type PanicWiper struct {
	eraser    *Eraser
	keys      KeyDestroyer
	roots     []string
	prefs     store.PreferenceRepository
	messages  store.MessageRepository
	schedules store.ScheduleRepository
	logger    *logger.Logger
}

// NewPanicWiper builds a wiper over the given sensitive roots (media,
// voice and video-note caches, preference stores, cache).
func NewPanicWiper(eraser *Eraser, keys KeyDestroyer, roots []string, storages *store.Storages, log *logger.Logger) *PanicWiper {
	return &PanicWiper{
		eraser:    eraser,
		keys:      keys,
		roots:     roots,
		prefs:     storages.Preferences,
		messages:  storages.Messages,
		schedules: storages.Schedules,
		logger:    log.WithComponent("panic_wipe"),
	}
}

// PanicWipe destroys the keys first, then the storage roots, then the
// preference namespaces and finally the local message and schedule rows.
// It is not transactional and never stops early; the result tells the
// caller whether remnants may survive.
func (p *PanicWiper) PanicWipe(ctx context.Context) models.WipeResult {
	log := p.logger.With().Str("func", "PanicWiper.PanicWipe").Logger()
	log.Warn().Msg("panic wipe started")

	var result models.WipeResult

	result.Merge(p.keys.DestroyAll(ctx))

	for _, root := range p.roots {
		if root == "" {
			continue
		}
		result.Merge(p.eraser.WipeDirectory(ctx, root))
	}

	result.Merge(p.clearPreferences(ctx))

	if n, err := p.messages.PurgeAll(ctx); err != nil {
		log.Err(err).Msg("failed to purge messages")
		result.Add(models.WipeEntry{Target: "table:messages", Outcome: models.WipeFailed, Err: err})
	} else {
		log.Debug().Int64("rows", n).Msg("messages purged")
		result.Add(models.WipeEntry{Target: "table:messages", Outcome: models.WipeFull})
	}

	if _, err := p.schedules.DeleteAll(ctx); err != nil {
		log.Err(err).Msg("failed to clear scheduled deletions")
		result.Add(models.WipeEntry{Target: "table:scheduled_deletions", Outcome: models.WipeFailed, Err: err})
	} else {
		result.Add(models.WipeEntry{Target: "table:scheduled_deletions", Outcome: models.WipeFull})
	}

	succeeded, failed := result.Counts()
	log.Warn().
		Int("succeeded", succeeded).
		Int("failed", failed).
		Bool("full", result.Full()).
		Msg("panic wipe finished")

	return result
}

func (p *PanicWiper) clearPreferences(ctx context.Context) models.WipeResult {
	var result models.WipeResult

	namespaces, err := p.prefs.Namespaces(ctx)
	if err != nil {
		p.logger.Err(err).Str("func", "PanicWiper.clearPreferences").Msg("failed to list preference namespaces")
		namespaces = nil
	}

	_, clearErr := p.prefs.ClearAll(ctx)
	if len(namespaces) == 0 {
		namespaces = []string{"*"}
	}
	for _, ns := range namespaces {
		entry := models.WipeEntry{Target: "preferences:" + ns, Outcome: models.WipeFull}
		if clearErr != nil {
			entry.Outcome, entry.Err = models.WipeFailed, clearErr
		}
		result.Add(entry)
	}
	return result
}
