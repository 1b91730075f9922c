// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/ZUA228132/mkr-messenger-sub000/internal/adapter"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/config"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/crypto"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/erasure"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/store"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/utils"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/vault"
)

type Services struct {
	Feed      *Feed
	Purger    *Purger
	Sync      *SyncEngine
	Retention *RetentionScheduler
	Messenger MessengerService

	RetentionJob     Job
	PendingReaperJob Job
}

func NewServices(
	storages *store.Storages,
	keys *vault.KeyVault,
	remote adapter.RemoteStore,
	eraser *erasure.Eraser,
	cfg *config.MessengerConfig,
	clock utils.Clock,
	logger *logger.Logger,
) *Services {
	files := cfg.Storage.Files

	feed := NewFeed(storages.Messages, remote.SelfID(), logger)
	purger := NewPurger(storages, eraser, files, feed, logger)
	retention := NewRetentionScheduler(storages, purger, clock, logger)
	engine := NewSyncEngine(
		storages.Messages, keys, crypto.NewEngine(), remote, eraser,
		feed, purger, retention, NewSyncConfig(files, cfg.Workers), clock, logger,
	)
	wiper := erasure.NewPanicWiper(eraser, keys, files.Roots(), storages, logger)

	messenger := NewMessengerValidationService().Wrap(
		NewMessengerService(engine, retention, feed, wiper, crypto.NewPINHasher(), cfg.App.PanicPINHash, logger),
	)

	return &Services{
		Feed:             feed,
		Purger:           purger,
		Sync:             engine,
		Retention:        retention,
		Messenger:        messenger,
		RetentionJob:     NewRetentionJob(retention, cfg.Workers.RetentionInterval, logger),
		PendingReaperJob: NewPendingReaperJob(engine, cfg.Workers.PendingTimeout/2, logger),
	}
}
