// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/adapter"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/config"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/crypto"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/erasure"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/keystore"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/service"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/store"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/utils"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/vault"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/workers"
)

// ErrExitSweepIncomplete is returned by [App.Shutdown] when some session-end
// deletions could not be carried out. They stay scheduled.
var ErrExitSweepIncomplete = errors.New("exit sweep left targets behind")

type App struct {
	services *service.Services
	storages *store.Storages
	realtime adapter.RealtimeSignal
	workers  *workers.Workers

	shutdownOnce sync.Once
	shutdownErr  error

	logger *logger.Logger
}

// NewApp builds the whole dependency graph from cfg.
func NewApp(cfg *config.MessengerConfig, log *logger.Logger) (*App, error) {
	ctx := context.Background()

	storages, err := store.NewStorages(ctx, cfg.Storage.DB, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	var gate keystore.PresenceGate = keystore.AlwaysPresent{}
	if cfg.KeyStore.RequirePresence {
		gate = keystore.DenyPresence{}
	}
	keyStore, err := keystore.NewSoftwareKeyStore(cfg.KeyStore.Dir, gate, crypto.NewEngine(), log)
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("create key store: %w", err)
	}

	clock := utils.SystemClock{}
	keys := vault.NewKeyVault(storages.Keys, keyStore, crypto.NewEngine(), clock, log)

	remote, err := adapter.NewHTTPRemoteStore(cfg.Adapter, log)
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("create remote store adapter: %w", err)
	}

	var realtime adapter.RealtimeSignal
	if cfg.Adapter.RealtimeAddress != "" {
		realtime, err = adapter.NewWebSocketSignal(cfg.Adapter, log)
		if err != nil {
			_ = storages.Close()
			return nil, fmt.Errorf("create realtime adapter: %w", err)
		}
	}

	services := service.NewServices(storages, keys, remote, erasure.NewEraser(nil, log), cfg, clock, log)

	return newApp(storages, services, realtime, log), nil
}

func newApp(storages *store.Storages, services *service.Services, realtime adapter.RealtimeSignal, log *logger.Logger) *App {
	return &App{
		services: services,
		storages: storages,
		realtime: realtime,
		workers:  workers.NewWorkers(services.RetentionJob, services.PendingReaperJob),
		logger:   log.WithComponent("app"),
	}
}

// Messenger is the command surface for the presentation layer.
func (a *App) Messenger() service.MessengerService {
	return a.services.Messenger
}

// Run starts the background jobs, attaches every locally known chat and
// listens for realtime signals until ctx is done. It then shuts down.
func (a *App) Run(ctx context.Context) error {
	log := a.logger.With().Str("func", "App.Run").Logger()

	chats, err := a.storages.Messages.ChatIDs(ctx)
	if err != nil {
		return errors.Join(fmt.Errorf("list chats: %w", err), a.Shutdown(context.WithoutCancel(ctx)))
	}

	a.workers.Start(ctx)

	for _, chatID := range chats {
		if err := a.services.Messenger.Attach(ctx, chatID); err != nil {
			log.Err(err).Str("chat_id", chatID).Msg("failed to attach chat")
		}
	}
	log.Info().Int("chats", len(chats)).Msg("messenger started")

	var wg sync.WaitGroup
	if a.realtime != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := a.realtime.Listen(ctx, func(chatID string) {
				a.services.Sync.OnNewMessage(ctx, chatID)
			})
			if err != nil {
				log.Err(err).Msg("realtime listener stopped")
			}
		}()
	}

	<-ctx.Done()
	wg.Wait()

	return a.Shutdown(context.WithoutCancel(ctx))
}

// Shutdown ends the session: it stops the jobs and pollers, waits for
// in-flight sends, destroys everything scheduled ON_EXIT and closes the
// database. Only the first call has an effect.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() {
		a.shutdownErr = a.shutdown(ctx)
	})
	return a.shutdownErr
}

func (a *App) shutdown(ctx context.Context) error {
	log := a.logger.With().Str("func", "App.Shutdown").Logger()

	a.workers.Stop()
	// no reconcile may run while the final sweep wipes media files
	a.services.Sync.Close()

	var errs []error
	if err := a.services.Retention.OnExit(ctx); err != nil {
		errs = append(errs, fmt.Errorf("apply on-exit retention: %w", err))
	}

	result := a.services.Retention.SweepNow(ctx)
	if !result.Success() {
		for _, f := range result.Failures() {
			log.Warn().Str("target", f.Target).AnErr("cause", f.Err).Msg("exit sweep failure")
		}
		errs = append(errs, ErrExitSweepIncomplete)
	}

	if err := a.storages.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}

	log.Info().Msg("messenger stopped")
	return errors.Join(errs...)
}
