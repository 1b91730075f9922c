// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/crypto"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

type messengerService struct {
	sync      *SyncEngine
	retention *RetentionScheduler
	feed      *Feed
	wiper     PanicWiper

	pins         *crypto.PINHasher
	panicPINHash string

	logger *logger.Logger
}

// NewMessengerService returns the command surface over the sync engine,
// the retention scheduler and the panic wiper. panicPINHash is the
// [crypto.PINHasher] encoding of the duress PIN; empty means PanicWipe asks
// for no PIN.
func NewMessengerService(
	engine *SyncEngine,
	retention *RetentionScheduler,
	feed *Feed,
	wiper PanicWiper,
	pins *crypto.PINHasher,
	panicPINHash string,
	log *logger.Logger,
) MessengerService {
	if pins == nil {
		pins = crypto.NewPINHasher()
	}
	return &messengerService{
		sync:         engine,
		retention:    retention,
		feed:         feed,
		wiper:        wiper,
		pins:         pins,
		panicPINHash: panicPINHash,
		logger:       log.WithComponent("messenger"),
	}
}

func (m *messengerService) Send(ctx context.Context, cmd models.SendCommand) (models.Message, error) {
	return m.sync.Send(ctx, cmd.ChatID, cmd.Type, cmd.Plaintext)
}

func (m *messengerService) SendMedia(ctx context.Context, cmd models.SendMediaCommand) (models.Message, error) {
	return m.sync.SendMedia(ctx, cmd.ChatID, cmd.Type, cmd.SourcePath)
}

func (m *messengerService) Resend(ctx context.Context, messageID string) (models.Message, error) {
	return m.sync.Resend(ctx, messageID)
}

func (m *messengerService) DeleteMessage(ctx context.Context, cmd models.DeleteCommand) error {
	return m.sync.DeleteMessage(ctx, cmd.MessageID, cmd.Scope)
}

func (m *messengerService) ScheduleAutoDelete(ctx context.Context, cmd models.AutoDeleteCommand) error {
	return m.retention.Schedule(ctx, cmd.Target, cmd.Policy)
}

func (m *messengerService) Messages(ctx context.Context, chatID string) (<-chan []models.MessageView, func(), error) {
	return m.feed.Subscribe(ctx, chatID)
}

func (m *messengerService) Attach(ctx context.Context, chatID string) error {
	return m.sync.Attach(ctx, chatID)
}

func (m *messengerService) Detach(chatID string) {
	m.sync.Detach(chatID)
}

// PanicWipe stops every poller and destroys all local secrets. With a
// duress PIN configured, pin is checked first and a wrong PIN destroys
// nothing.
func (m *messengerService) PanicWipe(ctx context.Context, pin string) (models.WipeResult, error) {
	if m.panicPINHash != "" {
		ok, err := m.pins.Verify(pin, m.panicPINHash)
		if err != nil {
			return models.WipeResult{}, err
		}
		if !ok {
			m.logger.Warn().Str("func", "messengerService.PanicWipe").Msg("panic wipe refused: wrong PIN")
			return models.WipeResult{}, ErrWrongPIN
		}
	}

	m.sync.DetachAll()
	return m.wiper.PanicWipe(ctx), nil
}
