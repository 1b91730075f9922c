// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/adapter"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/config"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/crypto"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/store"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/utils"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

// Resend limits. A message is sent at most MaxSendAttempts times and each
// resend waits at least resendBaseDelay<<attempt, capped at resendMaxDelay,
// counted from the previous attempt.
const (
	MaxSendAttempts = 5

	resendBaseDelay = 2 * time.Second
	resendMaxDelay  = 5 * time.Minute
)

// SyncConfig holds the timing of the sync engine.
type SyncConfig struct {
	Files          config.Files
	PollInterval   time.Duration
	SendTimeout    time.Duration
	PendingTimeout time.Duration
}

// NewSyncConfig builds a SyncConfig from the storage and worker settings.
func NewSyncConfig(files config.Files, workers config.Workers) SyncConfig {
	return SyncConfig{
		Files:          files,
		PollInterval:   workers.PollInterval,
		SendTimeout:    workers.SendTimeout,
		PendingTimeout: workers.PendingTimeout,
	}
}

func (c SyncConfig) withDefaults() SyncConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = config.DefaultPollInterval
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = config.DefaultSendTimeout
	}
	if c.PendingTimeout <= 0 {
		c.PendingTimeout = config.DefaultPendingTimeout
	}
	return c
}

// SyncEngine drives the delivery state machine of every message:
//
//	LOCAL_PENDING -> SENT -> DELIVERED -> READ
//	LOCAL_PENDING -> FAILED
//	any           -> PURGED
//
// Outgoing messages are stored optimistically under a provisional ID and
// replaced by the canonical row once the remote store acknowledges them.
// Incoming data is merged by [SyncEngine.Reconcile], which is idempotent and
// safe to run concurrently from the poller and the push signal.
type SyncEngine struct {
	messages store.MessageRepository
	keys     KeyVault
	engine   crypto.Engine
	remote   adapter.RemoteStore
	eraser   FileEraser
	media    mediaStore
	feed     *Feed
	purger   *Purger
	observer StatusObserver
	ids      *utils.UUIDGenerator
	clock    utils.Clock
	cfg      SyncConfig

	tsMu   sync.Mutex
	lastTS int64

	inflightMu sync.Mutex
	inflight   map[string]struct{}
	sends      sync.WaitGroup

	pollMu  sync.Mutex
	pollers map[string]*poller
	closed  bool

	logger *logger.Logger
}

func NewSyncEngine(
	messages store.MessageRepository,
	keys KeyVault,
	engine crypto.Engine,
	remote adapter.RemoteStore,
	eraser FileEraser,
	feed *Feed,
	purger *Purger,
	observer StatusObserver,
	cfg SyncConfig,
	clock utils.Clock,
	log *logger.Logger,
) *SyncEngine {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if observer == nil {
		observer = noopObserver{}
	}
	cfg = cfg.withDefaults()
	return &SyncEngine{
		messages: messages,
		keys:     keys,
		engine:   engine,
		remote:   remote,
		eraser:   eraser,
		media:    newMediaStore(cfg.Files),
		feed:     feed,
		purger:   purger,
		observer: observer,
		ids:      utils.NewUUIDGenerator(),
		clock:    clock,
		cfg:      cfg,
		inflight: make(map[string]struct{}),
		pollers:  make(map[string]*poller),
		logger:   log.WithComponent("sync"),
	}
}

type noopObserver struct{}

func (noopObserver) OnStatusChange(context.Context, models.Message, models.Status) error { return nil }
func (noopObserver) ReassignMessage(context.Context, string, string) error               { return nil }

// Send encrypts plaintext with the chat's current key, stores it as
// LOCAL_PENDING and sends it. The send is bounded by SendTimeout and is not
// cancelled with ctx. On failure the message becomes FAILED and is returned
// together with an error wrapping [ErrSendFailed]; it is never retried
// automatically.
func (e *SyncEngine) Send(ctx context.Context, chatID string, msgType models.MessageType, plaintext []byte) (models.Message, error) {
	ciphertext, nonce, err := e.seal(ctx, chatID, plaintext)
	if err != nil {
		return models.Message{}, err
	}

	msg := e.newPending(chatID, msgType, ciphertext, nonce)
	msg.Content = string(plaintext)

	if err := e.insertPending(ctx, msg); err != nil {
		return models.Message{}, err
	}
	return e.deliver(ctx, msg)
}

// SendMedia reads the file at srcPath, keeps a plaintext copy in the media
// store and sends the encrypted bytes like [SyncEngine.Send].
func (e *SyncEngine) SendMedia(ctx context.Context, chatID string, msgType models.MessageType, srcPath string) (models.Message, error) {
	data, err := e.media.read(srcPath)
	if err != nil {
		return models.Message{}, err
	}
	defer crypto.SecureZero(data)

	ciphertext, nonce, err := e.seal(ctx, chatID, data)
	if err != nil {
		return models.Message{}, err
	}

	msg := e.newPending(chatID, msgType, ciphertext, nonce)
	msg.LocalPath = e.media.path(msg)
	if err := e.media.write(msg.LocalPath, data); err != nil {
		return models.Message{}, err
	}

	if err := e.insertPending(ctx, msg); err != nil {
		e.eraser.WipeFile(ctx, msg.LocalPath)
		return models.Message{}, err
	}
	return e.deliver(ctx, msg)
}

// Resend sends a FAILED message again under a new provisional ID. The
// failed row is replaced, so the chat still shows one message.
func (e *SyncEngine) Resend(ctx context.Context, messageID string) (models.Message, error) {
	failed, err := e.messages.Get(ctx, messageID)
	if err != nil {
		return models.Message{}, err
	}
	if failed.Status != models.StatusFailed || !failed.IsProvisional() {
		return models.Message{}, fmt.Errorf("%w: %s is %s", ErrResendNotAllowed, messageID, failed.Status)
	}
	if failed.Attempt+1 >= MaxSendAttempts {
		return models.Message{}, fmt.Errorf("%w: %d attempts", ErrResendLimitReached, failed.Attempt+1)
	}
	now := e.clock.Now()
	if wait := failed.CreatedAt.Add(resendDelay(failed.Attempt)); now.Before(wait) {
		return models.Message{}, fmt.Errorf("%w: retry after %s", ErrResendTooSoon, wait.Sub(now).Round(time.Millisecond))
	}

	next := e.newPending(failed.ChatID, failed.Type, failed.Ciphertext, failed.Nonce)
	next.Content = failed.Content
	next.ContentError = failed.ContentError
	next.DeleteAt = failed.DeleteAt
	next.Attempt = failed.Attempt + 1

	if failed.LocalPath != "" {
		next.LocalPath = e.media.path(next)
		if err := e.media.move(failed.LocalPath, next.LocalPath); err != nil {
			return models.Message{}, err
		}
	}

	if err := e.messages.ReplaceProvisional(ctx, failed.ID, next); err != nil {
		if next.LocalPath != "" {
			// a purged row must not get its plaintext back
			if errors.Is(err, store.ErrMessageNotFound) || e.media.move(next.LocalPath, failed.LocalPath) != nil {
				e.eraser.WipeFile(ctx, next.LocalPath)
			}
		}
		return models.Message{}, err
	}
	e.reassign(ctx, failed.ID, next.ID)
	e.feed.Publish(ctx, next.ChatID)

	return e.deliver(ctx, next)
}

func resendDelay(attempt int) time.Duration {
	if attempt >= 16 {
		return resendMaxDelay
	}
	return min(resendBaseDelay<<attempt, resendMaxDelay)
}

// DeleteMessage removes a message locally. With [models.DeleteForEveryone]
// the remote copy is deleted first and a remote failure keeps the local
// copy.
func (e *SyncEngine) DeleteMessage(ctx context.Context, messageID string, scope models.DeleteScope) error {
	msg, err := e.messages.Get(ctx, messageID)
	if err != nil {
		return err
	}

	if scope == models.DeleteForEveryone && !msg.IsProvisional() {
		if err := e.remote.Delete(ctx, msg.ChatID, msg.ID); err != nil {
			return fmt.Errorf("remote delete: %w", err)
		}
	}

	return wipeError(e.purger.PurgeMessage(ctx, messageID))
}

// AbandonStalePending marks LOCAL_PENDING messages older than the pending
// timeout as FAILED unless their send is still running. It returns the
// number of messages that were abandoned.
func (e *SyncEngine) AbandonStalePending(ctx context.Context) (int, error) {
	log := e.logger.With().Str("func", "SyncEngine.AbandonStalePending").Logger()

	stale, err := e.messages.ListByStatus(ctx, models.StatusLocalPending, e.clock.Now().Add(-e.cfg.PendingTimeout))
	if err != nil {
		return 0, err
	}

	abandoned := 0
	chats := make(map[string]struct{})
	for _, m := range stale {
		if e.isInflight(m.ID) {
			continue
		}
		err := e.messages.UpdateStatus(ctx, m.ID, models.StatusFailed)
		switch {
		case err == nil:
			abandoned++
			chats[m.ChatID] = struct{}{}
		case errors.Is(err, store.ErrStatusTransition), errors.Is(err, store.ErrMessageNotFound):
			// acknowledged or deleted meanwhile
		default:
			log.Err(err).Str("message_id", m.ID).Msg("failed to abandon pending message")
		}
	}

	for chatID := range chats {
		e.feed.Publish(ctx, chatID)
	}
	if abandoned > 0 {
		log.Info().Int("count", abandoned).Msg("abandoned stale pending messages")
	}
	return abandoned, nil
}

func (e *SyncEngine) seal(ctx context.Context, chatID string, plaintext []byte) (ciphertext, nonce []byte, err error) {
	handle, err := e.keys.GetOrCreateKey(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	err = e.keys.WithKey(ctx, handle, func(key []byte) error {
		var err error
		ciphertext, nonce, err = e.engine.Encrypt(plaintext, key)
		return err
	})
	return ciphertext, nonce, err
}

func (e *SyncEngine) newPending(chatID string, msgType models.MessageType, ciphertext, nonce []byte) models.Message {
	now := e.clock.Now()
	return models.Message{
		ID:         e.ids.ProvisionalID(now),
		ChatID:     chatID,
		SenderID:   e.remote.SelfID(),
		Ciphertext: ciphertext,
		Nonce:      nonce,
		Type:       msgType,
		Timestamp:  e.nextTimestamp(now),
		Status:     models.StatusLocalPending,
		CreatedAt:  now,
	}
}

// nextTimestamp keeps client timestamps strictly increasing so two sends in
// the same millisecond never share a correlation tuple.
func (e *SyncEngine) nextTimestamp(now time.Time) int64 {
	e.tsMu.Lock()
	defer e.tsMu.Unlock()

	ts := now.UnixMilli()
	if ts <= e.lastTS {
		ts = e.lastTS + 1
	}
	e.lastTS = ts
	return ts
}

func (e *SyncEngine) insertPending(ctx context.Context, msg models.Message) error {
	inserted, err := e.messages.InsertIfAbsent(ctx, msg)
	if err != nil {
		return err
	}
	if !inserted {
		return fmt.Errorf("%w: %s", store.ErrDuplicateMessage, msg.ID)
	}
	e.feed.Publish(ctx, msg.ChatID)
	return nil
}

// deliver sends a stored LOCAL_PENDING message and settles its outcome.
func (e *SyncEngine) deliver(ctx context.Context, msg models.Message) (models.Message, error) {
	log := e.logger.With().
		Str("func", "SyncEngine.deliver").
		Str("message_id", msg.ID).
		Str("chat_id", msg.ChatID).
		Logger()

	e.markInflight(msg.ID)
	defer e.unmarkInflight(msg.ID)
	e.sends.Add(1)
	defer e.sends.Done()

	// the caller leaving the screen must not abort a send that already started
	ctx = context.WithoutCancel(ctx)
	sendCtx, cancel := context.WithTimeout(ctx, e.cfg.SendTimeout)
	defer cancel()

	ack, err := e.remote.Send(sendCtx, adapter.SendRequest{
		ChatID:     msg.ChatID,
		Ciphertext: msg.Ciphertext,
		Nonce:      msg.Nonce,
		Type:       msg.Type,
		Timestamp:  msg.Timestamp,
		RemoteURL:  msg.RemoteURL,
	})
	if err != nil {
		log.Warn().Err(err).Msg("send failed")
		switch updErr := e.messages.UpdateStatus(ctx, msg.ID, models.StatusFailed); {
		case updErr == nil:
			msg.Status = models.StatusFailed
		case errors.Is(updErr, store.ErrMessageNotFound), errors.Is(updErr, store.ErrStatusTransition):
			log.Debug().Err(updErr).Msg("pending row changed while sending")
		default:
			log.Err(updErr).Msg("failed to mark message failed")
		}
		e.feed.Publish(ctx, msg.ChatID)
		return msg, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	canonical := ack.ToMessage()
	canonical.ChatID = msg.ChatID
	canonical.SenderID = msg.SenderID
	canonical.Timestamp = msg.Timestamp
	canonical.Type = msg.Type
	if len(canonical.Ciphertext) == 0 {
		canonical.Ciphertext, canonical.Nonce = msg.Ciphertext, msg.Nonce
	}
	canonical.Content = msg.Content
	canonical.ContentError = msg.ContentError
	canonical.DeleteAt = msg.DeleteAt
	canonical.Attempt = msg.Attempt
	canonical.CreatedAt = msg.CreatedAt

	moved := false
	if msg.LocalPath != "" {
		canonical.LocalPath = e.media.path(canonical)
		if err := e.media.move(msg.LocalPath, canonical.LocalPath); err != nil {
			// a concurrent reconcile may already have placed the file
			if !fileExists(canonical.LocalPath) {
				log.Err(err).Msg("failed to move media to canonical path")
				canonical.LocalPath = msg.LocalPath
			}
		} else {
			moved = true
		}
	}

	err = e.messages.ReplaceProvisional(ctx, msg.ID, canonical)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrMessageNotFound):
		// deleted by the user while the send was in flight
		log.Info().Str("canonical_id", canonical.ID).Msg("message deleted during send, dropping acknowledgement")
		if moved {
			e.eraser.WipeFile(ctx, canonical.LocalPath)
		}
		return canonical, nil
	default:
		log.Err(err).Msg("failed to store acknowledged message")
		return msg, err
	}

	e.reassign(ctx, msg.ID, canonical.ID)
	e.feed.Publish(ctx, canonical.ChatID)

	log.Debug().Str("canonical_id", canonical.ID).Msg("message sent")
	return canonical, nil
}

func (e *SyncEngine) reassign(ctx context.Context, fromID, toID string) {
	if err := e.observer.ReassignMessage(ctx, fromID, toID); err != nil {
		e.logger.Err(err).
			Str("func", "SyncEngine.reassign").
			Str("from_id", fromID).
			Str("to_id", toID).
			Msg("failed to move deletion schedule")
	}
}

func (e *SyncEngine) markInflight(id string) {
	e.inflightMu.Lock()
	e.inflight[id] = struct{}{}
	e.inflightMu.Unlock()
}

func (e *SyncEngine) unmarkInflight(id string) {
	e.inflightMu.Lock()
	delete(e.inflight, id)
	e.inflightMu.Unlock()
}

func (e *SyncEngine) isInflight(id string) bool {
	e.inflightMu.Lock()
	defer e.inflightMu.Unlock()
	_, ok := e.inflight[id]
	return ok
}

// wipeError turns the failures of a wipe result into one error.
func wipeError(result models.WipeResult) error {
	var errs []error
	for _, f := range result.Failures() {
		err := f.Err
		if err == nil {
			err = errors.New("wipe failed")
		}
		errs = append(errs, fmt.Errorf("%s: %w", f.Target, err))
	}
	return errors.Join(errs...)
}
