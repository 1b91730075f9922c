// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/crypto"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/utils"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/vault"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

// ReconcileReport counts what one reconcile pass changed.
type ReconcileReport struct {
	Fetched    int
	Inserted   int
	Advanced   int
	Replaced   int
	Unreadable int
	// Purged counts remote messages skipped because they were destroyed
	// locally.
	Purged int
}

func (r ReconcileReport) changed() bool {
	return r.Inserted > 0 || r.Advanced > 0 || r.Replaced > 0
}

// Reconcile merges the remote view of chatID into the local store. Running
// it twice, or concurrently from the poller and the push signal, leaves one
// row per logical message: the store deduplicates by ID and by the
// (chat, sender, timestamp) correlation tuple.
//
// Payloads that fail authentication are kept with a content error. A denied
// key access aborts the pass and is returned, since the user can fix it.
func (e *SyncEngine) Reconcile(ctx context.Context, chatID string) (ReconcileReport, error) {
	log := e.logger.With().
		Str("func", "SyncEngine.Reconcile").
		Str("chat_id", chatID).
		Str("trigger", utils.TriggerFromContext(ctx)).
		Logger()

	var report ReconcileReport

	remote, err := e.remote.Fetch(ctx, chatID)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	report.Fetched = len(remote)

	var (
		keys     []vault.KeyHandle
		keysRead bool
		errs     []error
	)

	for _, rm := range remote {
		if rm.ID == "" {
			continue
		}
		msg := rm.ToMessage()
		if msg.ChatID == "" {
			msg.ChatID = chatID
		}
		msg.CreatedAt = e.clock.Now()

		exists, err := e.messages.Exists(ctx, msg.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if exists {
			if err := e.advance(ctx, msg, &report); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		// checked before decrypting so a destroyed payload never reaches disk
		purged, err := e.messages.IsPurged(ctx, msg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if purged {
			report.Purged++
			continue
		}

		if !keysRead {
			keys, err = e.keys.Keys(ctx, chatID)
			if err != nil {
				errs = append(errs, err)
				break
			}
			keysRead = true
		}

		tmp, err := e.open(ctx, keys, &msg)
		if errors.Is(err, vault.ErrAccessDenied) {
			errs = append(errs, err)
			break
		}
		if err != nil {
			log.Warn().Err(err).Str("message_id", msg.ID).Msg("message payload is unreadable")
			msg.ContentError = err.Error()
			report.Unreadable++
		}

		if err := e.store(ctx, msg, tmp, &report); err != nil {
			errs = append(errs, err)
		}
	}

	if report.changed() {
		e.feed.Publish(ctx, chatID)
	}

	log.Debug().
		Int("fetched", report.Fetched).
		Int("inserted", report.Inserted).
		Int("advanced", report.Advanced).
		Int("replaced", report.Replaced).
		Int("unreadable", report.Unreadable).
		Int("purged", report.Purged).
		Msg("reconciled chat")

	return report, errors.Join(errs...)
}

// advance applies a forward-only status move to a known message.
func (e *SyncEngine) advance(ctx context.Context, msg models.Message, report *ReconcileReport) error {
	res, err := e.messages.ReconcileInsert(ctx, msg)
	if err != nil {
		return err
	}
	if res.Advanced {
		report.Advanced++
		e.notifyStatus(ctx, msg)
	}
	return nil
}

// store inserts a new canonical message. tmp is the decrypted media file
// waiting for its final name, if any.
func (e *SyncEngine) store(ctx context.Context, msg models.Message, tmp string, report *ReconcileReport) error {
	res, err := e.messages.ReconcileInsert(ctx, msg)
	if err != nil {
		if tmp != "" {
			e.eraser.WipeFile(ctx, tmp)
		}
		return err
	}
	if res.Purged {
		report.Purged++
	}

	if tmp != "" {
		if res.Inserted {
			if err := e.media.move(tmp, msg.LocalPath); err != nil {
				e.eraser.WipeFile(ctx, tmp)
				e.logger.Err(err).
					Str("func", "SyncEngine.store").
					Str("message_id", msg.ID).
					Msg("failed to place decrypted media")
			}
		} else {
			e.eraser.WipeFile(ctx, tmp)
		}
	}

	if res.Replaced != nil {
		report.Replaced++
		e.reassign(ctx, res.Replaced.ID, msg.ID)
		if p := res.Replaced.LocalPath; p != "" && p != msg.LocalPath {
			e.eraser.WipeFile(ctx, p)
		}
	}
	if res.Inserted {
		report.Inserted++
		if msg.Status == models.StatusRead {
			e.notifyStatus(ctx, msg)
		}
	}
	if res.Advanced {
		report.Advanced++
		e.notifyStatus(ctx, msg)
	}
	return nil
}

// open decrypts msg with the first chat key that authenticates it. Text
// lands in msg.Content; media is written to a temporary file whose path is
// returned while msg.LocalPath receives the final path.
func (e *SyncEngine) open(ctx context.Context, keys []vault.KeyHandle, msg *models.Message) (string, error) {
	if len(keys) == 0 {
		return "", vault.ErrNotFound
	}

	var lastErr error
	for _, h := range keys {
		var plain []byte
		err := e.keys.WithKey(ctx, h, func(key []byte) error {
			var err error
			plain, err = e.engine.Decrypt(msg.Ciphertext, msg.Nonce, key)
			return err
		})
		if errors.Is(err, vault.ErrAccessDenied) {
			return "", err
		}
		if err != nil {
			lastErr = err
			continue
		}

		return e.place(msg, plain)
	}

	if errors.Is(lastErr, crypto.ErrAuthenticationFailed) || errors.Is(lastErr, vault.ErrNotFound) {
		return "", lastErr
	}
	return "", fmt.Errorf("%w: %w", crypto.ErrAuthenticationFailed, lastErr)
}

func (e *SyncEngine) place(msg *models.Message, plain []byte) (string, error) {
	defer crypto.SecureZero(plain)

	if !msg.Type.IsMedia() {
		msg.Content = string(plain)
		return "", nil
	}

	final := e.media.path(*msg)
	tmp, err := e.media.writeTemp(final, plain)
	if err != nil {
		return "", err
	}
	msg.LocalPath = final
	return tmp, nil
}

func (e *SyncEngine) notifyStatus(ctx context.Context, msg models.Message) {
	if err := e.observer.OnStatusChange(ctx, msg, msg.Status); err != nil {
		e.logger.Err(err).
			Str("func", "SyncEngine.notifyStatus").
			Str("message_id", msg.ID).
			Str("status", string(msg.Status)).
			Msg("status observer failed")
	}
}
