// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package vault manages per-chat session keys. Keys are generated on first
// use, wrapped by the device key store and persisted wrapped; raw key bytes
// only exist for the duration of a single operation.
package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/crypto"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/keystore"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/store"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/utils"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

// masterKeyTarget names the device master key in wipe results.
const masterKeyTarget = "keystore:master_key"

// KeyHandle is an opaque reference to one session key. It never carries raw
// key material.
type KeyHandle struct {
	ChatID    string
	KeyID     string
	Current   bool
	CreatedAt time.Time
}

func handleOf(k models.SessionKey) KeyHandle {
	return KeyHandle{ChatID: k.ChatID, KeyID: k.KeyID, Current: k.Current, CreatedAt: k.CreatedAt}
}

// KeyVault implements the session-key lifecycle.
type KeyVault struct {
	keys     store.KeyRepository
	keyStore keystore.HardwareKeyStore
	engine   crypto.Engine
	ids      *utils.UUIDGenerator
	locks    *utils.KeyedMutex
	clock    utils.Clock
	logger   *logger.Logger
}

func NewKeyVault(keys store.KeyRepository, keyStore keystore.HardwareKeyStore, engine crypto.Engine, clock utils.Clock, log *logger.Logger) *KeyVault {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &KeyVault{
		keys:     keys,
		keyStore: keyStore,
		engine:   engine,
		ids:      utils.NewUUIDGenerator(),
		locks:    utils.NewKeyedMutex(),
		clock:    clock,
		logger:   log.WithComponent("vault"),
	}
}

// GetOrCreateKey returns the chat's current key, creating it on first use.
// Concurrent callers for one chat all receive the same key: an in-process
// lock serialises them and the unique current-key index settles races with
// other processes.
func (v *KeyVault) GetOrCreateKey(ctx context.Context, chatID string) (KeyHandle, error) {
	unlock := v.locks.Lock(chatID)
	defer unlock()

	current, err := v.keys.GetCurrent(ctx, chatID)
	if err == nil {
		return handleOf(current), nil
	}
	if !errors.Is(err, store.ErrKeyNotFound) {
		return KeyHandle{}, err
	}

	key, err := v.newWrappedKey(ctx, chatID)
	if err != nil {
		return KeyHandle{}, err
	}

	inserted, err := v.keys.InsertCurrentIfAbsent(ctx, key)
	if err != nil {
		return KeyHandle{}, err
	}
	if inserted {
		v.logger.Debug().
			Str("func", "KeyVault.GetOrCreateKey").
			Str("chat_id", chatID).
			Str("key_id", key.KeyID).
			Msg("created session key")
		key.Current = true
		return handleOf(key), nil
	}

	// lost the race against another writer: use its key
	current, err = v.keys.GetCurrent(ctx, chatID)
	if err != nil {
		return KeyHandle{}, err
	}
	return handleOf(current), nil
}

// Rotate replaces the chat's current key with a fresh one. Older keys stay
// available for decrypting history.
func (v *KeyVault) Rotate(ctx context.Context, chatID string) (KeyHandle, error) {
	unlock := v.locks.Lock(chatID)
	defer unlock()

	key, err := v.newWrappedKey(ctx, chatID)
	if err != nil {
		return KeyHandle{}, err
	}
	if err := v.keys.Supersede(ctx, key); err != nil {
		return KeyHandle{}, err
	}

	v.logger.Info().
		Str("func", "KeyVault.Rotate").
		Str("chat_id", chatID).
		Str("key_id", key.KeyID).
		Msg("rotated session key")

	key.Current = true
	return handleOf(key), nil
}

func (v *KeyVault) newWrappedKey(ctx context.Context, chatID string) (models.SessionKey, error) {
	raw, err := v.engine.GenerateKey()
	if err != nil {
		return models.SessionKey{}, fmt.Errorf("generate session key: %w", err)
	}
	defer crypto.SecureZero(raw)

	wrapped, iv, err := v.keyStore.Wrap(ctx, raw)
	if err != nil {
		return models.SessionKey{}, fmt.Errorf("wrap session key: %w", err)
	}

	return models.SessionKey{
		ChatID:    chatID,
		KeyID:     v.ids.Generate(),
		Wrapped:   wrapped,
		WrapIV:    iv,
		CreatedAt: v.clock.Now(),
	}, nil
}

// Keys returns the chat's keys, current first, then older keys newest first.
func (v *KeyVault) Keys(ctx context.Context, chatID string) ([]KeyHandle, error) {
	rows, err := v.keys.ListByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	handles := make([]KeyHandle, 0, len(rows))
	for _, r := range rows {
		handles = append(handles, handleOf(r))
	}
	return handles, nil
}

// Unwrap returns the raw key for h. The caller owns the slice and must zero
// it; prefer [KeyVault.WithKey].
func (v *KeyVault) Unwrap(ctx context.Context, h KeyHandle) ([]byte, error) {
	row, err := v.keys.Get(ctx, h.KeyID)
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, h.KeyID)
	}
	if err != nil {
		return nil, err
	}

	raw, err := v.keyStore.Unwrap(ctx, row.Wrapped, row.WrapIV)
	switch {
	case err == nil:
	case errors.Is(err, keystore.ErrAccessDenied):
		return nil, fmt.Errorf("%w: %w", ErrAccessDenied, err)
	case errors.Is(err, keystore.ErrUnwrapFailed), errors.Is(err, keystore.ErrMasterKeyNotFound):
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return nil, err
	}

	if len(raw) != crypto.KeySize {
		crypto.SecureZero(raw)
		return nil, fmt.Errorf("%w: unwrapped key has %d bytes", ErrNotFound, len(raw))
	}
	return raw, nil
}

// WithKey unwraps h, runs fn with the raw key and zeroes it on every exit
// path.
func (v *KeyVault) WithKey(ctx context.Context, h KeyHandle, fn func(key []byte) error) error {
	raw, err := v.Unwrap(ctx, h)
	if err != nil {
		return err
	}
	return crypto.WithKey(raw, fn)
}

// DestroyAll deletes every key row and then the device master key. It is
// best effort: every key is attempted and reported.
func (v *KeyVault) DestroyAll(ctx context.Context) models.WipeResult {
	log := v.logger.With().Str("func", "KeyVault.DestroyAll").Logger()

	var result models.WipeResult

	keys, err := v.keys.List(ctx)
	if err != nil {
		log.Err(err).Msg("failed to list session keys, deleting in bulk")
		if _, err := v.keys.DeleteAll(ctx); err != nil {
			result.Add(models.WipeEntry{Target: "session_keys", Outcome: models.WipeFailed, Err: err})
		} else {
			result.Add(models.WipeEntry{Target: "session_keys", Outcome: models.WipeFull})
		}
	}

	for _, k := range keys {
		target := "session_key:" + k.KeyID
		err := v.keys.Delete(ctx, k.KeyID)
		switch {
		case err == nil:
			result.Add(models.WipeEntry{Target: target, Outcome: models.WipeFull})
		case errors.Is(err, store.ErrKeyNotFound):
			log.Debug().Str("key_id", k.KeyID).Msg("session key already gone")
			result.Add(models.WipeEntry{Target: target, Outcome: models.WipeFull})
		default:
			log.Err(err).Str("key_id", k.KeyID).Msg("failed to delete session key")
			result.Add(models.WipeEntry{Target: target, Outcome: models.WipeFailed, Err: err})
		}
	}

	err = v.keyStore.DestroyMasterKey(ctx)
	switch {
	case err == nil:
		result.Add(models.WipeEntry{Target: masterKeyTarget, Outcome: models.WipeFull})
	case errors.Is(err, keystore.ErrMasterKeyNotFound):
		log.Debug().Msg("master key already absent")
		result.Add(models.WipeEntry{Target: masterKeyTarget, Outcome: models.WipeFull})
	default:
		log.Err(err).Msg("failed to destroy master key")
		result.Add(models.WipeEntry{Target: masterKeyTarget, Outcome: models.WipeFailed, Err: err})
	}

	return result
}
