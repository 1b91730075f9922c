// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/adapter"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/config"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/crypto"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/erasure"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/keystore"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/mock"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/store"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/utils"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/vault"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

const (
	selfID = "user-me"
	peerID = "user-peer"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	ctx       context.Context
	storages  *store.Storages
	vault     *vault.KeyVault
	remote    *mock.MockRemoteStore
	clock     *utils.ManualClock
	files     config.Files
	feed      *Feed
	purger    *Purger
	retention *RetentionScheduler
	engine    *SyncEngine
	wiper     *erasure.PanicWiper
}

type envOption func(*envOptions)

type envOptions struct {
	eraser FileEraser
}

func withEraser(e FileEraser) envOption {
	return func(o *envOptions) { o.eraser = e }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	var o envOptions
	for _, opt := range opts {
		opt(&o)
	}

	ctx := context.Background()
	dir := t.TempDir()
	log := logger.Nop()

	storages, err := store.NewStorages(ctx, config.DB{DSN: filepath.Join(dir, "messenger.db")}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	ks, err := keystore.NewSoftwareKeyStore(filepath.Join(dir, "keystore"), keystore.AlwaysPresent{}, crypto.NewEngine(), log)
	require.NoError(t, err)

	clock := utils.NewManualClock(testNow)
	keys := vault.NewKeyVault(storages.Keys, ks, crypto.NewEngine(), clock, log)

	ctrl := gomock.NewController(t)
	remote := mock.NewMockRemoteStore(ctrl)
	remote.EXPECT().SelfID().Return(selfID).AnyTimes()

	files := config.Files{
		MediaDir:       filepath.Join(dir, "media"),
		VoiceDir:       filepath.Join(dir, "voice"),
		VideoNoteDir:   filepath.Join(dir, "video_notes"),
		PreferencesDir: filepath.Join(dir, "preferences"),
		CacheDir:       filepath.Join(dir, "cache"),
	}

	eraser := erasure.NewEraser(nil, log)
	var fileEraser FileEraser = eraser
	if o.eraser != nil {
		fileEraser = o.eraser
	}

	feed := NewFeed(storages.Messages, selfID, log)
	purger := NewPurger(storages, fileEraser, files, feed, log)
	retention := NewRetentionScheduler(storages, purger, clock, log)
	engine := NewSyncEngine(storages.Messages, keys, crypto.NewEngine(), remote, fileEraser, feed, purger, retention,
		SyncConfig{
			Files:          files,
			PollInterval:   10 * time.Millisecond,
			SendTimeout:    time.Second,
			PendingTimeout: 2 * time.Minute,
		}, clock, log)
	t.Cleanup(engine.Close)

	return &testEnv{
		ctx:       ctx,
		storages:  storages,
		vault:     keys,
		remote:    remote,
		clock:     clock,
		files:     files,
		feed:      feed,
		purger:    purger,
		retention: retention,
		engine:    engine,
		wiper:     erasure.NewPanicWiper(eraser, keys, files.Roots(), storages, log),
	}
}

// ack acknowledges a send under the canonical ID id.
func ack(id string) func(context.Context, adapter.SendRequest) (models.RemoteMessage, error) {
	return func(_ context.Context, req adapter.SendRequest) (models.RemoteMessage, error) {
		return echo(id, req, "SENT"), nil
	}
}

func echo(id string, req adapter.SendRequest, status string) models.RemoteMessage {
	return models.RemoteMessage{
		ID:         id,
		ChatID:     req.ChatID,
		SenderID:   selfID,
		Ciphertext: req.Ciphertext,
		Nonce:      req.Nonce,
		Timestamp:  req.Timestamp,
		Type:       req.Type,
		Status:     status,
	}
}

// incoming builds a remote message from peer encrypted with the chat's key.
func (e *testEnv) incoming(t *testing.T, id, chatID string, ts int64, msgType models.MessageType, plaintext, status string) models.RemoteMessage {
	t.Helper()

	h, err := e.vault.GetOrCreateKey(e.ctx, chatID)
	require.NoError(t, err)

	var ct, nonce []byte
	require.NoError(t, e.vault.WithKey(e.ctx, h, func(key []byte) error {
		var err error
		ct, nonce, err = crypto.NewEngine().Encrypt([]byte(plaintext), key)
		return err
	}))

	return models.RemoteMessage{
		ID:         id,
		ChatID:     chatID,
		SenderID:   peerID,
		Ciphertext: ct,
		Nonce:      nonce,
		Timestamp:  ts,
		Type:       msgType,
		Status:     status,
	}
}

func (e *testEnv) rows(t *testing.T, chatID string) []models.Message {
	t.Helper()
	rows, err := e.storages.Messages.ListByChat(e.ctx, chatID, store.ListOptions{})
	require.NoError(t, err)
	return rows
}

// stubEraser reports a fixed outcome without touching the disk.
type stubEraser struct {
	outcome models.WipeOutcome
	wiped   []string
}

func (s *stubEraser) WipeFile(_ context.Context, path string) models.WipeEntry {
	s.wiped = append(s.wiped, path)
	return models.WipeEntry{Target: path, Outcome: s.outcome}
}

func (s *stubEraser) WipeDirectory(_ context.Context, root string) models.WipeResult {
	var r models.WipeResult
	r.Add(s.WipeFile(context.Background(), root))
	return r
}
