// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package erasure

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/config"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/crypto"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/keystore"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/mock"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/store"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/vault"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

type panicFixture struct {
	wiper    *PanicWiper
	fs       *faultyFS
	storages *store.Storages
	vault    *vault.KeyVault
	roots    []string
}

func newPanicFixture(t *testing.T) panicFixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	storages, err := store.NewStorages(ctx, config.DB{DSN: filepath.Join(dir, "messenger.db")}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	ks, err := keystore.NewSoftwareKeyStore(filepath.Join(dir, "keystore"), keystore.AlwaysPresent{}, crypto.NewEngine(), logger.Nop())
	require.NoError(t, err)
	v := vault.NewKeyVault(storages.Keys, ks, crypto.NewEngine(), nil, logger.Nop())

	roots := []string{
		filepath.Join(dir, "media"),
		filepath.Join(dir, "voice"),
		filepath.Join(dir, "video_notes"),
		filepath.Join(dir, "preferences"),
		filepath.Join(dir, "cache"),
	}
	fsys := newFaultyFS()
	wiper := NewPanicWiper(NewEraser(fsys, logger.Nop()), v, roots, storages, logger.Nop())

	return panicFixture{wiper: wiper, fs: fsys, storages: storages, vault: v, roots: roots}
}

func (f panicFixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	_, err := f.vault.GetOrCreateKey(ctx, "chat-1")
	require.NoError(t, err)
	_, err = f.vault.GetOrCreateKey(ctx, "chat-2")
	require.NoError(t, err)

	writeFile(t, filepath.Join(f.roots[0], "chat-1", "photo.jpg"), 256)
	writeFile(t, filepath.Join(f.roots[1], "clip.ogg"), 128)
	writeFile(t, filepath.Join(f.roots[4], "thumb.bin"), 16)

	require.NoError(t, f.storages.Preferences.Put(ctx, "ui", "theme", "dark"))
	require.NoError(t, f.storages.Preferences.Put(ctx, "session", "last_chat", "chat-1"))

	_, err = f.storages.Messages.InsertIfAbsent(ctx, models.Message{
		ID: "srv-1", ChatID: "chat-1", SenderID: "bob", Ciphertext: []byte("ct"), Nonce: []byte("n"),
		Type: models.TypeText, Timestamp: 1000, Status: models.StatusSent, CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, f.storages.Schedules.Upsert(ctx, models.ScheduledDeletion{
		Target: models.ChatTarget("chat-1"), Policy: models.PolicyOnExit, CreatedAt: time.Now(),
	}))
}

func TestPanicWiper_WipesEverything(t *testing.T) {
	f := newPanicFixture(t)
	f.seed(t)
	ctx := context.Background()

	result := f.wiper.PanicWipe(ctx)
	assert.True(t, result.Success(), "failures: %v", result.Failures())
	assert.True(t, result.Full())

	// keys are destroyed before anything else
	assert.True(t, strings.HasPrefix(result.Entries[0].Target, "session_key:"))

	for _, root := range f.roots {
		assert.NoDirExists(t, root)
	}

	keys, err := f.storages.Keys.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	namespaces, err := f.storages.Preferences.Namespaces(ctx)
	require.NoError(t, err)
	assert.Empty(t, namespaces)

	chats, err := f.storages.Messages.ChatIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, chats)

	due, err := f.storages.Schedules.ListByPolicy(ctx, models.PolicyOnExit)
	require.NoError(t, err)
	assert.Empty(t, due)

	var targets []string
	for _, e := range result.Entries {
		targets = append(targets, e.Target)
	}
	assert.Contains(t, targets, "preferences:ui")
	assert.Contains(t, targets, "preferences:session")
	assert.Contains(t, targets, "table:messages")
}

func TestPanicWiper_ReportsPartialFailure(t *testing.T) {
	f := newPanicFixture(t)
	f.seed(t)
	ctx := context.Background()

	stuck := filepath.Join(f.roots[1], "clip.ogg")
	f.fs.failOpen[stuck] = true
	f.fs.failRemove[stuck] = true

	result := f.wiper.PanicWipe(ctx)
	assert.False(t, result.Success())
	require.Len(t, result.Failures(), 1)
	assert.Equal(t, stuck, result.Failures()[0].Target)

	// everything after the stuck file was still attempted
	assert.NoDirExists(t, f.roots[0])
	assert.NoDirExists(t, f.roots[4])
	namespaces, err := f.storages.Preferences.Namespaces(ctx)
	require.NoError(t, err)
	assert.Empty(t, namespaces)
}

func TestPanicWiper_ContinuesWhenKeyStoreFails(t *testing.T) {
	f := newPanicFixture(t)
	f.seed(t)
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	ks := mock.NewMockHardwareKeyStore(ctrl)
	ks.EXPECT().DestroyMasterKey(gomock.Any()).Return(errors.New("secure element unavailable"))
	v := vault.NewKeyVault(f.storages.Keys, ks, crypto.NewEngine(), nil, logger.Nop())
	wiper := NewPanicWiper(NewEraser(nil, logger.Nop()), v, f.roots, f.storages, logger.Nop())

	result := wiper.PanicWipe(ctx)
	assert.False(t, result.Success())
	require.Len(t, result.Failures(), 1)
	assert.Equal(t, "keystore:master_key", result.Failures()[0].Target)

	for _, root := range f.roots {
		assert.NoDirExists(t, root)
	}
}
