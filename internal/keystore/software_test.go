// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package keystore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/crypto"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, gate PresenceGate) *SoftwareKeyStore {
	t.Helper()
	ks, err := NewSoftwareKeyStore(t.TempDir(), gate, crypto.NewEngine(), logger.Nop())
	require.NoError(t, err)
	return ks
}

func TestSoftwareKeyStore_WrapUnwrapRoundTrip(t *testing.T) {
	ks := newTestStore(t, AlwaysPresent{})
	ctx := context.Background()
	plain := bytes.Repeat([]byte{0x5A}, crypto.KeySize)

	wrapped, iv, err := ks.Wrap(ctx, plain)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(wrapped, plain), "wrapped form must not contain the raw key")

	got, err := ks.Unwrap(ctx, wrapped, iv)
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	info, err := os.Stat(filepath.Join(ks.Dir(), MasterKeyFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSoftwareKeyStore_MasterKeyIsStable(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	ks1, err := NewSoftwareKeyStore(dir, AlwaysPresent{}, crypto.NewEngine(), logger.Nop())
	require.NoError(t, err)
	wrapped, iv, err := ks1.Wrap(ctx, []byte("session-key"))
	require.NoError(t, err)

	// новый экземпляр над тем же каталогом должен видеть тот же мастер-ключ
	ks2, err := NewSoftwareKeyStore(dir, AlwaysPresent{}, crypto.NewEngine(), logger.Nop())
	require.NoError(t, err)
	got, err := ks2.Unwrap(ctx, wrapped, iv)
	require.NoError(t, err)
	assert.Equal(t, []byte("session-key"), got)
}

func TestSoftwareKeyStore_UnwrapDeniedByGate(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	open, err := NewSoftwareKeyStore(dir, AlwaysPresent{}, crypto.NewEngine(), logger.Nop())
	require.NoError(t, err)
	wrapped, iv, err := open.Wrap(ctx, []byte("k"))
	require.NoError(t, err)

	gates := map[string]PresenceGate{
		"deny":      DenyPresence{},
		"func gate": FuncGate(func(context.Context) error { return errors.New("biometric cancelled") }),
	}
	for name, gate := range gates {
		t.Run(name, func(t *testing.T) {
			closed, err := NewSoftwareKeyStore(dir, gate, crypto.NewEngine(), logger.Nop())
			require.NoError(t, err)

			_, err = closed.Unwrap(ctx, wrapped, iv)
			assert.ErrorIs(t, err, ErrAccessDenied)
		})
	}
}

func TestSoftwareKeyStore_UnwrapCorrupted(t *testing.T) {
	ks := newTestStore(t, AlwaysPresent{})
	ctx := context.Background()

	wrapped, iv, err := ks.Wrap(ctx, []byte("k"))
	require.NoError(t, err)
	wrapped[0] ^= 0xFF

	_, err = ks.Unwrap(ctx, wrapped, iv)
	assert.ErrorIs(t, err, ErrUnwrapFailed)
}

func TestSoftwareKeyStore_DestroyMasterKey(t *testing.T) {
	ks := newTestStore(t, AlwaysPresent{})
	ctx := context.Background()

	wrapped, iv, err := ks.Wrap(ctx, []byte("k"))
	require.NoError(t, err)

	require.NoError(t, ks.DestroyMasterKey(ctx))
	_, err = os.Stat(filepath.Join(ks.Dir(), MasterKeyFileName))
	assert.True(t, os.IsNotExist(err))

	_, err = ks.Unwrap(ctx, wrapped, iv)
	assert.ErrorIs(t, err, ErrMasterKeyNotFound)

	// повторное уничтожение: ожидаемое отсутствие ключа
	assert.ErrorIs(t, ks.DestroyMasterKey(ctx), ErrMasterKeyNotFound)
}

// countingGate records the maximum number of concurrent Confirm calls.
type countingGate struct {
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (g *countingGate) Confirm(context.Context) error {
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		m := g.maxSeen.Load()
		if n <= m || g.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	return nil
}

func TestSoftwareKeyStore_UnwrapIsSerialised(t *testing.T) {
	gate := &countingGate{}
	ks := newTestStore(t, gate)
	ctx := context.Background()

	wrapped, iv, err := ks.Wrap(ctx, []byte("k"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ks.Unwrap(ctx, wrapped, iv)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), gate.maxSeen.Load())
}

func TestNewSoftwareKeyStore_RequiresDir(t *testing.T) {
	_, err := NewSoftwareKeyStore("", AlwaysPresent{}, crypto.NewEngine(), logger.Nop())
	assert.Error(t, err)
}
