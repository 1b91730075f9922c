// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package keystore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/crypto"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
)

// MasterKeyFileName is the name of the master key file inside the key store
// directory.
const MasterKeyFileName = "master.key"

// SoftwareKeyStore is a file-backed [HardwareKeyStore].
//
// The master key is read from disk for every operation and zeroed right
// after; it is never cached in memory between calls.
type SoftwareKeyStore struct {
	dir    string
	gate   PresenceGate
	engine crypto.Engine
	logger *logger.Logger

	// mu serialises every access to the master key, mirroring the OS policy
	// of one outstanding user-presence prompt at a time.
	mu sync.Mutex
}

// NewSoftwareKeyStore creates the key store directory (0700) if needed.
func NewSoftwareKeyStore(dir string, gate PresenceGate, engine crypto.Engine, log *logger.Logger) (*SoftwareKeyStore, error) {
	if dir == "" {
		return nil, errors.New("key store directory is required")
	}
	if gate == nil {
		gate = DenyPresence{}
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create key store directory: %w", err)
	}

	return &SoftwareKeyStore{
		dir:    dir,
		gate:   gate,
		engine: engine,
		logger: log,
	}, nil
}

// Dir returns the directory holding the master key.
func (s *SoftwareKeyStore) Dir() string {
	return s.dir
}

// Wrap implements [HardwareKeyStore].
func (s *SoftwareKeyStore) Wrap(ctx context.Context, plain []byte) ([]byte, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	master, err := s.loadOrCreateMasterKey()
	if err != nil {
		return nil, nil, err
	}
	defer crypto.SecureZero(master)

	wrapped, iv, err := s.engine.Encrypt(plain, master)
	if err != nil {
		return nil, nil, fmt.Errorf("wrap key: %w", err)
	}
	return wrapped, iv, nil
}

// Unwrap implements [HardwareKeyStore].
func (s *SoftwareKeyStore) Unwrap(ctx context.Context, wrapped, iv []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gate.Confirm(ctx); err != nil {
		s.logger.Warn().
			Str("func", "SoftwareKeyStore.Unwrap").
			Msg("user presence not confirmed")
		if errors.Is(err, ErrAccessDenied) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrAccessDenied, err)
	}

	master, err := s.loadMasterKey()
	if err != nil {
		return nil, err
	}
	defer crypto.SecureZero(master)

	plain, err := s.engine.Decrypt(wrapped, iv, master)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnwrapFailed, err)
	}
	return plain, nil
}

// DestroyMasterKey implements [HardwareKeyStore]. The key file is
// overwritten with zeros and synced before it is removed. A missing key is
// reported as [ErrMasterKeyNotFound].
func (s *SoftwareKeyStore) DestroyMasterKey(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.masterKeyPath()
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrMasterKeyNotFound
		}
		return fmt.Errorf("open master key for destruction: %w", err)
	}
	_, writeErr := f.Write(make([]byte, crypto.KeySize))
	syncErr := f.Sync()
	closeErr := f.Close()

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove master key: %w", err)
	}
	if err := errors.Join(writeErr, syncErr, closeErr); err != nil {
		s.logger.Warn().Err(err).
			Str("func", "SoftwareKeyStore.DestroyMasterKey").
			Msg("master key removed without full overwrite")
	}
	return nil
}

func (s *SoftwareKeyStore) masterKeyPath() string {
	return filepath.Join(s.dir, MasterKeyFileName)
}

func (s *SoftwareKeyStore) loadMasterKey() ([]byte, error) {
	data, err := os.ReadFile(s.masterKeyPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMasterKeyNotFound
		}
		return nil, fmt.Errorf("read master key: %w", err)
	}
	if len(data) != crypto.KeySize {
		crypto.SecureZero(data)
		return nil, fmt.Errorf("%w: invalid master key size %d", ErrUnwrapFailed, len(data))
	}
	return data, nil
}

func (s *SoftwareKeyStore) loadOrCreateMasterKey() ([]byte, error) {
	master, err := s.loadMasterKey()
	if err == nil {
		return master, nil
	}
	if !errors.Is(err, ErrMasterKeyNotFound) {
		return nil, err
	}

	master, err = s.engine.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate master key: %w", err)
	}

	// Atomic write using temporary file + rename.
	tmp := s.masterKeyPath() + ".tmp"
	if err := os.WriteFile(tmp, master, 0o600); err != nil {
		crypto.SecureZero(master)
		return nil, fmt.Errorf("write master key: %w", err)
	}
	if err := os.Rename(tmp, s.masterKeyPath()); err != nil {
		_ = os.Remove(tmp)
		crypto.SecureZero(master)
		return nil, fmt.Errorf("commit master key: %w", err)
	}

	s.logger.Info().
		Str("func", "SoftwareKeyStore.loadOrCreateMasterKey").
		Msg("device master key created")
	return master, nil
}
