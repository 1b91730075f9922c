// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package erasure destroys plaintext left on disk. Files are overwritten
// in place before they are unlinked; every batch operation is best effort
// and reports per-target outcomes in a [models.WipeResult] instead of
// stopping at the first failure.
package erasure

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

const chunkSize = 32 * 1024

type pass struct {
	name string
	fill func(buf []byte) error
}

// overwrite passes, in order: random, zeros, ones
var passes = []pass{
	{name: "random", fill: func(buf []byte) error {
		_, err := rand.Read(buf)
		return err
	}},
	{name: "zero", fill: func(buf []byte) error {
		clear(buf)
		return nil
	}},
	{name: "one", fill: func(buf []byte) error {
		for i := range buf {
			buf[i] = 0xFF
		}
		return nil
	}},
}

// Eraser overwrites and removes files.
type Eraser struct {
	fs     FS
	logger *logger.Logger
}

// NewEraser returns an eraser over fsys; nil means the real filesystem.
func NewEraser(fsys FS, log *logger.Logger) *Eraser {
	if fsys == nil {
		fsys = OSFS{}
	}
	return &Eraser{fs: fsys, logger: log.WithComponent("erasure")}
}

// WipeFile overwrites path three times, syncing after each pass, then
// unlinks it. When the file cannot be opened or overwritten it is still
// unlinked and the entry is DEGRADED. A path that does not exist counts as
// wiped.
func (e *Eraser) WipeFile(ctx context.Context, path string) models.WipeEntry {
	log := e.logger.With().Str("func", "Eraser.WipeFile").Str("path", path).Logger()
	entry := models.WipeEntry{Target: path}

	info, err := e.fs.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		entry.Outcome = models.WipeFull
		return entry
	}
	if err != nil {
		return e.unlinkOnly(path, err)
	}
	if !info.Mode().IsRegular() {
		// symlinks and special files are unlinked, never followed
		return e.remove(path, entry)
	}

	f, err := e.fs.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		log.Warn().Err(err).Msg("cannot open file for overwrite, falling back to unlink")
		return e.unlinkOnly(path, err)
	}

	overwriteErr := overwrite(f, info.Size())
	if closeErr := f.Close(); overwriteErr == nil {
		overwriteErr = closeErr
	}
	if overwriteErr != nil {
		log.Warn().Err(overwriteErr).Msg("overwrite incomplete, falling back to unlink")
		return e.unlinkOnly(path, overwriteErr)
	}

	return e.remove(path, entry)
}

func (e *Eraser) remove(path string, entry models.WipeEntry) models.WipeEntry {
	if err := e.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		e.logger.Err(err).Str("func", "Eraser.WipeFile").Str("path", path).Msg("failed to unlink file")
		entry.Outcome = models.WipeFailed
		entry.Err = err
		return entry
	}
	entry.Outcome = models.WipeFull
	return entry
}

func overwrite(f File, size int64) error {
	buf := make([]byte, chunkSize)
	for _, p := range passes {
		if err := p.fill(buf); err != nil {
			return fmt.Errorf("%s pass: %w", p.name, err)
		}
		for off := int64(0); off < size; off += chunkSize {
			n := min(int64(chunkSize), size-off)
			if _, err := f.WriteAt(buf[:n], off); err != nil {
				return fmt.Errorf("%s pass at offset %d: %w", p.name, off, err)
			}
		}
		if err := f.Sync(); err != nil {
			return fmt.Errorf("%s pass sync: %w", p.name, err)
		}
	}
	return nil
}

func (e *Eraser) unlinkOnly(path string, cause error) models.WipeEntry {
	entry := models.WipeEntry{Target: path}
	err := e.fs.Remove(path)
	switch {
	case err == nil, errors.Is(err, fs.ErrNotExist):
		entry.Outcome = models.WipeDegraded
		entry.Err = cause
	default:
		entry.Outcome = models.WipeFailed
		entry.Err = errors.Join(cause, err)
	}
	return entry
}

// WipeDirectory wipes every regular file under root depth-first, then
// removes the emptied directories, root included. The result holds one
// entry per file. A directory is reported only when it could not be removed
// although all of its contents were; one that still holds a failed file is
// already accounted for by that file.
func (e *Eraser) WipeDirectory(ctx context.Context, root string) models.WipeResult {
	var result models.WipeResult
	if _, err := e.fs.Lstat(root); errors.Is(err, fs.ErrNotExist) {
		return result
	}
	e.wipeDir(ctx, root, &result)
	return result
}

// wipeDir reports whether everything under dir, dir included, is gone.
func (e *Eraser) wipeDir(ctx context.Context, dir string, result *models.WipeResult) bool {
	log := e.logger.With().Str("func", "Eraser.WipeDirectory").Str("dir", dir).Logger()

	entries, err := e.fs.ReadDir(dir)
	if err != nil {
		log.Err(err).Msg("failed to list directory")
		result.Add(models.WipeEntry{Target: dir, Outcome: models.WipeFailed, Err: err})
		return false
	}

	clean := true
	for _, de := range entries {
		path := filepath.Join(dir, de.Name())
		if de.IsDir() {
			if !e.wipeDir(ctx, path, result) {
				clean = false
			}
			continue
		}
		entry := e.WipeFile(ctx, path)
		result.Add(entry)
		if !entry.Succeeded() {
			clean = false
		}
	}

	if err := e.fs.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		if clean {
			log.Err(err).Msg("failed to remove emptied directory")
			result.Add(models.WipeEntry{Target: dir, Outcome: models.WipeFailed, Err: err})
		}
		return false
	}
	return clean
}
