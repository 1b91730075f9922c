// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package erasure

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

var errInjected = errors.New("injected fault")

// faultyFS is the real filesystem with per-path open and remove failures.
type faultyFS struct {
	OSFS

	mu         sync.Mutex
	failOpen   map[string]bool
	failRemove map[string]bool
	failWrite  map[string]bool
	writes     map[string][][]byte
	syncs      map[string]int
}

func newFaultyFS() *faultyFS {
	return &faultyFS{
		failOpen:   map[string]bool{},
		failRemove: map[string]bool{},
		failWrite:  map[string]bool{},
		writes:     map[string][][]byte{},
		syncs:      map[string]int{},
	}
}

func (f *faultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	f.mu.Lock()
	fail := f.failOpen[name]
	f.mu.Unlock()
	if fail {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	file, err := f.OSFS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &recordingFile{File: file, name: name, fs: f}, nil
}

func (f *faultyFS) Remove(name string) error {
	f.mu.Lock()
	fail := f.failRemove[name]
	f.mu.Unlock()
	if fail {
		return &fs.PathError{Op: "remove", Path: name, Err: errInjected}
	}
	return f.OSFS.Remove(name)
}

type recordingFile struct {
	File
	name string
	fs   *faultyFS
}

func (r *recordingFile) WriteAt(p []byte, off int64) (int, error) {
	r.fs.mu.Lock()
	fail := r.fs.failWrite[r.name]
	if !fail {
		r.fs.writes[r.name] = append(r.fs.writes[r.name], bytes.Clone(p))
	}
	r.fs.mu.Unlock()
	if fail {
		return 0, errInjected
	}
	return r.File.WriteAt(p, off)
}

func (r *recordingFile) Sync() error {
	r.fs.mu.Lock()
	r.fs.syncs[r.name]++
	r.fs.mu.Unlock()
	return r.File.Sync()
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("p"), size), 0o600))
}

func TestEraser_WipeFileOverwritesThreeTimes(t *testing.T) {
	fsys := newFaultyFS()
	e := NewEraser(fsys, logger.Nop())
	path := filepath.Join(t.TempDir(), "voice.ogg")
	writeFile(t, path, chunkSize+100)

	entry := e.WipeFile(context.Background(), path)
	assert.Equal(t, models.WipeFull, entry.Outcome)
	assert.NoError(t, entry.Err)
	assert.NoFileExists(t, path)

	writes := fsys.writes[path]
	// two chunks per pass
	require.Len(t, writes, 6)
	assert.Len(t, writes[0], chunkSize)
	assert.Len(t, writes[1], 100)
	assert.NotEqual(t, bytes.Repeat([]byte("p"), chunkSize), writes[0])
	assert.Equal(t, make([]byte, chunkSize), writes[2])
	assert.Equal(t, bytes.Repeat([]byte{0xFF}, 100), writes[5])
	assert.Equal(t, 3, fsys.syncs[path])
}

func TestEraser_WipeFileMissing(t *testing.T) {
	e := NewEraser(nil, logger.Nop())
	entry := e.WipeFile(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Equal(t, models.WipeFull, entry.Outcome)
}

func TestEraser_WipeFileUnlinkFallback(t *testing.T) {
	fsys := newFaultyFS()
	e := NewEraser(fsys, logger.Nop())
	path := filepath.Join(t.TempDir(), "locked.jpg")
	writeFile(t, path, 10)
	fsys.failOpen[path] = true

	entry := e.WipeFile(context.Background(), path)
	assert.Equal(t, models.WipeDegraded, entry.Outcome)
	assert.True(t, entry.Succeeded())
	assert.ErrorIs(t, entry.Err, fs.ErrPermission)
	assert.NoFileExists(t, path)
}

func TestEraser_WipeFileWriteFailure(t *testing.T) {
	fsys := newFaultyFS()
	e := NewEraser(fsys, logger.Nop())
	path := filepath.Join(t.TempDir(), "broken.bin")
	writeFile(t, path, 10)
	fsys.failWrite[path] = true

	entry := e.WipeFile(context.Background(), path)
	assert.Equal(t, models.WipeDegraded, entry.Outcome)
	assert.ErrorIs(t, entry.Err, errInjected)
	assert.NoFileExists(t, path)
}

func TestEraser_WipeFileFailed(t *testing.T) {
	fsys := newFaultyFS()
	e := NewEraser(fsys, logger.Nop())
	path := filepath.Join(t.TempDir(), "stuck.bin")
	writeFile(t, path, 10)
	fsys.failOpen[path] = true
	fsys.failRemove[path] = true

	entry := e.WipeFile(context.Background(), path)
	assert.Equal(t, models.WipeFailed, entry.Outcome)
	assert.ErrorIs(t, entry.Err, fs.ErrPermission)
	assert.ErrorIs(t, entry.Err, errInjected)
	assert.FileExists(t, path)
}

func TestEraser_WipeFileDoesNotFollowSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "keep.txt")
	writeFile(t, target, 5)
	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	e := NewEraser(nil, logger.Nop())
	entry := e.WipeFile(context.Background(), link)
	assert.Equal(t, models.WipeFull, entry.Outcome)

	_, err := os.Lstat(link)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "ppppp", string(data))
}

func TestEraser_WipeDirectoryContinuesPastFailure(t *testing.T) {
	fsys := newFaultyFS()
	e := NewEraser(fsys, logger.Nop())
	root := filepath.Join(t.TempDir(), "media")
	a := filepath.Join(root, "a.jpg")
	b := filepath.Join(root, "b.jpg")
	c := filepath.Join(root, "c.jpg")
	for _, p := range []string{a, b, c} {
		writeFile(t, p, 64)
	}
	fsys.failOpen[b] = true
	fsys.failRemove[b] = true

	result := e.WipeDirectory(context.Background(), root)
	succeeded, failed := result.Counts()
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, failed)
	assert.False(t, result.Success())

	require.Len(t, result.Failures(), 1)
	assert.Equal(t, b, result.Failures()[0].Target)
	assert.NoFileExists(t, a)
	assert.NoFileExists(t, c)
	assert.FileExists(t, b)
	assert.DirExists(t, root)
}

func skipIfRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
}

// A read-only file in a writable directory cannot be overwritten but is
// still unlinked: it is gone, so the wipe succeeds without being full.
func TestEraser_WipeFileReadOnlyIsDegraded(t *testing.T) {
	skipIfRoot(t)

	path := filepath.Join(t.TempDir(), "ro.jpg")
	writeFile(t, path, 32)
	require.NoError(t, os.Chmod(path, 0o400))

	e := NewEraser(nil, logger.Nop())
	entry := e.WipeFile(context.Background(), path)
	assert.Equal(t, models.WipeDegraded, entry.Outcome)
	assert.True(t, entry.Succeeded())
	assert.NoFileExists(t, path)
}

// A file that can neither be overwritten nor unlinked is the one failure;
// its siblings are still wiped.
func TestEraser_WipeDirectoryWithUnwritableFile(t *testing.T) {
	skipIfRoot(t)

	root := filepath.Join(t.TempDir(), "media")
	a := filepath.Join(root, "a.jpg")
	c := filepath.Join(root, "c.jpg")
	locked := filepath.Join(root, "locked")
	b := filepath.Join(locked, "b.jpg")
	for _, p := range []string{a, b, c} {
		writeFile(t, p, 64)
	}
	require.NoError(t, os.Chmod(b, 0o400))
	require.NoError(t, os.Chmod(locked, 0o500))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o700) })

	e := NewEraser(nil, logger.Nop())
	result := e.WipeDirectory(context.Background(), root)

	succeeded, failed := result.Counts()
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, failed)
	require.Len(t, result.Failures(), 1)
	assert.Equal(t, b, result.Failures()[0].Target)
	assert.NoFileExists(t, a)
	assert.NoFileExists(t, c)
	assert.FileExists(t, b)
}

func TestEraser_WipeDirectoryNested(t *testing.T) {
	e := NewEraser(nil, logger.Nop())
	root := filepath.Join(t.TempDir(), "cache")
	writeFile(t, filepath.Join(root, "x", "y", "deep.bin"), 10)
	writeFile(t, filepath.Join(root, "x", "mid.bin"), 10)
	writeFile(t, filepath.Join(root, "top.bin"), 0)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o700))

	result := e.WipeDirectory(context.Background(), root)
	assert.True(t, result.Full())
	assert.Len(t, result.Entries, 3)
	assert.NoDirExists(t, root)
}

func TestEraser_WipeDirectoryReportsStuckDirectory(t *testing.T) {
	fsys := newFaultyFS()
	e := NewEraser(fsys, logger.Nop())
	root := filepath.Join(t.TempDir(), "prefs")
	sub := filepath.Join(root, "sub")
	writeFile(t, filepath.Join(sub, "a.xml"), 10)
	fsys.failRemove[sub] = true

	result := e.WipeDirectory(context.Background(), root)
	require.Len(t, result.Failures(), 1)
	assert.Equal(t, sub, result.Failures()[0].Target)
}

func TestEraser_WipeDirectoryMissing(t *testing.T) {
	e := NewEraser(nil, logger.Nop())
	result := e.WipeDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Empty(t, result.Entries)
	assert.True(t, result.Success())
}
