// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package erasure

import (
	"io/fs"
	"os"
)

// FS is the slice of the filesystem the eraser touches. Tests substitute it
// to inject faults.
type FS interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	Remove(name string) error
}

// File is an open file being overwritten.
type File interface {
	WriteAt(p []byte, off int64) (int, error)
	Sync() error
	Close() error
}

// OSFS is [FS] backed by the os package.
type OSFS struct{}

func (OSFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm)
}

func (OSFS) Lstat(name string) (fs.FileInfo, error) { return os.Lstat(name) }

func (OSFS) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }

func (OSFS) Remove(name string) error { return os.Remove(name) }
