// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/config"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/utils"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

var mediaExtensions = map[models.MessageType]string{
	models.TypeVoice:     ".ogg",
	models.TypeImage:     ".jpg",
	models.TypeVideo:     ".mp4",
	models.TypeVideoNote: ".mp4",
	models.TypeFile:      ".bin",
}

// mediaStore lays out decrypted media as <root>/<chat>/<message id><ext>.
// Voice clips and video notes have their own roots.
type mediaStore struct {
	files config.Files
	ids   *utils.UUIDGenerator
}

func newMediaStore(files config.Files) mediaStore {
	return mediaStore{files: files, ids: utils.NewUUIDGenerator()}
}

func (m mediaStore) root(t models.MessageType) string {
	switch t {
	case models.TypeVoice:
		return m.files.VoiceDir
	case models.TypeVideoNote:
		return m.files.VideoNoteDir
	}
	return m.files.MediaDir
}

func (m mediaStore) path(msg models.Message) string {
	return filepath.Join(m.root(msg.Type), safeSegment(msg.ChatID), safeSegment(msg.ID)+mediaExtensions[msg.Type])
}

// chatDirs returns every directory that may hold media of chatID.
func (m mediaStore) chatDirs(chatID string) []string {
	seen := map[string]bool{}
	var dirs []string
	for _, root := range []string{m.files.MediaDir, m.files.VoiceDir, m.files.VideoNoteDir} {
		if root == "" || seen[root] {
			continue
		}
		seen[root] = true
		dirs = append(dirs, filepath.Join(root, safeSegment(chatID)))
	}
	return dirs
}

// writeTemp stores data at a unique temporary path next to final and returns it.
func (m mediaStore) writeTemp(final string, data []byte) (string, error) {
	if err := os.MkdirAll(filepath.Dir(final), 0o700); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	tmp := final + "." + m.ids.Generate() + ".part"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write media: %w", err)
	}
	return tmp, nil
}

func (m mediaStore) write(final string, data []byte) error {
	tmp, err := m.writeTemp(final, data)
	if err != nil {
		return err
	}
	return m.move(tmp, final)
}

func (m mediaStore) move(from, to string) error {
	if err := os.MkdirAll(filepath.Dir(to), 0o700); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("move media: %w", err)
	}
	return nil
}

func (m mediaStore) read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMediaUnavailable, err)
	}
	return data, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// safeSegment turns a server-supplied ID into a single path element.
func safeSegment(id string) string {
	s := url.PathEscape(id)
	if s == "" || s == "." || s == ".." {
		return "_" + s
	}
	return s
}
