// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesRoleAndComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "messenger", zerolog.DebugLevel)

	l.WithComponent("sync").Info().Msg("hello")

	out := buf.String()
	assert.Contains(t, out, `"role":"messenger"`)
	assert.Contains(t, out, `"component":"sync"`)
	assert.Contains(t, out, `"message":"hello"`)
}

func TestFromContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "ctx", zerolog.DebugLevel)

	ctx := l.WithContext(context.Background())
	FromContext(ctx).Info().Msg("from ctx")

	assert.Contains(t, buf.String(), `"role":"ctx"`)
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "messenger.log")

	l, closer := NewFileLogger("file", path, zerolog.InfoLevel)
	l.Info().Msg("persisted")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "persisted")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestNop_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().GetChildLogger().Error().Msg("discarded")
	})
}
