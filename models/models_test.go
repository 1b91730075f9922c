// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Provisional(t *testing.T) {
	assert.True(t, Message{ID: "local_1714560000000_ab12"}.IsProvisional())
	assert.False(t, Message{ID: "srv-1"}.IsProvisional())
	assert.False(t, IsProvisionalID("locally"))
}

func TestRemoteMessage_ToMessage(t *testing.T) {
	r := RemoteMessage{
		ID: "srv-1", ChatID: "chat-1", SenderID: "user-peer",
		Ciphertext: []byte{1}, Nonce: []byte{2}, Timestamp: 42,
		Type: TypeVoice, Status: "DELIVERED", RemoteURL: "https://cdn/x",
	}

	m := r.ToMessage()
	assert.Equal(t, "srv-1", m.ID)
	assert.Equal(t, StatusDelivered, m.Status)
	assert.Equal(t, Correlation{ChatID: "chat-1", SenderID: "user-peer", Timestamp: 42}, m.Correlation())
	assert.Equal(t, "https://cdn/x", m.RemoteURL)
	assert.Empty(t, m.Content)
}

func TestNewMessageView(t *testing.T) {
	v := NewMessageView(Message{ID: "srv-1", SenderID: "me", Content: "hi"}, "me")
	assert.True(t, v.Outgoing)
	assert.False(t, v.Unreadable)
	assert.Equal(t, "hi", v.Text)

	v = NewMessageView(Message{ID: "srv-2", SenderID: "peer", ContentError: "authentication failed"}, "me")
	assert.False(t, v.Outgoing)
	assert.True(t, v.Unreadable)
}

func TestMessageType(t *testing.T) {
	assert.True(t, TypeVideoNote.IsMedia())
	assert.False(t, TypeText.IsMedia())
	assert.False(t, TypeLocation.IsMedia())
	assert.NoError(t, TypeLocation.Validate())
	assert.ErrorIs(t, MessageType("STICKER").Validate(), ErrUnknownMessageType)
}

func TestDeletionPolicy_Validate(t *testing.T) {
	assert.NoError(t, After(0).Validate())
	assert.NoError(t, AfterRead.Validate())
	assert.NoError(t, Never.Validate())
	assert.ErrorIs(t, After(-time.Second).Validate(), ErrUnknownPolicy)
	assert.ErrorIs(t, DeletionPolicy{Kind: "SOMETIME"}.Validate(), ErrUnknownPolicy)
}

func TestScheduledDeletion_IsDue(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Second), now.Add(time.Second)

	assert.False(t, ScheduledDeletion{}.IsDue(now))
	assert.True(t, ScheduledDeletion{DueAt: &past}.IsDue(now))
	assert.True(t, ScheduledDeletion{DueAt: &now}.IsDue(now))
	assert.False(t, ScheduledDeletion{DueAt: &future}.IsDue(now))
	assert.Equal(t, "chat:c-1", ChatTarget("c-1").String())
}

func TestWipeResult(t *testing.T) {
	var r WipeResult
	assert.True(t, r.Success())
	assert.True(t, r.Full())

	r.Add(WipeEntry{Target: "a", Outcome: WipeFull})
	r.Merge(WipeResult{Entries: []WipeEntry{{Target: "b", Outcome: WipeDegraded}}})
	assert.True(t, r.Success())
	assert.False(t, r.Full())

	boom := errors.New("busy")
	r.Add(WipeEntry{Target: "c", Outcome: WipeFailed, Err: boom})
	assert.False(t, r.Success())

	succeeded, failed := r.Counts()
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, failed)

	failures := r.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "c", failures[0].Target)
	assert.ErrorIs(t, failures[0].Err, boom)
}

func TestAppBuildInfo(t *testing.T) {
	info := NewAppBuildInfo("v1.2.0", "2026-05-01", "abc123")
	assert.Equal(t, "v1.2.0", info.BuildVersion())
	assert.Equal(t, "2026-05-01", info.BuildDate())
	assert.Equal(t, "abc123", info.BuildCommit())
}
