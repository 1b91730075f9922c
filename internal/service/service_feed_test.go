// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

func receive(t *testing.T, ch <-chan []models.MessageView) []models.MessageView {
	t.Helper()
	select {
	case views, ok := <-ch:
		require.True(t, ok, "feed closed")
		return views
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
		return nil
	}
}

func TestFeed_ReplaysCurrentStateOnSubscribe(t *testing.T) {
	env := newTestEnv(t)
	env.reconcileOnce(t, "chat-1", env.incoming(t, "srv-1", "chat-1", 1000, models.TypeText, "hi", "SENT"))

	ch, cancel, err := env.feed.Subscribe(env.ctx, "chat-1")
	require.NoError(t, err)
	defer cancel()

	views := receive(t, ch)
	require.Len(t, views, 1)
	assert.Equal(t, "hi", views[0].Text)
	assert.False(t, views[0].Outgoing)
	assert.Equal(t, peerID, views[0].SenderID)
}

func TestFeed_PushesChangesNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.remote.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(ack("srv-2"))

	ch, cancel, err := env.feed.Subscribe(env.ctx, "chat-1")
	require.NoError(t, err)
	defer cancel()
	assert.Empty(t, receive(t, ch))

	env.reconcileOnce(t, "chat-1", env.incoming(t, "srv-1", "chat-1", 1000, models.TypeText, "older", "SENT"))
	assert.Len(t, receive(t, ch), 1)

	env.clock.Set(time.UnixMilli(5000))
	_, err = env.engine.Send(env.ctx, "chat-1", models.TypeText, []byte("newer"))
	require.NoError(t, err)

	// latest snapshot wins; intermediate pending states may be skipped
	views := receive(t, ch)
	require.Len(t, views, 2)
	assert.Equal(t, "srv-2", views[0].ID)
	assert.True(t, views[0].Outgoing)
	assert.Equal(t, models.StatusSent, views[0].Status)
	assert.Equal(t, "srv-1", views[1].ID)
}

func TestFeed_HidesPurgedRows(t *testing.T) {
	env := newTestEnv(t, withEraser(&stubEraser{outcome: models.WipeFailed}))

	_, err := env.storages.Messages.InsertIfAbsent(env.ctx, models.Message{
		ID: "srv-1", ChatID: "chat-1", SenderID: peerID, Type: models.TypeImage,
		Timestamp: 1, Status: models.StatusSent, LocalPath: "/nowhere/srv-1.jpg", CreatedAt: testNow,
	})
	require.NoError(t, err)

	env.purger.PurgeMessage(env.ctx, "srv-1")

	views, err := env.feed.Snapshot(env.ctx, "chat-1")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestFeed_CancelClosesChannel(t *testing.T) {
	env := newTestEnv(t)

	ch, cancel, err := env.feed.Subscribe(env.ctx, "chat-1")
	require.NoError(t, err)
	receive(t, ch)
	assert.Equal(t, 1, env.feed.Subscribers("chat-1"))

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Zero(t, env.feed.Subscribers("chat-1"))

	// publishing without subscribers is a no-op
	env.feed.Publish(env.ctx, "chat-1")
}

func TestFeed_ContextEndsSubscription(t *testing.T) {
	env := newTestEnv(t)
	ctx, stop := context.WithCancel(env.ctx)

	ch, _, err := env.feed.Subscribe(ctx, "chat-1")
	require.NoError(t, err)
	receive(t, ch)

	stop()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed")
	}
}
