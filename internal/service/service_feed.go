// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/store"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

// Feed publishes per-chat snapshots of decrypted message views. Every
// subscriber channel holds at most one snapshot; a newer snapshot replaces
// one that was not read yet.
type Feed struct {
	messages store.MessageRepository
	selfID   string

	mu   sync.Mutex
	subs map[string]map[uint64]chan []models.MessageView
	next uint64

	logger *logger.Logger
}

func NewFeed(messages store.MessageRepository, selfID string, log *logger.Logger) *Feed {
	return &Feed{
		messages: messages,
		selfID:   selfID,
		subs:     make(map[string]map[uint64]chan []models.MessageView),
		logger:   log.WithComponent("feed"),
	}
}

// Snapshot returns the chat's visible messages, newest first. Purged rows
// are hidden.
func (f *Feed) Snapshot(ctx context.Context, chatID string) ([]models.MessageView, error) {
	rows, err := f.messages.ListByChat(ctx, chatID, store.ListOptions{})
	if err != nil {
		return nil, err
	}
	views := make([]models.MessageView, 0, len(rows))
	for _, m := range rows {
		if m.Status == models.StatusPurged {
			continue
		}
		views = append(views, models.NewMessageView(m, f.selfID))
	}
	return views, nil
}

// Subscribe registers a subscriber for chatID and immediately delivers the
// current snapshot. The returned cancel func closes the channel; it is also
// called when ctx is done.
func (f *Feed) Subscribe(ctx context.Context, chatID string) (<-chan []models.MessageView, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot, err := f.Snapshot(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan []models.MessageView, 1)
	ch <- snapshot

	id := f.next
	f.next++
	if f.subs[chatID] == nil {
		f.subs[chatID] = make(map[uint64]chan []models.MessageView)
	}
	f.subs[chatID][id] = ch

	var once sync.Once
	var stop func() bool
	cancel := func() {
		once.Do(func() {
			// stop is assigned under f.mu
			f.mu.Lock()
			defer f.mu.Unlock()
			if stop != nil {
				stop()
			}
			delete(f.subs[chatID], id)
			if len(f.subs[chatID]) == 0 {
				delete(f.subs, chatID)
			}
			close(ch)
		})
	}
	stop = context.AfterFunc(ctx, cancel)

	return ch, cancel, nil
}

// Publish pushes a fresh snapshot of chatID to its subscribers.
func (f *Feed) Publish(ctx context.Context, chatID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	subs := f.subs[chatID]
	if len(subs) == 0 {
		return
	}

	snapshot, err := f.Snapshot(context.WithoutCancel(ctx), chatID)
	if err != nil {
		f.logger.Err(err).
			Str("func", "Feed.Publish").
			Str("chat_id", chatID).
			Msg("failed to load chat snapshot")
		return
	}

	for _, ch := range subs {
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
}

// Subscribers returns the number of open subscriptions for chatID.
func (f *Feed) Subscribers(chatID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[chatID])
}
