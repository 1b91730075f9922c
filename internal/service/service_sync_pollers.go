// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"time"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/utils"
)

// ErrEngineClosed is returned by Attach after Close.
var ErrEngineClosed = errors.New("sync engine is closed")

type poller struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Attach starts polling chatID at the configured interval. The first
// reconcile runs right away. Attaching an attached chat is a no-op.
func (e *SyncEngine) Attach(ctx context.Context, chatID string) error {
	e.pollMu.Lock()
	defer e.pollMu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if _, ok := e.pollers[chatID]; ok {
		return nil
	}

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p := &poller{cancel: cancel, done: make(chan struct{})}
	e.pollers[chatID] = p

	go e.poll(utils.WithTrigger(pollCtx, utils.TriggerPoll), chatID, p.done)

	e.logger.Debug().
		Str("func", "SyncEngine.Attach").
		Str("chat_id", chatID).
		Dur("interval", e.cfg.PollInterval).
		Msg("chat attached")
	return nil
}

func (e *SyncEngine) poll(ctx context.Context, chatID string, done chan<- struct{}) {
	defer close(done)

	t := time.NewTicker(e.cfg.PollInterval)
	defer t.Stop()

	for {
		if _, err := e.Reconcile(ctx, chatID); err != nil && ctx.Err() == nil {
			e.logger.Warn().Err(err).
				Str("func", "SyncEngine.poll").
				Str("chat_id", chatID).
				Msg("reconcile failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Detach stops the poller of chatID and waits for it to exit. Sends that
// are in flight for the chat are not affected.
func (e *SyncEngine) Detach(chatID string) {
	e.pollMu.Lock()
	p, ok := e.pollers[chatID]
	delete(e.pollers, chatID)
	e.pollMu.Unlock()

	if !ok {
		return
	}
	p.cancel()
	<-p.done

	e.logger.Debug().Str("func", "SyncEngine.Detach").Str("chat_id", chatID).Msg("chat detached")
}

// DetachAll stops every poller.
func (e *SyncEngine) DetachAll() {
	e.pollMu.Lock()
	chats := make([]string, 0, len(e.pollers))
	for chatID := range e.pollers {
		chats = append(chats, chatID)
	}
	e.pollMu.Unlock()

	for _, chatID := range chats {
		e.Detach(chatID)
	}
}

// Attached reports whether chatID has a running poller.
func (e *SyncEngine) Attached(chatID string) bool {
	e.pollMu.Lock()
	defer e.pollMu.Unlock()
	_, ok := e.pollers[chatID]
	return ok
}

// OnNewMessage handles a realtime new-message signal. It runs the same
// reconcile as the poller.
func (e *SyncEngine) OnNewMessage(ctx context.Context, chatID string) {
	if _, err := e.Reconcile(utils.WithTrigger(ctx, utils.TriggerPush), chatID); err != nil {
		e.logger.Warn().Err(err).
			Str("func", "SyncEngine.OnNewMessage").
			Str("chat_id", chatID).
			Msg("push reconcile failed")
	}
}

// Close stops every poller and waits for in-flight sends to settle.
func (e *SyncEngine) Close() {
	e.pollMu.Lock()
	e.closed = true
	e.pollMu.Unlock()

	e.DetachAll()
	e.sends.Wait()
}
