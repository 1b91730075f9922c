// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/config"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/coder/websocket"
)

const (
	signalNewMessage = "new_message"

	defaultMinBackoff = time.Second
	defaultMaxBackoff = time.Minute

	// signal frames are tiny; anything larger is not ours
	signalReadLimit = 4096
)

type signalFrame struct {
	Type   string `json:"type"`
	ChatID string `json:"chat_id"`
}

type webSocketSignal struct {
	url    string
	header http.Header

	minBackoff time.Duration
	maxBackoff time.Duration

	logger *logger.Logger
}

// NewWebSocketSignal constructs a [RealtimeSignal] that listens on
// cfg.RealtimeAddress. http and https addresses are converted to ws and wss.
func NewWebSocketSignal(cfg config.Adapter, log *logger.Logger) (RealtimeSignal, error) {
	wsURL, err := normalizeWebSocketURL(cfg.RealtimeAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	header := http.Header{}
	if token := strings.TrimSpace(cfg.Token); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	return &webSocketSignal{
		url:        wsURL,
		header:     header,
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
		logger:     log.WithComponent("realtime"),
	}, nil
}

func normalizeWebSocketURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("address must include host")
	}
	return u.String(), nil
}

// Listen implements [RealtimeSignal]. Dropped connections are re-dialled
// with capped exponential backoff; the backoff resets after every
// successful connection. Returns nil once ctx is done.
func (s *webSocketSignal) Listen(ctx context.Context, onNewMessage func(chatID string)) error {
	log := s.logger.With().Str("func", "webSocketSignal.Listen").Logger()

	backoff := s.minBackoff
	for {
		connected, err := s.listenOnce(ctx, onNewMessage)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			backoff = s.minBackoff
		}

		log.Warn().Err(err).Dur("retry_in", backoff).Msg("realtime connection lost")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		backoff *= 2
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
	}
}

func (s *webSocketSignal) listenOnce(ctx context.Context, onNewMessage func(chatID string)) (bool, error) {
	conn, resp, err := websocket.Dial(ctx, s.url, &websocket.DialOptions{HTTPHeader: s.header})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return false, fmt.Errorf("%w: dial realtime signal: %w", ErrUnauthorized, err)
		}
		return false, fmt.Errorf("dial realtime signal: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(signalReadLimit)

	s.logger.Debug().Str("url", s.url).Msg("realtime signal connected")

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				_ = conn.Close(websocket.StatusNormalClosure, "")
			}
			return true, err
		}
		if msgType != websocket.MessageText {
			s.logger.Debug().Int("type", int(msgType)).Msg("ignoring non-text frame")
			continue
		}

		var frame signalFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.logger.Warn().Err(err).Msg("malformed realtime frame")
			continue
		}
		if frame.Type != signalNewMessage || frame.ChatID == "" {
			continue
		}
		onNewMessage(frame.ChatID)
	}
}
