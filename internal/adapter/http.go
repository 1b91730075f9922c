// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/config"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/logger"
	"github.com/ZUA228132/mkr-messenger-sub000/internal/utils"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
	"github.com/go-resty/resty/v2"
)

const (
	chatMessagesPath = "/api/chats/{chatID}/messages"
	chatMessagePath  = "/api/chats/{chatID}/messages/{messageID}"
)

type httpRemoteStore struct {
	client *utils.HTTPClient
	selfID string

	logger *logger.Logger
}

// NewHTTPRemoteStore constructs an HTTP/REST implementation of [RemoteStore].
// The base URL comes from cfg.HTTPAddress and the bearer token from
// cfg.Token; the token's "sub" claim becomes [RemoteStore.SelfID].
//
// Returns [ErrInvalidAddress] or [ErrInvalidToken] (wrapped) when either is
// unusable.
func NewHTTPRemoteStore(cfg config.Adapter, log *logger.Logger) (RemoteStore, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	token := strings.TrimSpace(cfg.Token)
	selfID, err := utils.ParseSubjectFromJWT(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	client := utils.NewHTTPClient(baseURL, cfg.RequestTimeout).WithBearer(token)

	return &httpRemoteStore{
		client: client,
		selfID: selfID,
		logger: log.WithComponent("remote_store"),
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SelfID implements [RemoteStore].
func (h *httpRemoteStore) SelfID() string {
	return h.selfID
}

// Fetch implements [RemoteStore]. GET /api/chats/{chatID}/messages.
func (h *httpRemoteStore) Fetch(ctx context.Context, chatID string) ([]models.RemoteMessage, error) {
	resp, err := h.request(ctx).
		SetPathParam("chatID", chatID).
		Get(chatMessagesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch request: %w", ErrServerUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var messages []models.RemoteMessage
	if err = json.Unmarshal(resp.Body(), &messages); err != nil {
		return nil, fmt.Errorf("%w: decode fetch response: %w", ErrUnexpectedResponse, err)
	}

	h.logger.Debug().
		Str("func", "httpRemoteStore.Fetch").
		Str("chat_id", chatID).
		Int("count", len(messages)).
		Msg("fetched remote messages")

	return messages, nil
}

// Send implements [RemoteStore]. POST /api/chats/{chatID}/messages. The
// server answers with the stored message; an answer without an ID is
// rejected.
func (h *httpRemoteStore) Send(ctx context.Context, req SendRequest) (models.RemoteMessage, error) {
	var stored models.RemoteMessage

	resp, err := h.request(ctx).
		SetPathParam("chatID", req.ChatID).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&stored).
		Post(chatMessagesPath)
	if err != nil {
		return models.RemoteMessage{}, fmt.Errorf("%w: send request: %w", ErrServerUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.RemoteMessage{}, err
	}
	if stored.ID == "" {
		return models.RemoteMessage{}, fmt.Errorf("%w: send response without message id", ErrUnexpectedResponse)
	}

	// the server may echo a subset of the fields
	if stored.ChatID == "" {
		stored.ChatID = req.ChatID
	}
	if stored.SenderID == "" {
		stored.SenderID = h.selfID
	}
	if stored.Timestamp == 0 {
		stored.Timestamp = req.Timestamp
	}
	if stored.Type == "" {
		stored.Type = req.Type
	}
	if len(stored.Ciphertext) == 0 {
		stored.Ciphertext, stored.Nonce = req.Ciphertext, req.Nonce
	}
	if stored.RemoteURL == "" {
		stored.RemoteURL = req.RemoteURL
	}

	return stored, nil
}

// Delete implements [RemoteStore]. DELETE /api/chats/{chatID}/messages/{messageID}.
// A message the server no longer has counts as deleted.
func (h *httpRemoteStore) Delete(ctx context.Context, chatID, messageID string) error {
	resp, err := h.request(ctx).
		SetPathParams(map[string]string{"chatID": chatID, "messageID": messageID}).
		Delete(chatMessagePath)
	if err != nil {
		return fmt.Errorf("%w: delete request: %w", ErrServerUnavailable, err)
	}

	err = mapHTTPError(resp)
	if errors.Is(err, ErrNotFound) {
		h.logger.Debug().
			Str("func", "httpRemoteStore.Delete").
			Str("message_id", messageID).
			Msg("message already absent on server")
		return nil
	}
	return err
}

func (h *httpRemoteStore) request(ctx context.Context) *resty.Request {
	return h.client.R().SetContext(ctx)
}
