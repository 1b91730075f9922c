// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/ZUA228132/mkr-messenger-sub000/internal/validators"
	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

// MessengerValidationService rejects malformed commands before they reach
// the wrapped service.
type MessengerValidationService struct {
	inner     MessengerService
	validator validators.Validator
}

func NewMessengerValidationService() MessengerServiceWrapper {
	return &MessengerValidationService{
		validator: validators.NewMessageValidator(),
	}
}

func (v *MessengerValidationService) Send(ctx context.Context, cmd models.SendCommand) (models.Message, error) {
	if err := v.validator.Validate(ctx, cmd); err != nil {
		return models.Message{}, fmt.Errorf("invalid send command: %w", err)
	}
	return v.inner.Send(ctx, cmd)
}

func (v *MessengerValidationService) SendMedia(ctx context.Context, cmd models.SendMediaCommand) (models.Message, error) {
	if err := v.validator.Validate(ctx, cmd); err != nil {
		return models.Message{}, fmt.Errorf("invalid send media command: %w", err)
	}
	return v.inner.SendMedia(ctx, cmd)
}

func (v *MessengerValidationService) Resend(ctx context.Context, messageID string) (models.Message, error) {
	if messageID == "" {
		return models.Message{}, validators.ErrEmptyMessageID
	}
	return v.inner.Resend(ctx, messageID)
}

func (v *MessengerValidationService) DeleteMessage(ctx context.Context, cmd models.DeleteCommand) error {
	if err := v.validator.Validate(ctx, cmd); err != nil {
		return fmt.Errorf("invalid delete command: %w", err)
	}
	return v.inner.DeleteMessage(ctx, cmd)
}

func (v *MessengerValidationService) ScheduleAutoDelete(ctx context.Context, cmd models.AutoDeleteCommand) error {
	if err := v.validator.Validate(ctx, cmd); err != nil {
		return fmt.Errorf("invalid auto-delete command: %w", err)
	}
	return v.inner.ScheduleAutoDelete(ctx, cmd)
}

func (v *MessengerValidationService) Messages(ctx context.Context, chatID string) (<-chan []models.MessageView, func(), error) {
	if chatID == "" {
		return nil, nil, validators.ErrEmptyChatID
	}
	return v.inner.Messages(ctx, chatID)
}

func (v *MessengerValidationService) Attach(ctx context.Context, chatID string) error {
	if chatID == "" {
		return validators.ErrEmptyChatID
	}
	return v.inner.Attach(ctx, chatID)
}

func (v *MessengerValidationService) Detach(chatID string) {
	v.inner.Detach(chatID)
}

func (v *MessengerValidationService) PanicWipe(ctx context.Context, pin string) (models.WipeResult, error) {
	return v.inner.PanicWipe(ctx, pin)
}

func (v *MessengerValidationService) Wrap(inner MessengerService) MessengerService {
	v.inner = inner
	return v
}
