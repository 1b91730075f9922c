// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

// Field names accepted by [MessageValidator.Validate].
const (
	FieldChatID     = "chat_id"
	FieldMessageID  = "message_id"
	FieldType       = "type"
	FieldPayload    = "payload"
	FieldSourcePath = "source_path"
	FieldScope      = "scope"
	FieldTarget     = "target"
	FieldPolicy     = "policy"
)

// MessageValidator validates messenger commands.
type MessageValidator struct{}

func NewMessageValidator() Validator {
	return &MessageValidator{}
}

// Validate dispatches on the dynamic type of obj. Value and pointer forms of
// [models.SendCommand], [models.SendMediaCommand], [models.DeleteCommand]
// and [models.AutoDeleteCommand] are accepted; anything else yields
// [ErrUnsupportedType].
func (v *MessageValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.SendCommand:
		return v.validateSend(value, fields...)
	case *models.SendCommand:
		return v.validateSend(*value, fields...)

	case models.SendMediaCommand:
		return v.validateSendMedia(value, fields...)
	case *models.SendMediaCommand:
		return v.validateSendMedia(*value, fields...)

	case models.DeleteCommand:
		return v.validateDelete(value, fields...)
	case *models.DeleteCommand:
		return v.validateDelete(*value, fields...)

	case models.AutoDeleteCommand:
		return v.validateAutoDelete(value, fields...)
	case *models.AutoDeleteCommand:
		return v.validateAutoDelete(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *MessageValidator) validateSend(cmd models.SendCommand, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldChatID, FieldType, FieldPayload}
	}

	for _, f := range fields {
		switch f {
		case FieldChatID:
			if strings.TrimSpace(cmd.ChatID) == "" {
				return ErrEmptyChatID
			}
		case FieldType:
			if err := cmd.Type.Validate(); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidType, err)
			}
			if cmd.Type.IsMedia() {
				return ErrMediaTypeInline
			}
		case FieldPayload:
			if len(cmd.Plaintext) == 0 {
				return ErrEmptyPayload
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *MessageValidator) validateSendMedia(cmd models.SendMediaCommand, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldChatID, FieldType, FieldSourcePath}
	}

	for _, f := range fields {
		switch f {
		case FieldChatID:
			if strings.TrimSpace(cmd.ChatID) == "" {
				return ErrEmptyChatID
			}
		case FieldType:
			if err := cmd.Type.Validate(); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidType, err)
			}
			if !cmd.Type.IsMedia() {
				return ErrInlineTypeAsFile
			}
		case FieldSourcePath:
			if strings.TrimSpace(cmd.SourcePath) == "" {
				return ErrEmptySourcePath
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *MessageValidator) validateDelete(cmd models.DeleteCommand, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldMessageID, FieldScope}
	}

	for _, f := range fields {
		switch f {
		case FieldMessageID:
			if cmd.MessageID == "" {
				return ErrEmptyMessageID
			}
		case FieldScope:
			if cmd.Scope != models.DeleteForMe && cmd.Scope != models.DeleteForEveryone {
				return fmt.Errorf("%w: %q", ErrInvalidScope, string(cmd.Scope))
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *MessageValidator) validateAutoDelete(cmd models.AutoDeleteCommand, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldTarget, FieldPolicy}
	}

	for _, f := range fields {
		switch f {
		case FieldTarget:
			if cmd.Target.ID == "" {
				return fmt.Errorf("%w: empty id", ErrInvalidTarget)
			}
			if cmd.Target.Kind != models.TargetMessage && cmd.Target.Kind != models.TargetChat {
				return fmt.Errorf("%w: kind %q", ErrInvalidTarget, string(cmd.Target.Kind))
			}
		case FieldPolicy:
			if err := cmd.Policy.Validate(); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}
