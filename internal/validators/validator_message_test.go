// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

func TestMessageValidator_Send(t *testing.T) {
	v := NewMessageValidator()
	ctx := context.Background()

	tests := []struct {
		name    string
		cmd     any
		fields  []string
		wantErr error
	}{
		{
			name: "valid text",
			cmd:  models.SendCommand{ChatID: "chat-1", Type: models.TypeText, Plaintext: []byte("hi")},
		},
		{
			name: "valid location pointer",
			cmd:  &models.SendCommand{ChatID: "chat-1", Type: models.TypeLocation, Plaintext: []byte(`{"lat":1,"lon":2}`)},
		},
		{
			name:    "blank chat",
			cmd:     models.SendCommand{ChatID: "  ", Type: models.TypeText, Plaintext: []byte("hi")},
			wantErr: ErrEmptyChatID,
		},
		{
			name:    "unknown type",
			cmd:     models.SendCommand{ChatID: "chat-1", Type: "STICKER", Plaintext: []byte("hi")},
			wantErr: ErrInvalidType,
		},
		{
			name:    "media type inline",
			cmd:     models.SendCommand{ChatID: "chat-1", Type: models.TypeVoice, Plaintext: []byte("hi")},
			wantErr: ErrMediaTypeInline,
		},
		{
			name:    "empty payload",
			cmd:     models.SendCommand{ChatID: "chat-1", Type: models.TypeText},
			wantErr: ErrEmptyPayload,
		},
		{
			name:   "only chat id checked",
			cmd:    models.SendCommand{ChatID: "chat-1"},
			fields: []string{FieldChatID},
		},
		{
			name:    "unknown field",
			cmd:     models.SendCommand{ChatID: "chat-1"},
			fields:  []string{"bogus"},
			wantErr: ErrUnknownField,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(ctx, tt.cmd, tt.fields...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMessageValidator_SendMedia(t *testing.T) {
	v := NewMessageValidator()
	ctx := context.Background()

	assert.NoError(t, v.Validate(ctx, models.SendMediaCommand{ChatID: "c", Type: models.TypeImage, SourcePath: "/tmp/a.jpg"}))
	assert.ErrorIs(t, v.Validate(ctx, models.SendMediaCommand{ChatID: "c", Type: models.TypeText, SourcePath: "/tmp/a"}), ErrInlineTypeAsFile)
	assert.ErrorIs(t, v.Validate(ctx, &models.SendMediaCommand{ChatID: "c", Type: models.TypeVideoNote}), ErrEmptySourcePath)
	assert.ErrorIs(t, v.Validate(ctx, models.SendMediaCommand{Type: models.TypeFile, SourcePath: "x"}), ErrEmptyChatID)
}

func TestMessageValidator_Delete(t *testing.T) {
	v := NewMessageValidator()
	ctx := context.Background()

	assert.NoError(t, v.Validate(ctx, models.DeleteCommand{MessageID: "m", Scope: models.DeleteForMe}))
	assert.NoError(t, v.Validate(ctx, &models.DeleteCommand{MessageID: "m", Scope: models.DeleteForEveryone}))
	assert.ErrorIs(t, v.Validate(ctx, models.DeleteCommand{Scope: models.DeleteForMe}), ErrEmptyMessageID)
	assert.ErrorIs(t, v.Validate(ctx, models.DeleteCommand{MessageID: "m", Scope: "them"}), ErrInvalidScope)
}

func TestMessageValidator_AutoDelete(t *testing.T) {
	v := NewMessageValidator()
	ctx := context.Background()

	assert.NoError(t, v.Validate(ctx, models.AutoDeleteCommand{Target: models.MessageTarget("m"), Policy: models.After(time.Hour)}))
	assert.NoError(t, v.Validate(ctx, models.AutoDeleteCommand{Target: models.ChatTarget("c"), Policy: models.OnExit}))
	assert.NoError(t, v.Validate(ctx, models.AutoDeleteCommand{Target: models.ChatTarget("c"), Policy: models.Never}))
	assert.ErrorIs(t, v.Validate(ctx, models.AutoDeleteCommand{Target: models.Target{Kind: "user", ID: "u"}, Policy: models.AfterRead}), ErrInvalidTarget)
	assert.ErrorIs(t, v.Validate(ctx, models.AutoDeleteCommand{Target: models.ChatTarget(""), Policy: models.AfterRead}), ErrInvalidTarget)
	assert.ErrorIs(t, v.Validate(ctx, models.AutoDeleteCommand{Target: models.ChatTarget("c"), Policy: models.After(-time.Second)}), ErrInvalidPolicy)
	assert.ErrorIs(t, v.Validate(ctx, models.AutoDeleteCommand{Target: models.ChatTarget("c"), Policy: models.DeletionPolicy{Kind: "SOMETIME"}}), ErrInvalidPolicy)
}

func TestMessageValidator_UnsupportedType(t *testing.T) {
	v := NewMessageValidator()
	assert.ErrorIs(t, v.Validate(context.Background(), "hello"), ErrUnsupportedType)
	assert.ErrorIs(t, v.Validate(context.Background(), models.Message{}), ErrUnsupportedType)
}
