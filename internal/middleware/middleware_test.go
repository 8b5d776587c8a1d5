package middleware

import (
	"context"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/BatmanBruc/feedback-bot/internal/contextkeys"
)

func chain(m *Middlewares, next bot.HandlerFunc) bot.HandlerFunc {
	return m.RecoverMiddleware(m.ChatMiddleware(m.AnalyzeMessageMiddleware(next)))
}

func TestMiddlewareAnnotatesContext(t *testing.T) {
	m := NewMessageAnalyzer(zerolog.Nop())

	tests := []struct {
		name string
		text string
		want contextkeys.MessageType
	}{
		{"command", "/start", contextkeys.MessageTypeCommand},
		{"text", "Aigerim", contextkeys.MessageTypeText},
		{"sticker", "", contextkeys.MessageTypeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			h := chain(m, func(ctx context.Context, _ *bot.Bot, _ *models.Update) {
				called = true
				chatID, ok := contextkeys.GetChatID(ctx)
				assert.True(t, ok)
				assert.Equal(t, int64(42), chatID)
				typ, _ := contextkeys.GetMessageType(ctx)
				assert.Equal(t, tt.want, typ)
				assert.Equal(t, tt.text, contextkeys.GetText(ctx))
			})

			h(context.Background(), nil, &models.Update{Message: &models.Message{
				Chat: models.Chat{ID: 42},
				Text: tt.text,
			}})
			assert.True(t, called)
		})
	}
}

func TestMiddlewareSkipsUpdatesWithoutMessage(t *testing.T) {
	m := NewMessageAnalyzer(zerolog.Nop())
	called := false
	h := chain(m, func(context.Context, *bot.Bot, *models.Update) { called = true })

	h(context.Background(), nil, &models.Update{CallbackQuery: &models.CallbackQuery{ID: "1"}})

	assert.False(t, called)
}

func TestRecoverMiddleware(t *testing.T) {
	m := NewMessageAnalyzer(zerolog.Nop())
	h := m.RecoverMiddleware(func(context.Context, *bot.Bot, *models.Update) { panic("boom") })

	assert.NotPanics(t, func() { h(context.Background(), nil, &models.Update{ID: 1}) })
}
