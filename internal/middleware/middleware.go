package middleware

import (
	"context"
	"runtime/debug"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/BatmanBruc/feedback-bot/internal/contextkeys"
)

type Middlewares struct {
	log zerolog.Logger
}

func NewMessageAnalyzer(log zerolog.Logger) *Middlewares {
	return &Middlewares{
		log: log.With().Str("component", "middleware").Logger(),
	}
}

// RecoverMiddleware keeps one broken update from taking the poller down.
func (m *Middlewares) RecoverMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		defer func() {
			if r := recover(); r != nil {
				m.log.Error().
					Interface("panic", r).
					Int64("update_id", update.ID).
					Bytes("stack", debug.Stack()).
					Msg("handler panic")
			}
		}()
		next(ctx, b, update)
	}
}

// ChatMiddleware drops updates that carry no private or group message and
// stores the chat ID in the context.
func (m *Middlewares) ChatMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update == nil || update.Message == nil {
			return
		}
		chatID := update.Message.Chat.ID
		if chatID == 0 {
			return
		}
		next(contextkeys.WithChatID(ctx, chatID), b, update)
	}
}

func (m *Middlewares) AnalyzeMessageMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update == nil || update.Message == nil {
			return
		}
		msg := update.Message
		msgType := determineMessageType(msg)

		ctx = contextkeys.WithMessageType(ctx, msgType)
		ctx = contextkeys.WithText(ctx, msg.Text)

		m.log.Debug().
			Int64("chat_id", msg.Chat.ID).
			Str("type", string(msgType)).
			Msg("update received")

		next(ctx, b, update)
	}
}

func determineMessageType(msg *models.Message) contextkeys.MessageType {
	text := strings.TrimSpace(msg.Text)
	switch {
	case strings.HasPrefix(text, "/"):
		return contextkeys.MessageTypeCommand
	case text != "":
		return contextkeys.MessageTypeText
	default:
		return contextkeys.MessageTypeOther
	}
}
