package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/BatmanBruc/feedback-bot/internal/contextkeys"
	"github.com/BatmanBruc/feedback-bot/internal/survey"
)

type Conversation interface {
	Handle(ctx context.Context, chatID int64, text string) (survey.Reply, error)
}

type ReplySender interface {
	Send(ctx context.Context, chatID int64, reply survey.Reply) error
}

type Handlers struct {
	engine    Conversation
	transport ReplySender
	log       zerolog.Logger
}

func NewHandlers(engine Conversation, transport ReplySender, log zerolog.Logger) *Handlers {
	return &Handlers{
		engine:    engine,
		transport: transport,
		log:       log.With().Str("component", "handlers").Logger(),
	}
}

func (bh *Handlers) MainHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, ok := contextkeys.GetChatID(ctx)
	if !ok {
		bh.log.Warn().Int64("update_id", update.ID).Msg("chat id not found in context")
		return
	}
	messageType, _ := contextkeys.GetMessageType(ctx)

	switch messageType {
	case contextkeys.MessageTypeCommand:
		bh.HandleCommand(ctx, chatID, contextkeys.GetText(ctx))
	case contextkeys.MessageTypeText:
		bh.HandleText(ctx, chatID, contextkeys.GetText(ctx))
	default:
		// no text to record, the current question is asked again
		bh.HandleText(ctx, chatID, "")
	}
}

// HandleCommand passes commands through the conversation as well: restart
// commands reset it and any other command is an ordinary answer.
func (bh *Handlers) HandleCommand(ctx context.Context, chatID int64, text string) {
	bh.log.Debug().Int64("chat_id", chatID).Str("command", text).Msg("command")
	bh.HandleText(ctx, chatID, text)
}

func (bh *Handlers) HandleText(ctx context.Context, chatID int64, text string) {
	reply, err := bh.engine.Handle(ctx, chatID, text)
	if err != nil {
		bh.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to handle message")
		return
	}
	_ = bh.transport.Send(ctx, chatID, reply)
}
