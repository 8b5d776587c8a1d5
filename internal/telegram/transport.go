package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/BatmanBruc/feedback-bot/internal/metrics"
	"github.com/BatmanBruc/feedback-bot/internal/survey"
	"github.com/BatmanBruc/feedback-bot/internal/utils"
)

// MessageSender is the part of *bot.Bot used for outbound messages.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

type Transport struct {
	sender  MessageSender
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func NewTransport(sender MessageSender, log zerolog.Logger, m *metrics.Metrics) *Transport {
	return &Transport{
		sender:  sender,
		log:     log.With().Str("component", "transport").Logger(),
		metrics: m,
	}
}

// Send delivers a reply with its keyboard. Failures are logged and counted,
// the conversation state is not rolled back.
func (t *Transport) Send(ctx context.Context, chatID int64, reply survey.Reply) error {
	if reply.Text == "" {
		return nil
	}
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   reply.Text,
	}
	switch {
	case len(reply.Choices) > 0:
		params.ReplyMarkup = utils.BuildReplyKeyboard(reply.Choices)
	case reply.RemoveKeyboard:
		params.ReplyMarkup = utils.RemoveKeyboard()
	}

	if _, err := t.sender.SendMessage(ctx, params); err != nil {
		t.metrics.TransportFailure()
		t.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
		return fmt.Errorf("Transport.Send: %w", err)
	}
	return nil
}
