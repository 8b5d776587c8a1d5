package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"go.uber.org/multierr"

	"github.com/BatmanBruc/feedback-bot/internal/messages"
)

var ErrNoOperators = errors.New("no operator chat configured")

// OperatorNotifier sends summaries to every configured admin chat.
type OperatorNotifier struct {
	sender   MessageSender
	adminIDs []int64
}

func NewOperatorNotifier(sender MessageSender, adminIDs []int64) *OperatorNotifier {
	return &OperatorNotifier{
		sender:   sender,
		adminIDs: append([]int64(nil), adminIDs...),
	}
}

// Notify fails only if at least one admin chat could not be reached; the
// remaining admins are still tried.
func (n *OperatorNotifier) Notify(ctx context.Context, text string) error {
	if len(n.adminIDs) == 0 {
		return ErrNoOperators
	}
	var errs error
	for _, id := range n.adminIDs {
		_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    id,
			Text:      text,
			ParseMode: messages.ParseModeHTML,
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("admin %d: %w", id, err))
		}
	}
	return errs
}
