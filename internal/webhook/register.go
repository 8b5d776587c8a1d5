package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

type Registrar interface {
	SetWebhook(ctx context.Context, params *bot.SetWebhookParams) (bool, error)
	DeleteWebhook(ctx context.Context, params *bot.DeleteWebhookParams) (bool, error)
}

type RetryConfig struct {
	Base       time.Duration
	MaxRetries uint64
}

var DefaultRetry = RetryConfig{Base: 500 * time.Millisecond, MaxRetries: 5}

// Register points Telegram at baseURL + Path, retrying transient failures.
// A single connection keeps Telegram from posting updates concurrently.
func Register(ctx context.Context, client Registrar, baseURL, secret string, rc RetryConfig, log zerolog.Logger) error {
	url := baseURL + Path
	backoff := retry.WithMaxRetries(rc.MaxRetries, retry.NewExponential(rc.Base))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		ok, err := client.SetWebhook(ctx, &bot.SetWebhookParams{
			URL:                url,
			SecretToken:        secret,
			DropPendingUpdates: false,
			AllowedUpdates:     []string{"message"},
			MaxConnections:     1,
		})
		if err == nil && !ok {
			err = fmt.Errorf("setWebhook returned false")
		}
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("set webhook failed")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("webhook.Register: %w", err)
	}
	log.Info().Str("url", url).Msg("webhook registered")
	return nil
}

func Unregister(ctx context.Context, client Registrar, log zerolog.Logger) error {
	if _, err := client.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
		return fmt.Errorf("webhook.Unregister: %w", err)
	}
	log.Info().Msg("webhook deleted")
	return nil
}
