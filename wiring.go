package main

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/BatmanBruc/feedback-bot/internal/config"
	"github.com/BatmanBruc/feedback-bot/internal/dispatch"
	"github.com/BatmanBruc/feedback-bot/internal/handlers"
	"github.com/BatmanBruc/feedback-bot/internal/i18n"
	"github.com/BatmanBruc/feedback-bot/internal/middleware"
	"github.com/BatmanBruc/feedback-bot/internal/survey"
	"github.com/BatmanBruc/feedback-bot/store"
	"github.com/BatmanBruc/feedback-bot/types"
)

// cleanup releases what a builder opened, in reverse order.
type cleanup []func()

func (c *cleanup) add(f func()) { *c = append(*c, f) }

func (c cleanup) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func buildMachine(cfg *config.Config) (*survey.Machine, error) {
	catalog, err := i18n.NewCatalog(cfg.Brand)
	if err != nil {
		return nil, err
	}
	for tag, texts := range cfg.Prompts {
		lang, ok := i18n.Parse(tag)
		if !ok {
			return nil, fmt.Errorf("prompts: unknown language %q", tag)
		}
		for key, text := range texts {
			catalog.Override(lang, i18n.Key(key), text)
		}
	}
	variant, err := survey.VariantByName(cfg.Variant)
	if err != nil {
		return nil, err
	}
	return survey.NewMachine(variant, catalog)
}

func buildSessionStore(ctx context.Context, cfg *config.Config, cl *cleanup) (types.SessionStore, error) {
	switch cfg.SessionStore {
	case config.SessionRedis:
		client, err := store.NewRedisClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			return nil, err
		}
		cl.add(func() { _ = client.Close() })
		return store.NewRedisSessionStore(client, cfg.SessionTTLHours), nil
	case config.SessionBolt:
		s, err := store.NewBoltSessionStore(cfg.BoltPath, cfg.SessionTTLHours)
		if err != nil {
			return nil, err
		}
		cl.add(func() { _ = s.Close() })
		return s, nil
	default:
		return store.NewMemorySessionStore(), nil
	}
}

type sinkCheck func(ctx context.Context) error

// sinkOptions controls how buildRecordSinks treats a sink it cannot reach.
// With strict set the first failure is returned; otherwise it is logged and
// the sink is kept so each record's failure is reported on delivery.
type sinkOptions struct {
	strict bool
	sheets []option.ClientOption
}

// buildRecordSinks opens every configured record store and checks it is
// reachable.
func buildRecordSinks(ctx context.Context, cfg *config.Config, columns []types.Column, opts sinkOptions, log zerolog.Logger, cl *cleanup) ([]dispatch.RecordSink, error) {
	sinks := make([]dispatch.RecordSink, 0, len(cfg.RecordStores))
	for _, name := range cfg.RecordStores {
		var (
			rs    types.RecordStore
			check sinkCheck
		)
		switch name {
		case config.RecordSheets:
			id, err := store.SpreadsheetID(cfg.SheetRef)
			if err != nil {
				return nil, err
			}
			clientOpts := opts.sheets
			if len(cfg.GoogleCredentials) > 0 {
				clientOpts = append([]option.ClientOption{option.WithCredentialsJSON(cfg.GoogleCredentials)}, clientOpts...)
			}
			s, err := store.NewSheetsRecordStore(ctx, store.SheetsConfig{
				SpreadsheetID: id,
				Range:         cfg.SheetRange,
				Columns:       columns,
			}, clientOpts...)
			if err != nil {
				return nil, err
			}
			rs, check = s, s.Ping
		case config.RecordPostgres:
			s, err := store.NewPostgresRecordStore(ctx, cfg.PostgresDSN)
			if err != nil {
				return nil, err
			}
			cl.add(s.Close)
			rs = s
			check = func(ctx context.Context) error {
				if err := s.Migrate(ctx); err != nil {
					return err
				}
				return s.Ping(ctx)
			}
		default:
			return nil, fmt.Errorf("unknown record store %q", name)
		}

		if err := check(ctx); err != nil {
			if opts.strict {
				return nil, fmt.Errorf("record store %s: %w", name, err)
			}
			log.Error().Err(err).Str("sink", name).Msg("record store unreachable, keeping it")
		} else {
			log.Info().Str("sink", name).Msg("record store ready")
		}
		sinks = append(sinks, dispatch.RecordSink{Name: name, Store: rs})
	}
	return sinks, nil
}

// registerConversation routes every message update through the middleware
// chain into the conversation. Updates of one chat are queued on mb and run
// in arrival order.
func registerConversation(b *bot.Bot, engine handlers.Conversation, sender handlers.ReplySender, mb *middleware.Mailbox, log zerolog.Logger) {
	h := handlers.NewHandlers(engine, sender, log)
	mw := middleware.NewMessageAnalyzer(log)

	handlerChain := mw.RecoverMiddleware(
		mw.ChatMiddleware(
			mw.SerializeMiddleware(mb,
				mw.AnalyzeMessageMiddleware(
					h.MainHandler,
				),
			),
		),
	)

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil
	}, handlerChain)
}
