package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/BatmanBruc/feedback-bot/internal/config"
	"github.com/BatmanBruc/feedback-bot/internal/dispatch"
	"github.com/BatmanBruc/feedback-bot/internal/logger"
	"github.com/BatmanBruc/feedback-bot/internal/messages"
	"github.com/BatmanBruc/feedback-bot/internal/metrics"
	"github.com/BatmanBruc/feedback-bot/internal/middleware"
	"github.com/BatmanBruc/feedback-bot/internal/survey"
	"github.com/BatmanBruc/feedback-bot/internal/telegram"
	"github.com/BatmanBruc/feedback-bot/internal/webhook"
	"github.com/BatmanBruc/feedback-bot/types"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot (long polling or webhook)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if mode != "" {
				cfg.Mode = mode
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "polling or webhook, overrides MODE")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	m := metrics.New()

	var cl cleanup
	defer cl.run()

	machine, err := buildMachine(cfg)
	if err != nil {
		return err
	}
	variant := machine.Variant()

	sessions, err := buildSessionStore(ctx, cfg, &cl)
	if err != nil {
		return err
	}

	httpClient := &http.Client{
		Timeout: 2 * time.Minute,
	}
	pollTimeout := 50 * time.Second

	b, err := bot.New(
		cfg.APIToken,
		bot.WithHTTPClient(pollTimeout, httpClient),
		bot.WithNotAsyncHandlers(),
	)
	if err != nil {
		return err
	}

	sinks, err := buildRecordSinks(ctx, cfg, variant.Columns, sinkOptions{}, log, &cl)
	if err != nil {
		return err
	}

	fanout := dispatch.NewFanout(
		telegram.NewOperatorNotifier(b, cfg.AdminIDs),
		sinks,
		func(rec types.Record) string { return messages.OperatorSummary(rec, variant.Fields()) },
		dispatch.Config{Timeout: cfg.DispatchTimeout},
		log,
		m,
	)

	var dispatcher survey.Dispatcher = fanout
	if cfg.DispatchWorkers > 0 {
		pool := dispatch.NewPool(fanout, dispatch.PoolConfig{Workers: cfg.DispatchWorkers}, log)
		pool.Start()
		defer func() {
			stopCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
			defer stop()
			if err := pool.Stop(stopCtx); err != nil {
				log.Error().Err(err).Msg("dispatch pool did not drain")
			}
		}()
		dispatcher = pool
	}

	engine := survey.NewEngine(machine, sessions, dispatcher, log)
	mailbox := middleware.NewMailbox(log)
	registerConversation(b, engine, telegram.NewTransport(b, log, m), mailbox, log)

	log.Info().
		Str("mode", cfg.Mode).
		Str("variant", variant.Name).
		Str("brand", cfg.Brand).
		Str("sessions", cfg.SessionStore).
		Strs("record_stores", cfg.RecordStores).
		Msg("bot starting")

	g, gctx := errgroup.WithContext(ctx)

	switch cfg.Mode {
	case config.ModeWebhook:
		if err := webhook.Register(gctx, b, cfg.WebhookURL, cfg.WebhookSecret, webhook.DefaultRetry, log); err != nil {
			return err
		}
		defer func() {
			delCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := webhook.Unregister(delCtx, b, log); err != nil {
				log.Error().Err(err).Msg("failed to delete webhook")
			}
		}()
		router := webhook.NewRouter(webhook.NewHandler(b, cfg.WebhookSecret, log), m.Handler())
		srv := webhook.NewServer(cfg.ListenAddr(), router, log)
		g.Go(func() error { return srv.Run(gctx) })
	default:
		if _, err := b.DeleteWebhook(gctx, &bot.DeleteWebhookParams{}); err != nil {
			log.Warn().Err(err).Msg("failed to delete webhook before polling")
		}
		if addr := cfg.ListenAddr(); addr != "" {
			router := webhook.NewRouter(webhook.NewHandler(nil, "", log), m.Handler())
			srv := webhook.NewServer(addr, router, log)
			g.Go(func() error { return srv.Run(gctx) })
		}
		g.Go(func() error {
			b.Start(gctx)
			return nil
		})
	}

	err = g.Wait()
	mailbox.Wait()
	log.Info().Msg("bot stopped")
	return err
}
