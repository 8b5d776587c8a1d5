package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/BatmanBruc/feedback-bot/internal/logger"
)

func newCheckCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration, prompts and sink connectivity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			machine, err := buildMachine(cfg)
			if err != nil {
				return err
			}
			v := machine.Variant()
			fmt.Fprintf(out, "prompts: ok (brand=%s variant=%s steps=%d)\n", cfg.Brand, v.Name, len(v.Steps))

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			var cl cleanup
			defer cl.run()

			if _, err := buildSessionStore(ctx, cfg, &cl); err != nil {
				return fmt.Errorf("session store %s: %w", cfg.SessionStore, err)
			}
			fmt.Fprintf(out, "session store: ok (%s)\n", cfg.SessionStore)

			log := logger.New(cfg.LogLevel, cfg.LogPretty)
			sinks, err := buildRecordSinks(ctx, cfg, v.Columns, sinkOptions{strict: true}, log, &cl)
			if err != nil {
				return err
			}
			for _, s := range sinks {
				fmt.Fprintf(out, "record store: ok (%s)\n", s.Name)
			}
			fmt.Fprintf(out, "operators: %d\n", len(cfg.AdminIDs))
			return nil
		},
	}
}
