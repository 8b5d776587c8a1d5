package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/BatmanBruc/feedback-bot/internal/metrics"
	"github.com/BatmanBruc/feedback-bot/types"
)

const (
	SinkNotify     = "notify"
	DefaultTimeout = 5 * time.Second
)

// RecordSink is a named record store, the name labels logs and metrics.
type RecordSink struct {
	Name  string
	Store types.RecordStore
}

type Config struct {
	Timeout time.Duration
}

// Fanout delivers one record to the operator notifier and every record
// store. A failing sink never prevents the others from running.
type Fanout struct {
	notifier types.Notifier
	stores   []RecordSink
	summary  func(types.Record) string
	timeout  time.Duration
	log      zerolog.Logger
	metrics  *metrics.Metrics
}

func NewFanout(notifier types.Notifier, stores []RecordSink, summary func(types.Record) string, cfg Config, log zerolog.Logger, m *metrics.Metrics) *Fanout {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Fanout{
		notifier: notifier,
		stores:   stores,
		summary:  summary,
		timeout:  cfg.Timeout,
		log:      log.With().Str("component", "dispatch").Logger(),
		metrics:  m,
	}
}

// Deliver runs all sinks concurrently and returns their combined errors.
func (f *Fanout) Deliver(ctx context.Context, rec types.Record) error {
	f.metrics.SubmissionCompleted()

	var (
		mu   sync.Mutex
		errs error
		g    errgroup.Group
	)
	run := func(sink string, call func(context.Context) error) {
		g.Go(func() error {
			err := f.call(ctx, rec, sink, call)
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	if f.notifier != nil {
		text := f.summary(rec)
		run(SinkNotify, func(ctx context.Context) error {
			return f.notifier.Notify(ctx, text)
		})
	}
	for _, s := range f.stores {
		s := s
		run(s.Name, func(ctx context.Context) error {
			return s.Store.Append(ctx, rec)
		})
	}

	_ = g.Wait()
	return errs
}

func (f *Fanout) call(ctx context.Context, rec types.Record, sink string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	f.metrics.SinkCall(sink, time.Since(start).Seconds(), err)
	if err != nil {
		f.log.Error().
			Err(err).
			Str("sink", sink).
			Str("record_id", rec.ID()).
			Int64("chat_id", rec.ChatID()).
			Msg("sink delivery failed")
		return fmt.Errorf("%s: %w", sink, err)
	}
	f.log.Debug().Str("sink", sink).Str("record_id", rec.ID()).Msg("sink delivered")
	return nil
}

// Dispatch delivers in the calling goroutine. Errors are already logged.
func (f *Fanout) Dispatch(rec types.Record) {
	_ = f.Deliver(context.Background(), rec)
}
