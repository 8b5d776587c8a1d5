package survey

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/BatmanBruc/feedback-bot/types"
)

// Dispatcher hands a finished record to the sinks. Sink failures are the
// dispatcher's concern and never reach the user.
type Dispatcher interface {
	Dispatch(rec types.Record)
}

type Engine struct {
	machine    *Machine
	store      types.SessionStore
	dispatcher Dispatcher
	locks      *keyLock
	log        zerolog.Logger
	now        func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(machine *Machine, store types.SessionStore, dispatcher Dispatcher, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		machine:    machine,
		store:      store,
		dispatcher: dispatcher,
		locks:      newKeyLock(),
		log:        log.With().Str("component", "survey").Logger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Handle processes one message of a chat. Messages of the same chat are
// handled strictly one after another.
func (e *Engine) Handle(ctx context.Context, chatID int64, text string) (Reply, error) {
	unlock := e.locks.Lock(chatID)
	defer unlock()

	session, err := e.store.Get(ctx, chatID)
	if err != nil {
		return Reply{}, fmt.Errorf("Engine.Handle: get session: %w", err)
	}
	session.ChatID = chatID

	out := e.machine.Transition(session, text, e.now())

	if out.Finished() {
		rec := *out.Record
		e.log.Info().
			Int64("chat_id", chatID).
			Str("record_id", rec.ID()).
			Str("language", string(rec.Language())).
			Msg("feedback completed")

		e.dispatcher.Dispatch(rec)

		if err := e.store.Clear(ctx, chatID); err != nil {
			e.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to clear session")
			// A session left at its last step would finish again on the next message.
			fresh := types.NewSession(chatID)
			fresh.UpdatedAt = e.now()
			if err := e.store.Save(ctx, fresh); err != nil {
				e.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to reset session")
			}
		}
		return out.Reply, nil
	}

	if err := e.store.Save(ctx, out.Session); err != nil {
		return Reply{}, fmt.Errorf("Engine.Handle: save session: %w", err)
	}

	e.log.Debug().
		Int64("chat_id", chatID).
		Str("from", string(session.Step)).
		Str("to", string(out.Session.Step)).
		Msg("transition")

	return out.Reply, nil
}
