package middleware

import (
	"context"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/BatmanBruc/feedback-bot/internal/contextkeys"
)

// Mailbox runs the updates of one chat strictly in the order they were
// enqueued. Each chat with pending work gets one draining goroutine, so
// different chats still progress in parallel.
type Mailbox struct {
	log zerolog.Logger

	mu     sync.Mutex
	queues map[int64][]func()
	wg     sync.WaitGroup
}

func NewMailbox(log zerolog.Logger) *Mailbox {
	return &Mailbox{
		log:    log.With().Str("component", "mailbox").Logger(),
		queues: make(map[int64][]func()),
	}
}

// Enqueue appends job to the chat's queue and returns without waiting for
// it to run.
func (m *Mailbox) Enqueue(chatID int64, job func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if q, ok := m.queues[chatID]; ok {
		m.queues[chatID] = append(q, job)
		return
	}
	m.queues[chatID] = []func(){job}
	m.wg.Add(1)
	go m.drain(chatID)
}

func (m *Mailbox) drain(chatID int64) {
	defer m.wg.Done()
	for {
		m.mu.Lock()
		q := m.queues[chatID]
		if len(q) == 0 {
			delete(m.queues, chatID)
			m.mu.Unlock()
			return
		}
		job := q[0]
		q[0] = nil
		m.queues[chatID] = q[1:]
		m.mu.Unlock()

		m.run(chatID, job)
	}
}

func (m *Mailbox) run(chatID int64, job func()) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Int64("chat_id", chatID).Msg("queued update panicked")
		}
	}()
	job()
}

// Wait blocks until every queued update has run.
func (m *Mailbox) Wait() {
	m.wg.Wait()
}

func (m *Mailbox) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}

// SerializeMiddleware hands the update to the chat's mailbox. It expects
// ChatMiddleware to have stored the chat ID.
func (m *Middlewares) SerializeMiddleware(mb *Mailbox, next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		chatID, ok := contextkeys.GetChatID(ctx)
		if !ok {
			next(ctx, b, update)
			return
		}
		mb.Enqueue(chatID, func() { next(ctx, b, update) })
	}
}
