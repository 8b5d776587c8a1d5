package middleware

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailboxKeepsChatOrder(t *testing.T) {
	mb := NewMailbox(zerolog.Nop())

	var (
		mu  sync.Mutex
		got []int
	)
	for i := 0; i < 200; i++ {
		i := i
		mb.Enqueue(7, func() {
			// Uneven job durations would reorder a racing runner.
			if i%3 == 0 {
				time.Sleep(50 * time.Microsecond)
			}
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	mb.Wait()

	require.Len(t, got, 200)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
	assert.Zero(t, mb.pending())
}

func TestMailboxRunsChatsInParallel(t *testing.T) {
	mb := NewMailbox(zerolog.Nop())

	release := make(chan struct{})
	mb.Enqueue(1, func() { <-release })

	done := make(chan struct{})
	mb.Enqueue(2, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("chat 2 waited for chat 1")
	}
	close(release)
	mb.Wait()
}

func TestMailboxSurvivesPanic(t *testing.T) {
	mb := NewMailbox(zerolog.Nop())

	ran := false
	mb.Enqueue(3, func() { panic("boom") })
	mb.Enqueue(3, func() { ran = true })
	mb.Wait()

	assert.True(t, ran)
}

func TestSerializeMiddlewareReturnsBeforeHandlerRuns(t *testing.T) {
	m := NewMessageAnalyzer(zerolog.Nop())
	mb := NewMailbox(zerolog.Nop())

	release := make(chan struct{})
	var texts []string
	h := m.ChatMiddleware(m.SerializeMiddleware(mb, func(_ context.Context, _ *bot.Bot, u *models.Update) {
		<-release
		texts = append(texts, u.Message.Text)
	}))

	for _, text := range []string{"first", "second", "third"} {
		h(context.Background(), nil, &models.Update{Message: &models.Message{
			Chat: models.Chat{ID: 9},
			Text: text,
		}})
	}
	close(release)
	mb.Wait()

	assert.Equal(t, []string{"first", "second", "third"}, texts)
}
