package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/BatmanBruc/feedback-bot/types"
)

// RedisSessionStore keeps in-flight interviews in Redis so they survive a
// restart. Abandoned sessions expire after ttl.
type RedisSessionStore struct {
	client *RedisClient
	ttl    time.Duration
}

func NewRedisSessionStore(redisClient *RedisClient, ttlHours int) *RedisSessionStore {
	ttl := time.Duration(ttlHours) * time.Hour
	if ttlHours <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisSessionStore{
		client: redisClient,
		ttl:    ttl,
	}
}

func (s *RedisSessionStore) key(chatID int64) string {
	return s.client.generateKey("session", strconv.FormatInt(chatID, 10))
}

func (s *RedisSessionStore) Get(ctx context.Context, chatID int64) (*types.Session, error) {
	var session types.Session
	if err := s.client.Get(ctx, s.key(chatID), &session); err != nil {
		if errors.Is(err, ErrNotFound) {
			return types.NewSession(chatID), nil
		}
		return nil, fmt.Errorf("RedisSessionStore.Get: %w", err)
	}
	if session.Answers == nil {
		session.Answers = map[types.Field]string{}
	}
	if session.Step == "" {
		session.Step = types.StepAwaitingLanguage
	}
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *types.Session) error {
	if err := s.client.Set(ctx, s.key(session.ChatID), session, s.ttl); err != nil {
		return fmt.Errorf("RedisSessionStore.Save: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Clear(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, s.key(chatID)); err != nil {
		return fmt.Errorf("RedisSessionStore.Clear: %w", err)
	}
	return nil
}
