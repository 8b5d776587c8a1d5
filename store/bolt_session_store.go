package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.etcd.io/bbolt"

	"github.com/BatmanBruc/feedback-bot/types"
)

var sessionsBucket = []byte("sessions")

// BoltSessionStore persists sessions in a local bbolt file, for single
// instance deployments without Redis.
type BoltSessionStore struct {
	db  *bbolt.DB
	ttl time.Duration
	now func() time.Time
}

func NewBoltSessionStore(path string, ttlHours int) (*BoltSessionStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("NewBoltSessionStore: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("NewBoltSessionStore: create bucket: %w", err)
	}

	ttl := time.Duration(ttlHours) * time.Hour
	if ttlHours <= 0 {
		ttl = 24 * time.Hour
	}
	return &BoltSessionStore{db: db, ttl: ttl, now: time.Now}, nil
}

func boltKey(chatID int64) []byte {
	return []byte(strconv.FormatInt(chatID, 10))
}

// Get treats a session older than the ttl as absent.
func (s *BoltSessionStore) Get(_ context.Context, chatID int64) (*types.Session, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(sessionsBucket).Get(boltKey(chatID)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("BoltSessionStore.Get: %w", err)
	}
	if data == nil {
		return types.NewSession(chatID), nil
	}

	var session types.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("BoltSessionStore.Get: decode: %w", err)
	}
	if !session.UpdatedAt.IsZero() && s.now().Sub(session.UpdatedAt) > s.ttl {
		return types.NewSession(chatID), nil
	}
	if session.Answers == nil {
		session.Answers = map[types.Field]string{}
	}
	return &session, nil
}

func (s *BoltSessionStore) Save(_ context.Context, session *types.Session) error {
	cp := session.Clone()
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = s.now()
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("BoltSessionStore.Save: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put(boltKey(cp.ChatID), data)
	})
}

func (s *BoltSessionStore) Clear(_ context.Context, chatID int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete(boltKey(chatID))
	})
}

func (s *BoltSessionStore) Close() error {
	return s.db.Close()
}
