package store

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/BatmanBruc/feedback-bot/types"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresRecordStore appends finished records to the feedback_records table.
// The schema is migrated by Migrate or, failing that, before the first Append.
type PostgresRecordStore struct {
	pool *pgxpool.Pool

	mu       sync.Mutex
	migrated bool
}

func NewPostgresRecordStore(ctx context.Context, dsn string) (*PostgresRecordStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("NewPostgresRecordStore: empty dsn")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresRecordStore: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresRecordStore: %w", err)
	}
	return &PostgresRecordStore{pool: pool}, nil
}

// Migrate brings the schema up to date. It is a no-op once it has succeeded.
func (s *PostgresRecordStore) Migrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.migrated {
		return nil
	}
	if err := s.runMigrations(ctx); err != nil {
		return fmt.Errorf("PostgresRecordStore.Migrate: %w", err)
	}
	s.migrated = true
	return nil
}

func (s *PostgresRecordStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresRecordStore) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

// Append is idempotent on the record ID.
func (s *PostgresRecordStore) Append(ctx context.Context, rec types.Record) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.Migrate(ctx); err != nil {
		return fmt.Errorf("PostgresRecordStore.Append: %w", err)
	}

	answers := make(map[string]string, len(rec.Answers()))
	for k, v := range rec.Answers() {
		answers[string(k)] = v
	}

	_, err := s.pool.Exec(ctx, `
INSERT INTO feedback_records (id, chat_id, language, name, phone, birthday, consultant, rating, city, comment, answers, captured_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO NOTHING
`, rec.ID(), rec.ChatID(), string(rec.Language()),
		rec.Answer(types.FieldName),
		rec.Answer(types.FieldPhone),
		rec.Answer(types.FieldBirthday),
		rec.Answer(types.FieldConsultant),
		rec.Answer(types.FieldRating),
		rec.Answer(types.FieldCity),
		rec.Answer(types.FieldComment),
		answers,
		rec.CapturedAt(),
	)
	if err != nil {
		return fmt.Errorf("PostgresRecordStore.Append: %w", err)
	}
	return nil
}

func (s *PostgresRecordStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
