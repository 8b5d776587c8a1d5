package types

import (
	"context"
	"time"

	"github.com/BatmanBruc/feedback-bot/internal/i18n"
	"github.com/google/uuid"
)

type Session struct {
	ChatID    int64            `json:"chat_id"`
	Step      Step             `json:"step"`
	Language  i18n.Lang        `json:"language,omitempty"`
	Answers   map[Field]string `json:"answers,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func NewSession(chatID int64) *Session {
	return &Session{
		ChatID:  chatID,
		Step:    StepAwaitingLanguage,
		Answers: map[Field]string{},
	}
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Answers = make(map[Field]string, len(s.Answers))
	for k, v := range s.Answers {
		cp.Answers[k] = v
	}
	return &cp
}

// Record is the finished snapshot of one submission. It is never modified
// after NewRecord returns.
type Record struct {
	id         string
	chatID     int64
	language   i18n.Lang
	answers    map[Field]string
	capturedAt time.Time
}

func NewRecord(chatID int64, lang i18n.Lang, answers map[Field]string, capturedAt time.Time) Record {
	cp := make(map[Field]string, len(answers))
	for k, v := range answers {
		cp[k] = v
	}
	return Record{
		id:         uuid.New().String(),
		chatID:     chatID,
		language:   lang,
		answers:    cp,
		capturedAt: capturedAt,
	}
}

func (r Record) ID() string            { return r.id }
func (r Record) ChatID() int64         { return r.chatID }
func (r Record) Language() i18n.Lang   { return r.language }
func (r Record) CapturedAt() time.Time { return r.capturedAt }

func (r Record) Answer(f Field) string {
	return r.answers[f]
}

func (r Record) Answers() map[Field]string {
	cp := make(map[Field]string, len(r.answers))
	for k, v := range r.answers {
		cp[k] = v
	}
	return cp
}

// Row lays the record out in the given column order.
func (r Record) Row(columns []Column) []string {
	row := make([]string, 0, len(columns))
	for _, c := range columns {
		switch c {
		case ColumnTimestamp:
			row = append(row, r.capturedAt.Format(TimestampLayout))
		case ColumnLanguage:
			row = append(row, string(r.language))
		default:
			row = append(row, r.answers[Field(c)])
		}
	}
	return row
}

type SessionStore interface {
	Get(ctx context.Context, chatID int64) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Clear(ctx context.Context, chatID int64) error
}

type RecordStore interface {
	Append(ctx context.Context, rec Record) error
}

type Notifier interface {
	Notify(ctx context.Context, text string) error
}
