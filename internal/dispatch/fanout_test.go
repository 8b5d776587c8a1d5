package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/BatmanBruc/feedback-bot/internal/i18n"
	"github.com/BatmanBruc/feedback-bot/internal/metrics"
	"github.com/BatmanBruc/feedback-bot/types"
)

func scrapeMetrics(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

type mockRecordStore struct {
	mock.Mock
}

func (m *mockRecordStore) Append(ctx context.Context, rec types.Record) error {
	return m.Called(ctx, rec).Error(0)
}

type blockingStore struct {
	calls atomic.Int32
}

func (s *blockingStore) Append(ctx context.Context, _ types.Record) error {
	s.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func testRecord() types.Record {
	return types.NewRecord(7, i18n.RU, map[types.Field]string{
		types.FieldName:       "Aigerim",
		types.FieldConsultant: "Bekzat",
	}, time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC))
}

func summary(rec types.Record) string {
	return "summary " + rec.Answer(types.FieldName)
}

func TestDeliverCallsBothSinks(t *testing.T) {
	rec := testRecord()
	n := &mockNotifier{}
	n.On("Notify", mock.Anything, "summary Aigerim").Return(nil).Once()
	s := &mockRecordStore{}
	s.On("Append", mock.Anything, rec).Return(nil).Once()

	f := NewFanout(n, []RecordSink{{Name: "sheets", Store: s}}, summary, Config{}, zerolog.Nop(), nil)

	require.NoError(t, f.Deliver(context.Background(), rec))
	n.AssertExpectations(t)
	s.AssertExpectations(t)
}

func TestDeliverStoreFailureStillNotifies(t *testing.T) {
	rec := testRecord()
	m := metrics.New()
	n := &mockNotifier{}
	n.On("Notify", mock.Anything, mock.Anything).Return(nil).Once()
	s := &mockRecordStore{}
	s.On("Append", mock.Anything, rec).Return(errors.New("quota exceeded")).Once()

	f := NewFanout(n, []RecordSink{{Name: "sheets", Store: s}}, summary, Config{}, zerolog.Nop(), m)
	err := f.Deliver(context.Background(), rec)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets: quota exceeded")
	n.AssertExpectations(t)
	exposed := scrapeMetrics(t, m)
	assert.Contains(t, exposed, `feedback_sink_failures_total{sink="sheets"} 1`)
	assert.NotContains(t, exposed, `feedback_sink_failures_total{sink="notify"}`)
}

func TestDeliverNotifyFailureStillAppends(t *testing.T) {
	rec := testRecord()
	n := &mockNotifier{}
	n.On("Notify", mock.Anything, mock.Anything).Return(errors.New("chat not found")).Once()
	s := &mockRecordStore{}
	s.On("Append", mock.Anything, rec).Return(nil).Once()

	f := NewFanout(n, []RecordSink{{Name: "sheets", Store: s}}, summary, Config{}, zerolog.Nop(), nil)
	err := f.Deliver(context.Background(), rec)

	require.Error(t, err)
	s.AssertExpectations(t)
}

func TestDeliverCombinesErrors(t *testing.T) {
	rec := testRecord()
	n := &mockNotifier{}
	n.On("Notify", mock.Anything, mock.Anything).Return(errors.New("a")).Once()
	s1 := &mockRecordStore{}
	s1.On("Append", mock.Anything, rec).Return(errors.New("b")).Once()
	s2 := &mockRecordStore{}
	s2.On("Append", mock.Anything, rec).Return(nil).Once()

	f := NewFanout(n, []RecordSink{{Name: "sheets", Store: s1}, {Name: "postgres", Store: s2}}, summary, Config{}, zerolog.Nop(), nil)
	err := f.Deliver(context.Background(), rec)

	assert.Len(t, multierr.Errors(err), 2)
	s2.AssertExpectations(t)
}

func TestDeliverTimesOutSlowSink(t *testing.T) {
	rec := testRecord()
	n := &mockNotifier{}
	n.On("Notify", mock.Anything, mock.Anything).Return(nil).Once()
	slow := &blockingStore{}

	f := NewFanout(n, []RecordSink{{Name: "sheets", Store: slow}}, summary, Config{Timeout: 20 * time.Millisecond}, zerolog.Nop(), nil)

	start := time.Now()
	err := f.Deliver(context.Background(), rec)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int32(1), slow.calls.Load())
	n.AssertExpectations(t)
}

func TestDeliverWithoutNotifier(t *testing.T) {
	rec := testRecord()
	s := &mockRecordStore{}
	s.On("Append", mock.Anything, rec).Return(nil).Once()

	f := NewFanout(nil, []RecordSink{{Name: "sheets", Store: s}}, summary, Config{}, zerolog.Nop(), nil)

	assert.NoError(t, f.Deliver(context.Background(), rec))
	s.AssertExpectations(t)
}
