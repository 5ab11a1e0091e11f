package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/codestube/bot/internal/events"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type writer struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *writer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *writer) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublish(t *testing.T) {
	w := &writer{}
	p := events.NewKafkaWithWriter(w)

	at := time.Date(2025, 11, 30, 18, 0, 0, 0, time.UTC)
	err := p.Publish(context.Background(), events.Event{
		Type:    events.TypeCleared,
		UserID:  "alice",
		GuildID: "g1",
		Count:   3,
		At:      at,
	})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "alice", string(msg.Key))
	assert.Equal(t, []kafka.Header{{Key: "type", Value: []byte("todo.cleared")}}, msg.Headers)
	assert.JSONEq(t, `{"type":"todo.cleared","user_id":"alice","guild_id":"g1","count":3,"at":"2025-11-30T18:00:00Z"}`, string(msg.Value))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublishDefaultsTimestamp(t *testing.T) {
	w := &writer{}
	p := events.NewKafkaWithWriter(w)

	require.NoError(t, p.Publish(context.Background(), events.Event{Type: events.TypeCreated, TodoID: "42", UserID: "bob"}))

	var e events.Event
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &e))
	assert.WithinDuration(t, time.Now(), e.At, 2*time.Second)
}

func TestKafkaPublishError(t *testing.T) {
	p := events.NewKafkaWithWriter(&writer{err: errors.New("leader not available")})

	err := p.Publish(context.Background(), events.Event{Type: events.TypeDeleted, UserID: "bob"})
	assert.EqualError(t, err, "could not publish todo.deleted event: leader not available")
}

func TestNoop(t *testing.T) {
	p := events.Noop()
	assert.NoError(t, p.Publish(context.Background(), events.Event{Type: events.TypeCreated}))
	assert.NoError(t, p.Close())
}

type stalledWriter struct {
	writer
	deadlines chan bool
}

func (w *stalledWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	<-ctx.Done()
	_, ok := ctx.Deadline()
	w.deadlines <- ok
	return ctx.Err()
}

func TestAsyncKeepsOrderAndFlushesOnClose(t *testing.T) {
	w := &writer{}
	log, _ := logtest.NewNullLogger()
	p := events.Async(events.NewKafkaWithWriter(w), log, 0, 0)

	for _, typ := range []string{events.TypeCreated, events.TypeCompleted, events.TypeDeleted} {
		require.NoError(t, p.Publish(context.Background(), events.Event{Type: typ, UserID: "alice"}))
	}
	require.NoError(t, p.Close())

	require.Len(t, w.messages, 3)
	for i, typ := range []string{events.TypeCreated, events.TypeCompleted, events.TypeDeleted} {
		assert.Equal(t, typ, string(w.messages[i].Headers[0].Value))
	}
	assert.True(t, w.closed)

	assert.ErrorIs(t, p.Publish(context.Background(), events.Event{Type: events.TypeCreated}), events.ErrClosed)
	assert.NoError(t, p.Close())
}

func TestAsyncDoesNotWaitOnStalledBroker(t *testing.T) {
	w := &stalledWriter{deadlines: make(chan bool, 2)}
	log, hook := logtest.NewNullLogger()
	p := events.Async(events.NewKafkaWithWriter(w), log, 1, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	require.NoError(t, p.Publish(ctx, events.Event{Type: events.TypeCreated, UserID: "alice"}))
	cancel()
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	select {
	case hasDeadline := <-w.deadlines:
		assert.True(t, hasDeadline)
	case <-time.After(2 * time.Second):
		t.Fatal("event was never written")
	}

	require.NoError(t, p.Close())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "could not publish todo event", hook.LastEntry().Message)
	assert.Equal(t, events.TypeCreated, hook.LastEntry().Data["event"])
}

func TestAsyncDropsWhenQueueIsFull(t *testing.T) {
	w := &stalledWriter{deadlines: make(chan bool, 4)}
	log, _ := logtest.NewNullLogger()
	p := events.Async(events.NewKafkaWithWriter(w), log, 1, 100*time.Millisecond)
	defer p.Close()

	var dropped error
	for i := 0; i < 3 && dropped == nil; i++ {
		dropped = p.Publish(context.Background(), events.Event{Type: events.TypeCleared, UserID: "alice"})
	}
	assert.ErrorIs(t, dropped, events.ErrQueueFull)
}
