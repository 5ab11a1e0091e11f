package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// Todo lifecycle event types.
const (
	TypeCreated   = "todo.created"
	TypeDeleted   = "todo.deleted"
	TypeCleared   = "todo.cleared"
	TypeCompleted = "todo.completed"
)

type (
	// An Event describes a committed change of the todo collection.
	Event struct {
		Type    string    `json:"type"`
		TodoID  string    `json:"todo_id,omitempty"`
		UserID  string    `json:"user_id"`
		GuildID string    `json:"guild_id,omitempty"`
		Count   int       `json:"count,omitempty"`
		At      time.Time `json:"at"`
	}

	// A Publisher sends lifecycle events to interested consumers.
	Publisher interface {
		Publish(ctx context.Context, e Event) error
		Close() error
	}

	// A Writer is the part of kafka.Writer used by the Kafka publisher.
	Writer interface {
		WriteMessages(ctx context.Context, msgs ...kafka.Message) error
		Close() error
	}

	kafkaPublisher struct {
		w Writer
	}

	noop struct{}
)

// NewKafka returns a Publisher writing to the given topic.
// Messages are keyed by user so that the events of a user stay ordered on one partition.
func NewKafka(brokers []string, topic string) Publisher {
	return NewKafkaWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	})
}

// NewKafkaWithWriter returns a Publisher using the given writer.
func NewKafkaWithWriter(w Writer) Publisher {
	return &kafkaPublisher{w: w}
}

// Noop returns a Publisher that drops every event.
func Noop() Publisher {
	return noop{}
}

func (p *kafkaPublisher) Publish(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "could not encode event")
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.UserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	})
	return errors.Wrapf(err, "could not publish %s event", e.Type)
}

func (p *kafkaPublisher) Close() error {
	return p.w.Close()
}

func (noop) Publish(context.Context, Event) error {
	return nil
}

func (noop) Close() error {
	return nil
}
