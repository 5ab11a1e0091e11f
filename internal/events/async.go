package events

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Defaults of the asynchronous publisher.
const (
	DefaultQueueSize      = 256
	DefaultPublishTimeout = 5 * time.Second
)

// ErrQueueFull is returned when an event is dropped because the queue is full.
var ErrQueueFull = errors.New("event queue is full")

// ErrClosed is returned when publishing on a closed publisher.
var ErrClosed = errors.New("publisher is closed")

type async struct {
	next    Publisher
	log     logrus.FieldLogger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Event
	done   chan struct{}
}

// Async returns a Publisher that hands the events to one background worker and never waits on next.
// Events keep their publishing order. Each event gets its own timeout, detached from the caller context.
func Async(next Publisher, log logrus.FieldLogger, size int, timeout time.Duration) Publisher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}

	p := &async{
		next:    next,
		log:     log,
		timeout: timeout,
		queue:   make(chan Event, size),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *async) Publish(_ context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- e:
		return nil
	default:
		return errors.Wrapf(ErrQueueFull, "dropping %s event", e.Type)
	}
}

func (p *async) run() {
	defer close(p.done)

	for e := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.next.Publish(ctx, e)
		cancel()

		if err != nil {
			p.log.WithError(err).WithField("event", e.Type).Warn("could not publish todo event")
		}
	}
}

// Close flushes the queued events and closes the underlying publisher.
func (p *async) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.next.Close()
}
