package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joao-fontenele/orderflow-placement/internal/domain"
)

var (
	ErrQueueFull        = errors.New("publish queue is full")
	ErrDispatcherClosed = errors.New("dispatcher is closed")
)

// Sender delivers one message synchronously. Producer is the Kafka Sender.
type Sender interface {
	Send(ctx context.Context, topic, key string, event any) error
}

type envelope struct {
	ctx   context.Context
	topic string
	event domain.OrderConfirmedEvent
}

// Dispatcher accepts order confirmed events and delivers them from a
// background goroutine. Delivery failures are logged and dropped.
type Dispatcher struct {
	sender  Sender
	queue   chan envelope
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(sender Sender, queueSize int, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		sender:  sender,
		queue:   make(chan envelope, queueSize),
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish enqueues event without waiting for delivery. The returned error only
// reports a failed submission.
func (d *Dispatcher) Publish(ctx context.Context, topic string, event domain.OrderConfirmedEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- envelope{ctx: context.WithoutCancel(ctx), topic: topic, event: event}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for env := range d.queue {
		d.deliver(env)
	}
}

func (d *Dispatcher) deliver(env envelope) {
	ctx, cancel := context.WithTimeout(env.ctx, d.timeout)
	defer cancel()

	if err := d.sender.Send(ctx, env.topic, env.event.OrderID, env.event); err != nil {
		d.logger.WarnContext(ctx, "publish warning", "error", err, "order_id", env.event.OrderID, "topic", env.topic)
		return
	}

	d.logger.InfoContext(ctx, "sent order confirmed event", "order_id", env.event.OrderID, "topic", env.topic)
}

// Close stops accepting events and waits until queued ones are delivered or
// ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
