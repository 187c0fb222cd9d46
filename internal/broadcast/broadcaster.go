package broadcast

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// DefaultBufferSize is the channel buffer for each subscriber
const DefaultBufferSize = 64

type subscription[T any] struct {
	ch   chan T
	done chan struct{}
}

// Broadcaster delivers published values to every current subscriber
type Broadcaster[T any] struct {
	mu          sync.RWMutex
	subscribers map[string]*subscription[T]
	bufferSize  int
	closed      bool
	logger      *slog.Logger
}

// New creates a broadcaster. Pass nil logger for default, bufferSize <= 0 for DefaultBufferSize.
func New[T any](name string, bufferSize int, logger *slog.Logger) *Broadcaster[T] {
	if logger == nil {
		logger = slog.Default()
	}
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Broadcaster[T]{
		subscribers: make(map[string]*subscription[T]),
		bufferSize:  bufferSize,
		logger:      logger.With("component", "broadcaster", "topic", name),
	}
}

// Subscribe registers a subscriber and returns its channel and subscription ID.
// The subscription is cleaned up when ctx is cancelled, on Unsubscribe or on
// Close. Subscribing to a closed broadcaster returns an already-closed channel.
func (b *Broadcaster[T]) Subscribe(ctx context.Context) (<-chan T, string) {
	subID := uuid.New().String()
	ch := make(chan T, b.bufferSize)
	sub := &subscription[T]{ch: ch, done: make(chan struct{})}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, subID
	}
	b.subscribers[subID] = sub
	b.mu.Unlock()

	b.logger.Debug("subscriber added", "sub_id", subID)

	go func() {
		select {
		case <-ctx.Done():
			b.Unsubscribe(subID)
		case <-sub.done:
		}
	}()

	return ch, subID
}

// Publish sends v to all subscribers. Non-blocking: full subscribers miss v.
func (b *Broadcaster[T]) Publish(v T) {
	// Sends happen under the read lock so Unsubscribe cannot close a
	// channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, sub := range b.subscribers {
		select {
		case sub.ch <- v:
		default:
			b.logger.Debug("dropped value for slow subscriber", "sub_id", id)
		}
	}
}

// Unsubscribe removes a subscription and closes its channel
func (b *Broadcaster[T]) Unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subscribers[subID]
	if !ok {
		return
	}
	delete(b.subscribers, subID)
	sub.close()

	b.logger.Debug("subscriber removed", "sub_id", subID)
}

// SubscriberCount returns the number of active subscribers
func (b *Broadcaster[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes every subscriber channel. Later Publish calls are no-ops.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subscribers {
		sub.close()
		delete(b.subscribers, id)
	}
}

func (s *subscription[T]) close() {
	close(s.ch)
	close(s.done)
}
