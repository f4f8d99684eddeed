package events

import (
	"context"
	"sync"

	"github.com/nikolchaa/resuma/internal/logger"
)

const defaultSubscriberBuffer = 256

// Broker fans events out to any number of subscribers. A subscriber that
// falls behind loses events rather than stalling the acquisition.
type Broker struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
}

// NewBroker creates a Broker whose subscriptions buffer up to buffer events.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Broker{subs: make(map[*Subscription]struct{}), buffer: buffer}
}

// Subscription is one subscriber's view of the broker.
type Subscription struct {
	ch     chan Event
	asset  string
	broker *Broker
	once   sync.Once
}

// Events returns the channel events are delivered on. It is closed when the
// subscription or the broker is closed.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Close detaches the subscription.
func (s *Subscription) Close() {
	s.broker.remove(s)
}

// Subscribe registers a subscriber. An empty asset receives every event.
func (b *Broker) Subscribe(asset string) *Subscription {
	s := &Subscription{ch: make(chan Event, b.buffer), asset: asset, broker: b}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(s.ch)
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

func (b *Broker) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		s.once.Do(func() { close(s.ch) })
	}
}

// Subscribers returns the number of attached subscribers.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Emit delivers e to every matching subscriber without blocking.
func (b *Broker) Emit(_ context.Context, e Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		if s.asset != "" && s.asset != e.Asset {
			continue
		}
		select {
		case s.ch <- e:
		default:
			logger.Debug("subscriber lagging, event dropped", logger.Fields{"event": e.Name()})
		}
	}
	return nil
}

// Close detaches every subscriber. Later subscriptions are closed immediately.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for s := range b.subs {
		delete(b.subs, s)
		s.once.Do(func() { close(s.ch) })
	}
}
