package realtime

import (
	"context"
	"sync"
)

// subscriberBuffer is the number of events a subscriber may lag behind.
const subscriberBuffer = 8

// MemoryBroker is an in-process Broker.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[Topic]map[chan Event]struct{}
	closed bool
}

var _ Broker = (*MemoryBroker)(nil)

// NewMemoryBroker returns a new MemoryBroker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[Topic]map[chan Event]struct{})}
}

// Publish implements Broker. It never blocks.
func (b *MemoryBroker) Publish(_ context.Context, ev Event) error {
	b.broadcast(ev)
	return nil
}

func (b *MemoryBroker) broadcast(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[ev.Topic()] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe implements Broker.
func (b *MemoryBroker) Subscribe(topic Topic) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[chan Event]struct{})
	}
	b.subs[topic][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() { b.unsubscribe(topic, ch) })
	}
}

func (b *MemoryBroker) unsubscribe(topic Topic, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.subs[topic]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(b.subs, topic)
	}
}

// Subscribers returns the number of subscriptions to a topic.
func (b *MemoryBroker) Subscribers(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

// Close implements Broker.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id, subs := range b.subs {
		for ch := range subs {
			close(ch)
		}
		delete(b.subs, id)
	}
	return nil
}
