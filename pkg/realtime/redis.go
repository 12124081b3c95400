package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// RedisBroker shares events between instances over a Redis pub/sub
// channel. Every instance delivers what it receives to its local
// subscribers.
type RedisBroker struct {
	client  *redis.Client
	channel string
	local   *MemoryBroker
	logger  *log.Logger
	cancel  context.CancelFunc
	done    chan struct{}
	ready   chan struct{}
}

var _ Broker = (*RedisBroker)(nil)

// NewRedisBroker starts a broker listening on channel. The broker owns
// client and closes it on Close.
func NewRedisBroker(ctx context.Context, client *redis.Client, channel string) *RedisBroker {
	ctx, cancel := context.WithCancel(ctx)
	b := &RedisBroker{
		client:  client,
		channel: channel,
		local:   NewMemoryBroker(),
		logger:  log.FromContext(ctx).WithPrefix("realtime"),
		cancel:  cancel,
		done:    make(chan struct{}),
		ready:   make(chan struct{}),
	}
	go b.run(ctx)
	return b
}

func (b *RedisBroker) run(ctx context.Context) {
	defer close(b.done)
	first := true
	for {
		sub := b.client.Subscribe(ctx, b.channel)
		if _, err := sub.Receive(ctx); err != nil {
			_ = sub.Close()
			if ctx.Err() != nil {
				return
			}
			b.logger.Error("failed to subscribe", "channel", b.channel, "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if first {
			close(b.ready)
			first = false
		}

		b.consume(ctx, sub.Channel())
		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}
	}
}

func (b *RedisBroker) consume(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				b.logger.Warn("subscription channel closed", "channel", b.channel)
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.logger.Error("unable to parse event", "err", err)
				continue
			}
			b.local.broadcast(ev)
		}
	}
}

// Ready is closed once the first subscription is established.
func (b *RedisBroker) Ready() <-chan struct{} {
	return b.ready
}

// Publish implements Broker.
func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err //nolint:wrapcheck
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish board event: %w", err)
	}
	return nil
}

// Subscribe implements Broker.
func (b *RedisBroker) Subscribe(topic Topic) (<-chan Event, func()) {
	return b.local.Subscribe(topic)
}

// Close implements Broker.
func (b *RedisBroker) Close() error {
	b.cancel()
	<-b.done
	_ = b.local.Close()
	if err := b.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err //nolint:wrapcheck
	}
	return nil
}
