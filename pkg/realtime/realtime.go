// Package realtime tells subscribers that something changed on a board.
// Events carry no payload beyond what changed; subscribers are expected to
// refetch. Delivery is best effort: slow subscribers miss events.
package realtime

import (
	"context"
	"fmt"

	"github.com/printnow/portal/pkg/config"
	"github.com/redis/go-redis/v9"
)

// Event is a board change notification. Events with a CustomerID tell a
// customer that the boards shared with them changed.
type Event struct {
	BoardID    int64  `json:"boardId"`
	CustomerID int64  `json:"customerId,omitempty"`
	Entity     string `json:"entity"`
	Action     string `json:"action"`
}

// Topic is what a subscription listens to.
type Topic struct {
	Kind string
	ID   int64
}

// BoardTopic returns the topic of a board's events.
func BoardTopic(id int64) Topic {
	return Topic{Kind: "board", ID: id}
}

// CustomerTopic returns the topic of a customer's share events.
func CustomerTopic(id int64) Topic {
	return Topic{Kind: "customer", ID: id}
}

// Topic returns the topic ev is delivered on.
func (ev Event) Topic() Topic {
	if ev.CustomerID != 0 {
		return CustomerTopic(ev.CustomerID)
	}
	return BoardTopic(ev.BoardID)
}

// Broker fans out events to subscribers.
type Broker interface {
	// Publish notifies the subscribers of ev.Topic().
	Publish(ctx context.Context, ev Event) error
	// Subscribe returns a channel of events for a topic and a function
	// that releases the subscription.
	Subscribe(topic Topic) (<-chan Event, func())
	// Close stops the broker and closes every subscription.
	Close() error
}

// New returns the broker selected by the realtime section of cfg.
func New(ctx context.Context, cfg *config.Config) (Broker, error) {
	if cfg == nil {
		return nil, config.ErrNilConfig
	}

	switch cfg.Realtime.Driver {
	case "", "memory":
		return NewMemoryBroker(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return NewRedisBroker(ctx, client, cfg.Realtime.Channel), nil
	default:
		return nil, fmt.Errorf("unknown realtime driver %q", cfg.Realtime.Driver)
	}
}
