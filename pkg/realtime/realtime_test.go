package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/matryer/is"
	"github.com/printnow/portal/pkg/config"
	"github.com/redis/go-redis/v9"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("subscription closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestMemoryBroker(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	b := NewMemoryBroker()

	one, release := b.Subscribe(BoardTopic(1))
	two, releaseTwo := b.Subscribe(BoardTopic(2))
	defer releaseTwo()
	is.Equal(b.Subscribers(BoardTopic(1)), 1)

	is.NoErr(b.Publish(ctx, Event{BoardID: 1, Entity: "card", Action: "created"}))
	ev := receive(t, one)
	is.Equal(ev.Entity, "card")

	select {
	case <-two:
		t.Fatal("board 2 got an event for board 1")
	default:
	}

	release()
	release()
	is.Equal(b.Subscribers(BoardTopic(1)), 0)
	_, ok := <-one
	is.True(!ok)
}

func TestMemoryBrokerTopics(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	b := NewMemoryBroker()

	board, release := b.Subscribe(BoardTopic(7))
	defer release()
	customer, releaseCustomer := b.Subscribe(CustomerTopic(7))
	defer releaseCustomer()

	shared := Event{BoardID: 7, CustomerID: 7, Entity: "customer", Action: "assigned"}
	is.Equal(shared.Topic(), CustomerTopic(7))
	is.NoErr(b.Publish(ctx, shared))
	is.Equal(receive(t, customer), shared)

	select {
	case <-board:
		t.Fatal("board subscriber got a customer event")
	default:
	}

	is.NoErr(b.Publish(ctx, Event{BoardID: 7, Entity: "card", Action: "created"}))
	is.Equal(receive(t, board).Entity, "card")
	is.Equal(len(customer), 0)
}

func TestMemoryBrokerDoesNotBlock(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	b := NewMemoryBroker()

	ch, release := b.Subscribe(BoardTopic(1))
	defer release()
	for i := 0; i < subscriberBuffer*3; i++ {
		is.NoErr(b.Publish(ctx, Event{BoardID: 1}))
	}
	is.Equal(len(ch), subscriberBuffer)
}

func TestMemoryBrokerClose(t *testing.T) {
	is := is.New(t)
	b := NewMemoryBroker()

	ch, release := b.Subscribe(BoardTopic(1))
	is.NoErr(b.Close())
	_, ok := <-ch
	is.True(!ok)
	release()

	late, _ := b.Subscribe(BoardTopic(1))
	_, ok = <-late
	is.True(!ok)
}

func TestRedisBroker(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	mr := miniredis.RunT(t)

	a := NewRedisBroker(ctx, redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:boards")
	defer a.Close() //nolint:errcheck
	b := NewRedisBroker(ctx, redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:boards")
	defer b.Close() //nolint:errcheck

	for _, br := range []*RedisBroker{a, b} {
		select {
		case <-br.Ready():
		case <-time.After(2 * time.Second):
			t.Fatal("broker did not subscribe")
		}
	}

	ch, release := b.Subscribe(BoardTopic(42))
	defer release()

	is.NoErr(a.Publish(ctx, Event{BoardID: 42, Entity: "column", Action: "reordered"}))
	ev := receive(t, ch)
	is.Equal(ev, Event{BoardID: 42, Entity: "column", Action: "reordered"})
}

func TestNew(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()

	_, err := New(ctx, nil)
	is.Equal(err, config.ErrNilConfig)

	cfg := config.DefaultConfig()
	br, err := New(ctx, cfg)
	is.NoErr(err)
	_, ok := br.(*MemoryBroker)
	is.True(ok)

	cfg.Realtime.Driver = "carrier-pigeon"
	_, err = New(ctx, cfg)
	is.True(err != nil)

	mr := miniredis.RunT(t)
	cfg.Realtime.Driver = "redis"
	cfg.Redis.Addr = mr.Addr()
	br, err = New(ctx, cfg)
	is.NoErr(err)
	is.NoErr(br.Close())
}
