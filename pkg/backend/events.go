package backend

import (
	"context"
	"sync"

	"github.com/printnow/portal/pkg/proto"
	"github.com/printnow/portal/pkg/realtime"
)

// Share event actions published on a customer's topic.
const (
	actionAssigned   = "assigned"
	actionUnassigned = "unassigned"
)

// SubscribeBoard subscribes the caller to change events of a board they can
// access. The returned function ends the subscription.
func (d *Backend) SubscribeBoard(ctx context.Context, user proto.User, boardID int64) (<-chan realtime.Event, func(), error) {
	if _, _, err := d.boardAccess(ctx, d.db, user, boardID); err != nil {
		return nil, nil, err
	}
	ch, cancel := d.broker.Subscribe(realtime.BoardTopic(boardID))
	return ch, cancel, nil
}

// SubscribePortal subscribes to change events of every board shared with
// the customer behind an access code. Boards shared or unshared while the
// subscription is open are followed. The channel stays open until the
// returned function is called or the broker closes.
func (d *Backend) SubscribePortal(ctx context.Context, code string) (<-chan realtime.Event, func(), error) {
	c, err := d.customerByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	s := &portalStream{
		broker: d.broker,
		out:    make(chan realtime.Event, 16),
		done:   make(chan struct{}),
		boards: map[int64]func(){},
	}
	// Subscribe to share changes first so none is missed between listing
	// the boards and following them.
	shares, release := d.broker.Subscribe(realtime.CustomerTopic(c.ID))
	s.release = release
	s.wg.Add(1)
	go s.follow(shares)

	ids, err := d.PortalBoardIDs(ctx, code)
	if err != nil {
		s.close()
		return nil, nil, err
	}
	for _, id := range ids {
		s.watch(id)
	}

	go func() {
		s.wg.Wait()
		close(s.out)
	}()
	return s.out, s.close, nil
}

// portalStream merges the events of the boards shared with one customer.
type portalStream struct {
	broker  realtime.Broker
	out     chan realtime.Event
	done    chan struct{}
	release func()
	wg      sync.WaitGroup
	once    sync.Once

	mu     sync.Mutex
	boards map[int64]func()
}

func (s *portalStream) send(ev realtime.Event) {
	select {
	case s.out <- ev:
	default:
	}
}

// forward copies board events until the board subscription ends.
func (s *portalStream) forward(ch <-chan realtime.Event) {
	defer s.wg.Done()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			s.send(ev)
		case <-s.done:
			return
		}
	}
}

// follow tracks share changes of the customer.
func (s *portalStream) follow(ch <-chan realtime.Event) {
	defer s.wg.Done()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			switch ev.Action {
			case actionAssigned:
				s.watch(ev.BoardID)
			case actionUnassigned:
				s.unwatch(ev.BoardID)
			}
			s.send(ev)
		case <-s.done:
			return
		}
	}
}

func (s *portalStream) watch(boardID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return
	default:
	}
	if _, ok := s.boards[boardID]; ok {
		return
	}
	ch, cancel := s.broker.Subscribe(realtime.BoardTopic(boardID))
	s.boards[boardID] = cancel
	s.wg.Add(1)
	go s.forward(ch)
}

func (s *portalStream) unwatch(boardID int64) {
	s.mu.Lock()
	cancel, ok := s.boards[boardID]
	delete(s.boards, boardID)
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

func (s *portalStream) close() {
	s.once.Do(func() {
		s.mu.Lock()
		close(s.done)
		boards := s.boards
		s.boards = map[int64]func(){}
		s.mu.Unlock()
		for _, cancel := range boards {
			cancel()
		}
		s.release()
	})
}
