package realtime

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/timmy/memebazaar/internal/domain"
	"github.com/timmy/memebazaar/internal/logger"
)

// Subscription receives the events of the global topic plus every room it has joined.
type Subscription struct {
	id        string
	hub       *Hub
	send      chan Event
	closeOnce sync.Once
}

// ID identifies the subscription in logs.
func (s *Subscription) ID() string { return s.id }

// C is closed when the subscription is closed or the hub stops.
func (s *Subscription) C() <-chan Event { return s.send }

// Join adds the subscription to a room topic.
func (s *Subscription) Join(topic string) { s.hub.changeMembership(s, topic, true) }

// Leave removes the subscription from a room topic.
func (s *Subscription) Leave(topic string) { s.hub.changeMembership(s, topic, false) }

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		select {
		case s.hub.unregister <- s:
		case <-s.hub.done:
		}
	})
}

type roomQuery struct {
	topic string
	reply chan int
}

type membership struct {
	sub   *Subscription
	topic string
	join  bool
}

// Hub tracks live subscriptions and their rooms, and delivers events to them.
// All registry state is owned by the Run loop.
type Hub struct {
	subs  map[*Subscription]struct{}
	rooms map[string]map[*Subscription]struct{}

	register   chan *Subscription
	unregister chan *Subscription
	membership chan membership
	roomQuery  chan roomQuery
	broadcast  chan Event

	sendBuffer int
	count      atomic.Int64
	done       chan struct{}
	stopOnce   sync.Once
}

// NewHub creates a hub whose subscriptions buffer up to sendBuffer events.
func NewHub(sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &Hub{
		subs:       make(map[*Subscription]struct{}),
		rooms:      make(map[string]map[*Subscription]struct{}),
		register:   make(chan *Subscription),
		unregister: make(chan *Subscription),
		membership: make(chan membership),
		roomQuery:  make(chan roomQuery),
		broadcast:  make(chan Event, 1024),
		sendBuffer: sendBuffer,
		done:       make(chan struct{}),
	}
}

// Run processes registrations and deliveries until ctx is cancelled,
// then closes every subscription.
func (h *Hub) Run(ctx context.Context) {
	ctx = logger.SetComponent(ctx, "realtime")
	logger.CtxInfo(ctx, "Realtime hub started")

	for {
		select {
		case <-ctx.Done():
			h.stop()
			logger.CtxInfo(ctx, "Realtime hub stopped")
			return

		case sub := <-h.register:
			h.subs[sub] = struct{}{}
			h.count.Add(1)
			logger.CtxDebug(ctx, "Subscription registered: id=%s, total=%d", sub.id, len(h.subs))

		case sub := <-h.unregister:
			h.remove(sub)
			logger.CtxDebug(ctx, "Subscription unregistered: id=%s, total=%d", sub.id, len(h.subs))

		case m := <-h.membership:
			h.applyMembership(m)

		case q := <-h.roomQuery:
			q.reply <- len(h.rooms[q.topic])

		case evt := <-h.broadcast:
			h.deliver(ctx, evt)
		}
	}
}

// Subscribe registers a new subscription on the global topic.
// After the hub has stopped the returned subscription is already closed.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		id:   uuid.New().String(),
		hub:  h,
		send: make(chan Event, h.sendBuffer),
	}
	select {
	case h.register <- sub:
	case <-h.done:
		close(sub.send)
	}
	return sub
}

// Deliver queues evt for fan-out without blocking. Events are dropped when the
// hub inbox is full or the hub has stopped.
func (h *Hub) Deliver(evt Event) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.broadcast <- evt:
		return true
	default:
		logger.Warn("Realtime hub inbox full, dropping event: event=%s, topic=%s", evt.Event, evt.Topic)
		return false
	}
}

// ConnectionCount returns the number of live subscriptions.
func (h *Hub) ConnectionCount() int {
	return int(h.count.Load())
}

// RoomSize returns the number of subscriptions in a room topic.
func (h *Hub) RoomSize(topic string) int {
	q := roomQuery{topic: topic, reply: make(chan int, 1)}
	select {
	case h.roomQuery <- q:
		return <-q.reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) changeMembership(sub *Subscription, topic string, join bool) {
	if topic == "" || topic == domain.TopicAll {
		return
	}
	select {
	case h.membership <- membership{sub: sub, topic: topic, join: join}:
	case <-h.done:
	}
}

func (h *Hub) applyMembership(m membership) {
	if _, ok := h.subs[m.sub]; !ok {
		return
	}
	members := h.rooms[m.topic]
	if m.join {
		if members == nil {
			members = make(map[*Subscription]struct{})
			h.rooms[m.topic] = members
		}
		members[m.sub] = struct{}{}
		return
	}
	if members != nil {
		delete(members, m.sub)
		if len(members) == 0 {
			delete(h.rooms, m.topic)
		}
	}
}

func (h *Hub) deliver(ctx context.Context, evt Event) {
	var targets map[*Subscription]struct{}
	if evt.Topic == "" || evt.Topic == domain.TopicAll {
		targets = h.subs
	} else {
		targets = h.rooms[evt.Topic]
	}

	for sub := range targets {
		select {
		case sub.send <- evt:
		default:
			logger.FromContext(ctx).WithFields(logger.Fields{
				logger.FieldClientID: sub.id,
				logger.FieldEvent:    evt.Event,
			}).Warn("Subscriber buffer full, dropping event")
		}
	}
}

func (h *Hub) remove(sub *Subscription) {
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	h.count.Add(-1)
	for topic, members := range h.rooms {
		delete(members, sub)
		if len(members) == 0 {
			delete(h.rooms, topic)
		}
	}
	close(sub.send)
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		for sub := range h.subs {
			h.remove(sub)
		}
	})
}
