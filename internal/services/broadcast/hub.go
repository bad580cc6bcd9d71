// Package broadcast fans out reading and command events to live subscribers.
// Delivery is best-effort: nothing is queued for absent subscribers, and a
// slow subscriber loses events instead of back-pressuring the producer or
// the dispatch worker.
package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/agrimesh/fieldops/internal/metrics"
	"github.com/agrimesh/fieldops/internal/model"
)

const defaultBuffer = 64

// Subscriber is one live listener. Events() never closes; Done() closes when
// the subscriber is removed from the hub.
type Subscriber struct {
	id   uint64
	ch   chan model.Event
	done chan struct{}
	hub  *Hub
	once sync.Once
}

// Events returns the subscriber's event channel.
func (s *Subscriber) Events() <-chan model.Event { return s.ch }

// Done closes when Close has run.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// Close unsubscribes and releases all hub resources held for this
// subscriber. Safe to call at any time, including concurrently with a
// publish, and more than once.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		s.hub.remove(s.id)
		close(s.done)
	})
}

// Hub is the in-process pub/sub fan-out.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]*Subscriber
	nextID  uint64
	dropped atomic.Int64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*Subscriber)}
}

// Subscribe registers a listener with a bounded buffer. buffer <= 0 selects
// the default.
func (h *Hub) Subscribe(buffer int) *Subscriber {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	s := &Subscriber{
		id:   h.nextID,
		ch:   make(chan model.Event, buffer),
		done: make(chan struct{}),
		hub:  h,
	}
	h.subs[s.id] = s
	return s
}

// Publish delivers evt to every subscriber registered at the moment of the
// call. The subscriber set is snapshotted first, so a concurrent
// subscribe/unsubscribe is never observed mid-publish. A full buffer drops
// the event for that subscriber only.
func (h *Hub) Publish(evt model.Event) {
	h.mu.RLock()
	snapshot := make([]*Subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		snapshot = append(snapshot, s)
	}
	h.mu.RUnlock()

	for _, s := range snapshot {
		select {
		case <-s.done:
			// unsubscribed after the snapshot
		case s.ch <- evt:
		default:
			h.dropped.Add(1)
			metrics.EventsDropped.Inc()
		}
	}
}

// Dropped returns the number of events discarded on full buffers.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// SubscriberCount returns the current number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}
