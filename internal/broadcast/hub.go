// Package broadcast fans position and alert events out to live dashboard
// subscribers. Delivery is best-effort: a subscriber that cannot accept an
// event is dropped rather than waited on, so fan-out never stalls the
// ingestion path.
package broadcast

import (
	"log"
	"sync"
)

// sendBuffer is how many events a subscriber may fall behind before it is
// considered dead.
const sendBuffer = 256

// Subscriber is one live broadcast target. Events arrive on Events() as
// pre-encoded JSON messages; the channel is closed when the subscriber is
// dropped or unsubscribed.
type Subscriber struct {
	mu     sync.Mutex
	events chan []byte
	closed bool
}

// Events returns the subscriber's delivery channel.
func (s *Subscriber) Events() <-chan []byte { return s.events }

// Close marks the subscriber dead and closes its channel. Safe to call more
// than once; the hub reaps closed subscribers on the next publish sweep.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}

// send attempts a non-blocking delivery. It reports false when the
// subscriber is closed or its buffer is full.
func (s *Subscriber) send(msg []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.events <- msg:
		return true
	default:
		return false
	}
}

// Hub owns the live subscriber set. The set is mutated from two directions,
// the publishing pipeline and subscriber lifecycle events, so it sits
// behind a mutex; the lock is never held across a delivery to an individual
// subscriber's network connection.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscriber]bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscriber]bool)}
}

// Subscribe registers a new receiver. The initial message, when non-nil, is
// queued first so a new dashboard starts from the current snapshot instead
// of replaying history.
func (h *Hub) Subscribe(initial []byte) *Subscriber {
	sub := &Subscriber{events: make(chan []byte, sendBuffer)}
	if initial != nil {
		sub.events <- initial
	}
	h.mu.Lock()
	h.subs[sub] = true
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the receiver and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
	sub.Close()
}

// Publish delivers msg to every live subscriber. Subscribers that fail the
// delivery, because they are closed or hopelessly behind, are removed from
// the set as part of the same sweep.
func (h *Hub) Publish(msg []byte) {
	var dead []*Subscriber

	h.mu.Lock()
	for sub := range h.subs {
		if !sub.send(msg) {
			dead = append(dead, sub)
		}
	}
	for _, sub := range dead {
		delete(h.subs, sub)
	}
	remaining := len(h.subs)
	h.mu.Unlock()

	for _, sub := range dead {
		sub.Close()
	}
	if len(dead) > 0 {
		log.Printf("Dropped %d broken subscriber(s), %d remaining", len(dead), remaining)
	}
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
