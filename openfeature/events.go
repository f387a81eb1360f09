package openfeature

import "sync"

// Event is a provider lifecycle notification.
type Event string

// ProviderReady signals that the provider has flag data and can serve
// evaluations. It is emitted at most once per provider instance.
const ProviderReady Event = "PROVIDER_READY"

const (
	replayDepth    = 1
	extraBufferCap = 5
)

// EventSource broadcasts provider events to subscribers. The most recent
// event is replayed to late subscribers, so readiness is observable even
// when the subscription attaches after the fact. Delivery never blocks the
// emitter; instead TryEmit reports failure when a subscriber's buffer is
// full so the caller can retry later.
type EventSource struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
	last []Event // most recent events, at most replayDepth
}

func NewEventSource() *EventSource {
	return &EventSource{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a listener and returns its channel and an unsubscribe
// func. Previously emitted events within the replay window are delivered
// first. Unsubscribing closes the channel.
func (s *EventSource) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, replayDepth+extraBufferCap)

	s.mu.Lock()
	for _, e := range s.last {
		ch <- e
	}
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	unsub := func() {
		s.mu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, unsub
}

// TryEmit delivers the event to every subscriber without blocking. It is
// all-or-nothing: if any subscriber's buffer is full, no channel receives
// the event, the replay window is left untouched, and false is returned.
func (s *EventSource) TryEmit(e Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Subscribers only ever drain their channels, so a capacity check under
	// the lock is enough to make the second pass non-blocking.
	for ch := range s.subs {
		if len(ch) == cap(ch) {
			return false
		}
	}
	for ch := range s.subs {
		ch <- e
	}

	s.last = append(s.last, e)
	if len(s.last) > replayDepth {
		s.last = s.last[len(s.last)-replayDepth:]
	}
	return true
}
