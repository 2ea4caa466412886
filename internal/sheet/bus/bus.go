// Package bus is a minimal in-process publish/subscribe hub. It decouples the
// save lifecycle from whatever is rendering status: subscribers get events
// synchronously, in subscription order, and nothing is retained for late
// subscribers.
package bus

import "sync"

// Save lifecycle events published by the autosave scheduler.
const (
	EventSaveStart   = "save:start"
	EventSaveSuccess = "save:success"
	EventSaveError   = "save:error"
)

type Handler func(payload any)

type subscription struct {
	id      int
	handler Handler
}

type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string][]subscription
}

func New() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// On registers handler for event and returns a token for Off. Go function
// values are not comparable, so unsubscription is by token rather than by
// handler identity.
func (b *Bus) On(event string, handler Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs[event] = append(b.subs[event], subscription{id: b.nextID, handler: handler})
	return b.nextID
}

// Off removes the subscription identified by token. Unknown tokens are a
// no-op.
func (b *Bus) Off(event string, token int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[event]
	for i, s := range subs {
		if s.id == token {
			b.subs[event] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Emit calls every handler subscribed to event, synchronously and in
// subscription order. Handlers registered during Emit do not see the current
// event.
func (b *Bus) Emit(event string, payload any) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs[event]))
	copy(subs, b.subs[event])
	b.mu.Unlock()

	for _, s := range subs {
		s.handler(payload)
	}
}
