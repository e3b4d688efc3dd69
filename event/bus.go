package event

import "sync"

// Bus fans domain events and diagnostics out to subscribers. Dispatch is
// synchronous and ordered; subscription is safe from any goroutine.
type Bus struct {
	mu      sync.RWMutex
	nextID  int
	outSubs map[int]func(Event)
	errSubs map[int]func(Diagnostic)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		outSubs: make(map[int]func(Event)),
		errSubs: make(map[int]func(Diagnostic)),
	}
}

// SubscribeOut registers a domain event subscriber and returns an
// unsubscribe function. Unsubscribing twice is a no-op.
func (b *Bus) SubscribeOut(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.outSubs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.outSubs, id)
	}
}

// SubscribeErr registers a diagnostic subscriber and returns an unsubscribe
// function.
func (b *Bus) SubscribeErr(fn func(Diagnostic)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.errSubs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.errSubs, id)
	}
}

// Out publishes a domain event to every Out subscriber.
func (b *Bus) Out(e Event) {
	b.mu.RLock()
	subs := make([]func(Event), 0, len(b.outSubs))
	for _, fn := range b.outSubs {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}

// Err publishes a diagnostic to every Err subscriber.
func (b *Bus) Err(d Diagnostic) {
	b.mu.RLock()
	subs := make([]func(Diagnostic), 0, len(b.errSubs))
	for _, fn := range b.errSubs {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(d)
	}
}
