package wall

import (
	"sync"

	"camera-wall-go/internal/slots"
)

// mailbox carries player events onto the owner goroutine. post never blocks
// and never drops, so players may call it while the owner is inside
// Player.Stop waiting for them.
type mailbox struct {
	mu     sync.Mutex
	queue  []slots.Event
	notify chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

func (m *mailbox) post(ev slots.Event) {
	m.mu.Lock()
	m.queue = append(m.queue, ev)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *mailbox) drain() []slots.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.queue
	m.queue = nil
	return out
}
