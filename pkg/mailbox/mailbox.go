// Package mailbox provides an unbounded, ordered, multi-producer single-consumer
// conduit. Push never blocks; the consumer reads from Out.
package mailbox

import "sync"

type Mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	// held is set while the pump owns an item the consumer has not taken.
	held bool

	signal chan struct{}
	out    chan T
	done   chan struct{}
	once   sync.Once
}

// New starts the delivery goroutine. Call Close to release it.
func New[T any]() *Mailbox[T] {
	m := &Mailbox[T]{
		signal: make(chan struct{}, 1),
		out:    make(chan T),
		done:   make(chan struct{}),
	}
	go m.pump()
	return m
}

// Push appends v. It returns false once the mailbox is closed.
func (m *Mailbox[T]) Push(v T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, v)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
	return true
}

// Out yields items in push order. It is closed after Close; items still
// buffered at that point are discarded.
func (m *Mailbox[T]) Out() <-chan T {
	return m.out
}

// Len reports the number of items waiting for the consumer, including the one
// the pump is offering on Out. It may count an item for the instant after the
// consumer received it.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held {
		return len(m.items) + 1
	}
	return len(m.items)
}

func (m *Mailbox[T]) Close() {
	m.once.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.items = nil
		m.held = false
		m.mu.Unlock()
		close(m.done)
	})
}

func (m *Mailbox[T]) pump() {
	defer close(m.out)
	for {
		m.mu.Lock()
		if len(m.items) == 0 {
			m.mu.Unlock()
			select {
			case <-m.signal:
				continue
			case <-m.done:
				return
			}
		}
		v := m.items[0]
		var zero T
		m.items[0] = zero
		m.items = m.items[1:]
		m.held = true
		m.mu.Unlock()

		select {
		case m.out <- v:
			m.mu.Lock()
			m.held = false
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}
