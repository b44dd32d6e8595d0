package attribute

import (
	"sync"

	"github.com/Alwanly/attribute-poll/pkg/mailbox"
)

// Subscription is one consumer's view of the store's change stream. Events
// are buffered without bound, so publishing never waits on the consumer.
type Subscription struct {
	filter   Filter
	box      *mailbox.Mailbox[Event]
	notifier *Notifier
}

// Changes yields events in publication order. It is closed by Close.
func (s *Subscription) Changes() <-chan Event {
	return s.box.Out()
}

// Pending reports how many events are buffered for this subscriber.
func (s *Subscription) Pending() int {
	return s.box.Len()
}

func (s *Subscription) Close() {
	s.notifier.remove(s)
	s.box.Close()
}

// Notifier fans store events out to subscriptions. Store implementations
// embed it and call Publish while holding their write lock so that every
// subscriber observes mutations in the same order.
type Notifier struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func (n *Notifier) Subscribe(filter Filter) *Subscription {
	s := &Subscription{
		filter:   filter,
		box:      mailbox.New[Event](),
		notifier: n,
	}
	n.mu.Lock()
	if n.subs == nil {
		n.subs = make(map[*Subscription]struct{})
	}
	n.subs[s] = struct{}{}
	n.mu.Unlock()
	return s
}

func (n *Notifier) Publish(events ...Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for s := range n.subs {
		for _, ev := range events {
			if s.filter == nil || s.filter(ev) {
				s.box.Push(ev)
			}
		}
	}
}

func (n *Notifier) remove(s *Subscription) {
	n.mu.Lock()
	delete(n.subs, s)
	n.mu.Unlock()
}
