package poll

import (
	"context"
	"fmt"
	"time"

	"github.com/Alwanly/attribute-poll/pkg/attribute"
)

// Platform supplies the engine's notion of time.
type Platform interface {
	// ClockSeconds returns monotonic seconds on the same scale as queue deadlines
	ClockSeconds() uint64
	NewTimer() Timer
}

// Timer is a one-shot timer owned by a single engine iteration.
type Timer interface {
	// OnTimeout returns a channel that is closed once d has elapsed
	OnTimeout(d time.Duration) <-chan struct{}
	// Stop releases the timer; a stopped timer never fires
	Stop()
}

// Queue orders attributes by their next eligible poll time. It holds at most
// one entry per attribute.
type Queue interface {
	fmt.Stringer
	// Queue inserts or replaces the entry for a with deadline now+interval
	// and reports whether it was newly inserted
	Queue(a attribute.ID, interval uint32, now uint64) bool
	// Requeue recomputes the deadline of an existing entry from its stored interval
	Requeue(a attribute.ID, now uint64) bool
	// Upcoming returns the earliest entry without removing it
	Upcoming() (attribute.ID, uint64, bool)
	// PopNext removes the earliest entry and returns it with its interval
	PopNext() (attribute.ID, uint32, bool)
	Contains(a attribute.ID) bool
	Remove(a attribute.ID) bool
	Len() int
}

// Watcher is a resumable source of attribute store changes.
type Watcher interface {
	Changes() <-chan attribute.Event
}

// Poller defines the control surface of a running poll engine
type Poller interface {
	// Start runs the engine in the background
	Start(ctx context.Context) error
	// Stop gracefully stops the engine
	Stop() error
	// Send enqueues a command; commands are processed in send order
	Send(cmd Command)
	// Pending reports commands not yet taken by the engine
	Pending() int
}

// Observer receives engine activity. Implementations must not block.
type Observer interface {
	PollCompleted(result string)
	CommandHandled(kind string)
	EventHandled(t attribute.EventType)
	QueueLength(n int)
}

const (
	PollMarked     = "marked"
	PollMarkFailed = "mark_failed"
	PollQueueEmpty = "queue_empty"
)

type nopObserver struct{}

func (nopObserver) PollCompleted(string)             {}
func (nopObserver) CommandHandled(string)            {}
func (nopObserver) EventHandled(attribute.EventType) {}
func (nopObserver) QueueLength(int)                  {}
