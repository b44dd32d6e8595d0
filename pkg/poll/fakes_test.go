package poll

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Alwanly/attribute-poll/pkg/attribute"
	"github.com/Alwanly/attribute-poll/pkg/resolver"
)

const waitTimeout = time.Second

// fakePlatform hands every timer the engine creates to the test.
type fakePlatform struct {
	now    atomic.Uint64
	timers chan *fakeTimer
}

func newFakePlatform(now uint64) *fakePlatform {
	p := &fakePlatform{timers: make(chan *fakeTimer, 64)}
	p.now.Store(now)
	return p
}

func (p *fakePlatform) ClockSeconds() uint64 {
	return p.now.Load()
}

func (p *fakePlatform) NewTimer() Timer {
	t := &fakeTimer{armed: make(chan time.Duration, 1), fire: make(chan struct{})}
	p.timers <- t
	return t
}

func (p *fakePlatform) nextTimer(t *testing.T) *fakeTimer {
	t.Helper()
	select {
	case tm := <-p.timers:
		return tm
	case <-time.After(waitTimeout):
		t.Fatal("engine did not start a new iteration")
	}
	return nil
}

func (p *fakePlatform) assertNoIteration(t *testing.T) {
	t.Helper()
	select {
	case <-p.timers:
		t.Fatal("engine started an unexpected iteration")
	case <-time.After(50 * time.Millisecond):
	}
}

type fakeTimer struct {
	armed   chan time.Duration
	fire    chan struct{}
	once    sync.Once
	stopped atomic.Bool
}

func (t *fakeTimer) OnTimeout(d time.Duration) <-chan struct{} {
	t.armed <- d
	return t.fire
}

func (t *fakeTimer) Stop() {
	t.stopped.Store(true)
}

func (t *fakeTimer) Fire() {
	t.once.Do(func() { close(t.fire) })
}

func (t *fakeTimer) waitArmed(tb testing.TB) time.Duration {
	tb.Helper()
	select {
	case d := <-t.armed:
		return d
	case <-time.After(waitTimeout):
		tb.Fatal("timer was not armed")
	}
	return 0
}

func (t *fakeTimer) assertNotArmed(tb testing.TB) {
	tb.Helper()
	select {
	case d := <-t.armed:
		tb.Fatalf("timer unexpectedly armed for %s", d)
	case <-time.After(50 * time.Millisecond):
	}
}

// mockQueue is a testify mock of Queue.
type mockQueue struct {
	mock.Mock
}

func (m *mockQueue) String() string {
	return m.Called().String(0)
}

func (m *mockQueue) Queue(a attribute.ID, interval uint32, now uint64) bool {
	return m.Called(a, interval, now).Bool(0)
}

func (m *mockQueue) Requeue(a attribute.ID, now uint64) bool {
	return m.Called(a, now).Bool(0)
}

func (m *mockQueue) Upcoming() (attribute.ID, uint64, bool) {
	args := m.Called()
	return args.Get(0).(attribute.ID), args.Get(1).(uint64), args.Bool(2)
}

func (m *mockQueue) PopNext() (attribute.ID, uint32, bool) {
	args := m.Called()
	return args.Get(0).(attribute.ID), args.Get(1).(uint32), args.Bool(2)
}

func (m *mockQueue) Contains(a attribute.ID) bool {
	return m.Called(a).Bool(0)
}

func (m *mockQueue) Remove(a attribute.ID) bool {
	return m.Called(a).Bool(0)
}

func (m *mockQueue) Len() int {
	return m.Called().Int(0)
}

// fakeRegistry captures registered rules.
type fakeRegistry struct {
	mu    sync.Mutex
	rules map[attribute.Type]resolver.Rule
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{rules: make(map[attribute.Type]resolver.Rule)}
}

func (r *fakeRegistry) RegisterRule(t attribute.Type, _, get resolver.Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[t] = get
}

func (r *fakeRegistry) rule(t attribute.Type) resolver.Rule {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rules[t]
}

// recordingObserver counts engine outcomes.
type recordingObserver struct {
	mu       sync.Mutex
	polls    map[string]int
	commands map[string]int
	events   map[attribute.EventType]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		polls:    make(map[string]int),
		commands: make(map[string]int),
		events:   make(map[attribute.EventType]int),
	}
}

func (o *recordingObserver) PollCompleted(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.polls[result]++
}

func (o *recordingObserver) CommandHandled(kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.commands[kind]++
}

func (o *recordingObserver) EventHandled(t attribute.EventType) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events[t]++
}

func (o *recordingObserver) QueueLength(int) {}

func (o *recordingObserver) pollCount(result string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.polls[result]
}
