package poll

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alwanly/attribute-poll/pkg/attribute"
)

type runHarness struct {
	engine   *Engine
	platform *fakePlatform
	store    *attribute.MemoryStore
	queue    *Entries
	commands chan Command
	cancel   context.CancelFunc
	done     chan error
}

func startEngine(t *testing.T, cfg Config) *runHarness {
	t.Helper()
	store := attribute.NewMemoryStore()
	queue := NewEntries()
	platform := newFakePlatform(0)
	engine := NewEngine(platform, queue, store, newFakeRegistry(), cfg)

	sub := store.Subscribe(attribute.EventTypes(attribute.Updated, attribute.Deleted))
	ctx, cancel := context.WithCancel(context.Background())
	h := &runHarness{
		engine:   engine,
		platform: platform,
		store:    store,
		queue:    queue,
		commands: make(chan Command),
		cancel:   cancel,
		done:     make(chan error, 1),
	}
	go func() { h.done <- engine.Run(ctx, sub, h.commands) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(waitTimeout):
			t.Error("engine did not stop")
		}
		sub.Close()
	})
	return h
}

func (h *runHarness) send(t *testing.T, cmd Command) {
	t.Helper()
	select {
	case h.commands <- cmd:
	case <-time.After(waitTimeout):
		t.Fatalf("engine did not accept %s", cmd.Kind())
	}
}

func TestRun_IdleWithEmptyQueue(t *testing.T) {
	h := startEngine(t, Config{Backoff: 0, DefaultInterval: 0, PollMarkType: pollMarkType})

	timer := h.platform.nextTimer(t)
	timer.assertNotArmed(t)
	h.platform.assertNoIteration(t)

	h.cancel()
	select {
	case err := <-h.done:
		assert.ErrorIs(t, err, context.Canceled)
		// put it back for the cleanup
		h.done <- err
	case <-time.After(waitTimeout):
		t.Fatal("engine did not stop")
	}
	assert.True(t, timer.stopped.Load(), "the iteration timer is released on exit")
}

func TestRun_PollsWhenTimerFires(t *testing.T) {
	h := startEngine(t, Config{Backoff: 0, DefaultInterval: 0, PollMarkType: pollMarkType})
	a, err := h.store.Add(h.store.Root(), typeLevel, uint32(42), nil)
	require.NoError(t, err)

	first := h.platform.nextTimer(t)
	h.send(t, RegisterCommand{Attribute: a, Interval: 10})

	second := h.platform.nextTimer(t)
	assert.True(t, first.stopped.Load(), "a superseded timer is stopped")
	assert.Equal(t, 10*time.Second, second.waitArmed(t))

	h.platform.now.Store(10)
	second.Fire()

	third := h.platform.nextTimer(t)
	assert.Equal(t, 10*time.Second, third.waitArmed(t))

	mark, err := h.store.ChildByType(a, pollMarkType)
	require.NoError(t, err)
	assert.NotEqual(t, attribute.InvalidID, mark)
}

func TestRun_RegisterThenDeregisterLeavesNoTimer(t *testing.T) {
	h := startEngine(t, Config{PollMarkType: pollMarkType})
	a := attribute.ID(22)

	h.platform.nextTimer(t)
	h.send(t, RegisterCommand{Attribute: a, Interval: 22})
	armed := h.platform.nextTimer(t)
	armed.waitArmed(t)

	h.send(t, DeregisterCommand{Attribute: a})
	idle := h.platform.nextTimer(t)
	idle.assertNotArmed(t)
	assert.Equal(t, 0, h.queue.Len())
}

func TestRun_DisableSuppressesTimer(t *testing.T) {
	h := startEngine(t, Config{PollMarkType: pollMarkType})

	h.platform.nextTimer(t)
	h.send(t, DisableCommand{})
	h.platform.nextTimer(t).assertNotArmed(t)

	h.send(t, RegisterCommand{Attribute: 5, Interval: 1})
	paused := h.platform.nextTimer(t)
	paused.assertNotArmed(t)
	assert.Equal(t, 1, h.queue.Len())

	h.send(t, EnableCommand{})
	resumed := h.platform.nextTimer(t)
	assert.Equal(t, 1*time.Second, resumed.waitArmed(t))
}

func TestRun_UntrackedEventsKeepTheTimer(t *testing.T) {
	h := startEngine(t, Config{PollMarkType: pollMarkType})
	a, err := h.store.Add(h.store.Root(), typeLevel, nil, nil)
	require.NoError(t, err)
	other, err := h.store.Add(h.store.Root(), typeLevel, nil, nil)
	require.NoError(t, err)

	h.platform.nextTimer(t)
	h.send(t, RegisterCommand{Attribute: a, Interval: 30})
	armed := h.platform.nextTimer(t)
	armed.waitArmed(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, h.store.SetReported(other, uint32(i)))
	}
	h.platform.assertNoIteration(t)
	assert.False(t, armed.stopped.Load())

	armed.Fire()
	h.platform.nextTimer(t)
	mark, err := h.store.ChildByType(a, pollMarkType)
	require.NoError(t, err)
	assert.NotEqual(t, attribute.InvalidID, mark)
}

func TestRun_DeleteEventRemovesTrackedAttribute(t *testing.T) {
	h := startEngine(t, Config{PollMarkType: pollMarkType})
	a, err := h.store.Add(h.store.Root(), typeLevel, nil, nil)
	require.NoError(t, err)

	h.platform.nextTimer(t)
	h.send(t, RegisterCommand{Attribute: a, Interval: 30})
	h.platform.nextTimer(t).waitArmed(t)

	require.NoError(t, h.store.Delete(a))
	idle := h.platform.nextTimer(t)
	idle.assertNotArmed(t)
	assert.False(t, h.queue.Contains(a))
}

func TestRun_UpdateEventRequeues(t *testing.T) {
	h := startEngine(t, Config{PollMarkType: pollMarkType})
	a, err := h.store.Add(h.store.Root(), typeLevel, nil, nil)
	require.NoError(t, err)

	h.platform.nextTimer(t)
	h.send(t, RegisterCommand{Attribute: a, Interval: 30})
	h.platform.nextTimer(t).waitArmed(t)

	h.platform.now.Store(20)
	require.NoError(t, h.store.SetReported(a, uint32(1)))

	requeued := h.platform.nextTimer(t)
	assert.Equal(t, 30*time.Second, requeued.waitArmed(t), "the deadline moves to now+interval")
}

func TestRun_ClosedCommandChannelKeepsRunning(t *testing.T) {
	h := startEngine(t, Config{PollMarkType: pollMarkType})
	a, err := h.store.Add(h.store.Root(), typeLevel, nil, nil)
	require.NoError(t, err)

	h.platform.nextTimer(t)
	h.send(t, RegisterCommand{Attribute: a, Interval: 30})
	armed := h.platform.nextTimer(t)
	armed.waitArmed(t)

	close(h.commands)
	h.platform.assertNoIteration(t)

	armed.Fire()
	h.platform.nextTimer(t)
}
