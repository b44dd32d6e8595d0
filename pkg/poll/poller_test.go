package poll

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alwanly/attribute-poll/pkg/attribute"
	"github.com/Alwanly/attribute-poll/pkg/resolver"
)

func TestAttributePoll_EndToEnd(t *testing.T) {
	store := attribute.NewMemoryStore()
	a, err := store.Add(store.Root(), typeLevel, uint32(42), nil)
	require.NoError(t, err)

	reads := make(chan resolver.Request, 8)
	res := resolver.New(store, resolver.SinkFunc(func(_ context.Context, req resolver.Request) error {
		reads <- req
		return nil
	}))

	platform := newFakePlatform(1000)
	p := New(store, res, Config{Backoff: 0, DefaultInterval: 60, PollMarkType: pollMarkType}, WithPlatform(platform))

	sub := store.Subscribe(resolver.Triggers)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = res.Serve(ctx, sub.Changes()) }()
	defer sub.Close()

	// buffered until the engine starts
	p.Register(a, 0)
	require.NoError(t, p.Start(ctx))
	defer func() { assert.NoError(t, p.Close()) }()
	assert.ErrorIs(t, p.Start(ctx), ErrAlreadyStarted)

	platform.nextTimer(t)
	timer := platform.nextTimer(t)
	assert.Equal(t, 60*time.Second, timer.waitArmed(t))

	platform.now.Store(1060)
	timer.Fire()

	select {
	case req := <-reads:
		assert.Equal(t, a, req.Attribute)
		assert.Equal(t, typeLevel, req.Type)
	case <-time.After(waitTimeout):
		t.Fatal("poll did not produce a read request")
	}

	set, err := store.IsReportedSet(a)
	require.NoError(t, err)
	assert.False(t, set)

	mark, err := store.ChildByType(a, pollMarkType)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		ok, _ := store.IsReportedSet(mark)
		return ok
	}, waitTimeout, 10*time.Millisecond, "the mark is resolved by its own rule")
}

func TestAttributePoll_StopKeepsPendingCommands(t *testing.T) {
	store := attribute.NewMemoryStore()
	platform := newFakePlatform(0)
	p := New(store, newFakeRegistry(), Config{PollMarkType: pollMarkType}, WithPlatform(platform))
	defer p.Close()

	require.NoError(t, p.Start(context.Background()))
	platform.nextTimer(t)
	require.NoError(t, p.Stop())
	require.NoError(t, p.Stop(), "stopping twice is harmless")

	p.Register(1, 10)
	p.Schedule(2)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, p.Pending(), "the command offered to the stopped engine is counted")

	require.NoError(t, p.Start(context.Background()))
	platform.nextTimer(t)
	platform.nextTimer(t)
	timer := platform.nextTimer(t)
	assert.Equal(t, time.Duration(0), timer.waitArmed(t), "the scheduled attribute is due immediately")
}
