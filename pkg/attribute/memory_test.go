package attribute

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	typeEndpoint Type = 0x00000003
	typeLevel    Type = 0x00002601
	typeName     Type = 0x00002602
)

func nextEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev := <-sub.Changes():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestMemoryStore_AddAndNavigate(t *testing.T) {
	s := NewMemoryStore()

	ep, err := s.Add(s.Root(), typeEndpoint, nil, nil)
	require.NoError(t, err)
	level, err := s.Add(ep, typeLevel, uint32(40), uint32(60))
	require.NoError(t, err)

	assert.True(t, s.Exists(level))

	parent, err := s.Parent(level)
	require.NoError(t, err)
	assert.Equal(t, ep, parent)

	typ, err := s.TypeOf(level)
	require.NoError(t, err)
	assert.Equal(t, typeLevel, typ)

	child, err := s.ChildByType(ep, typeLevel)
	require.NoError(t, err)
	assert.Equal(t, level, child)

	missing, err := s.ChildByType(ep, typeName)
	require.NoError(t, err)
	assert.Equal(t, InvalidID, missing)

	children, err := s.Children(ep)
	require.NoError(t, err)
	assert.Equal(t, []ID{level}, children)

	var reported, desired uint32
	require.NoError(t, s.Reported(level, &reported))
	require.NoError(t, s.Desired(level, &desired))
	assert.Equal(t, uint32(40), reported)
	assert.Equal(t, uint32(60), desired)
}

func TestMemoryStore_ReservedTypesRejected(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Add(s.Root(), InvalidType, nil, nil)
	assert.ErrorIs(t, err, ErrReservedType)

	_, err = s.Add(s.Root(), RootType, nil, nil)
	assert.ErrorIs(t, err, ErrReservedType)
}

func TestMemoryStore_StaleAttribute(t *testing.T) {
	s := NewMemoryStore()
	stale := ID(4242)

	assert.False(t, s.Exists(stale))
	assert.ErrorIs(t, s.SetReported(stale, nil), ErrStaleOrNonExisting)
	_, err := s.ChildByType(stale, typeLevel)
	assert.ErrorIs(t, err, ErrStaleOrNonExisting)
	_, err = s.Add(stale, typeLevel, nil, nil)
	assert.ErrorIs(t, err, ErrStaleOrNonExisting)
	assert.ErrorIs(t, s.Delete(stale), ErrStaleOrNonExisting)
}

func TestMemoryStore_ClearReported(t *testing.T) {
	s := NewMemoryStore()
	id, err := s.Add(s.Root(), typeLevel, uint8(1), nil)
	require.NoError(t, err)

	set, err := s.IsReportedSet(id)
	require.NoError(t, err)
	assert.True(t, set)

	require.NoError(t, s.SetReported(id, nil))
	set, err = s.IsReportedSet(id)
	require.NoError(t, err)
	assert.False(t, set)

	var v uint8
	assert.ErrorIs(t, s.Reported(id, &v), ErrValueNotSet)
}

func TestMemoryStore_TypeValidation(t *testing.T) {
	s := NewMemoryStore()
	s.RegisterType(typeLevel, "level", typeEndpoint, StorageU32)

	id, err := s.Add(s.Root(), typeLevel, nil, nil)
	require.NoError(t, err)

	// validation off: anything goes
	require.NoError(t, s.SetReported(id, uint8(0)))
	require.NoError(t, s.SetReported(id, nil))

	s.SetTypeValidation(true)
	err = s.SetReported(id, uint8(0))
	assert.ErrorIs(t, err, ErrInvalidStorageType)

	set, err := s.IsReportedSet(id)
	require.NoError(t, err)
	assert.False(t, set, "rejected write must leave the value untouched")

	require.NoError(t, s.SetReported(id, uint32(7)))
	require.NoError(t, s.SetReported(id, nil), "clearing is always allowed")
	assert.Equal(t, "level", s.Name(typeLevel))
	assert.Equal(t, "0x00002602", s.Name(typeName))
}

func TestMemoryStore_EventsInMutationOrder(t *testing.T) {
	s := NewMemoryStore()
	sub := s.Subscribe(nil)
	defer sub.Close()

	ep, err := s.Add(s.Root(), typeEndpoint, nil, nil)
	require.NoError(t, err)
	level, err := s.Add(ep, typeLevel, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetDesired(level, uint32(3)))
	require.NoError(t, s.Delete(ep))

	assert.Equal(t, Event{Attribute: ep, Type: typeEndpoint, EventType: Created, ValueState: DesiredOrReported}, nextEvent(t, sub))
	assert.Equal(t, Event{Attribute: level, Type: typeLevel, EventType: Created, ValueState: DesiredOrReported}, nextEvent(t, sub))
	assert.Equal(t, Event{Attribute: level, Type: typeLevel, EventType: Updated, ValueState: Desired}, nextEvent(t, sub))
	// children are removed before their parent
	assert.Equal(t, Event{Attribute: level, Type: typeLevel, EventType: Deleted, ValueState: DesiredOrReported}, nextEvent(t, sub))
	assert.Equal(t, Event{Attribute: ep, Type: typeEndpoint, EventType: Deleted, ValueState: DesiredOrReported}, nextEvent(t, sub))

	assert.False(t, s.Exists(level))
	children, err := s.Children(s.Root())
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestMemoryStore_SubscriptionFilter(t *testing.T) {
	s := NewMemoryStore()
	sub := s.Subscribe(EventTypes(Deleted))
	defer sub.Close()

	id, err := s.Add(s.Root(), typeLevel, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetReported(id, uint32(1)))
	require.NoError(t, s.Delete(id))

	ev := nextEvent(t, sub)
	assert.Equal(t, Deleted, ev.EventType)
	assert.Equal(t, id, ev.Attribute)
}

func TestMemoryStore_RootCannotBeDeleted(t *testing.T) {
	s := NewMemoryStore()
	assert.ErrorIs(t, s.Delete(s.Root()), ErrRootDelete)
}
