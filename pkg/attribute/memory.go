package attribute

import (
	"fmt"
	"sync"
)

type node struct {
	typ      Type
	parent   ID
	children []ID
	reported []byte
	desired  []byte
}

// MemoryStore is a process-local Store. Values are kept encoded, the same as
// in the persistent store, so both behave identically under validation.
type MemoryStore struct {
	*TypeRegistry
	Notifier

	mu    sync.RWMutex
	nodes map[ID]*node
	next  ID
	root  ID
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		TypeRegistry: NewTypeRegistry(),
		nodes:        make(map[ID]*node),
		next:         1,
	}
	s.root = s.alloc(&node{typ: RootType, parent: InvalidID})
	return s
}

func (s *MemoryStore) alloc(n *node) ID {
	id := s.next
	s.next++
	s.nodes[id] = n
	return id
}

func (s *MemoryStore) Root() ID {
	return s.root
}

func (s *MemoryStore) Exists(id ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[id]
	return ok
}

func (s *MemoryStore) lookup(id ID) (*node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrStaleOrNonExisting, id)
	}
	return n, nil
}

func (s *MemoryStore) TypeOf(id ID) (Type, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.lookup(id)
	if err != nil {
		return InvalidType, err
	}
	return n.typ, nil
}

func (s *MemoryStore) Parent(id ID) (ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.lookup(id)
	if err != nil {
		return InvalidID, err
	}
	return n.parent, nil
}

func (s *MemoryStore) ChildByType(id ID, t Type) (ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.lookup(id)
	if err != nil {
		return InvalidID, err
	}
	for _, c := range n.children {
		if s.nodes[c].typ == t {
			return c, nil
		}
	}
	return InvalidID, nil
}

func (s *MemoryStore) Children(id ID) ([]ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	out := make([]ID, len(n.children))
	copy(out, n.children)
	return out, nil
}

func (s *MemoryStore) Add(parent ID, t Type, reported, desired any) (ID, error) {
	if t.Reserved() {
		return InvalidID, fmt.Errorf("%w: %s", ErrReservedType, t)
	}
	if err := s.Check(t, reported); err != nil {
		return InvalidID, err
	}
	if err := s.Check(t, desired); err != nil {
		return InvalidID, err
	}
	rep, err := EncodeValue(reported)
	if err != nil {
		return InvalidID, err
	}
	des, err := EncodeValue(desired)
	if err != nil {
		return InvalidID, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.lookup(parent)
	if err != nil {
		return InvalidID, err
	}
	id := s.alloc(&node{typ: t, parent: parent, reported: rep, desired: des})
	p.children = append(p.children, id)
	s.Publish(Event{Attribute: id, Type: t, EventType: Created, ValueState: DesiredOrReported})
	return id, nil
}

func (s *MemoryStore) SetReported(id ID, v any) error {
	return s.set(id, v, Reported)
}

func (s *MemoryStore) SetDesired(id ID, v any) error {
	return s.set(id, v, Desired)
}

func (s *MemoryStore) set(id ID, v any, state ValueState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.lookup(id)
	if err != nil {
		return err
	}
	if err := s.Check(n.typ, v); err != nil {
		return err
	}
	data, err := EncodeValue(v)
	if err != nil {
		return err
	}
	if state == Desired {
		n.desired = data
	} else {
		n.reported = data
	}
	s.Publish(Event{Attribute: id, Type: n.typ, EventType: Updated, ValueState: state})
	return nil
}

func (s *MemoryStore) Reported(id ID, out any) error {
	return s.get(id, out, Reported)
}

func (s *MemoryStore) Desired(id ID, out any) error {
	return s.get(id, out, Desired)
}

func (s *MemoryStore) get(id ID, out any, state ValueState) error {
	s.mu.RLock()
	n, err := s.lookup(id)
	if err != nil {
		s.mu.RUnlock()
		return err
	}
	data := n.reported
	if state == Desired {
		data = n.desired
	}
	s.mu.RUnlock()
	return DecodeValue(data, out)
}

func (s *MemoryStore) IsReportedSet(id ID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.lookup(id)
	if err != nil {
		return false, err
	}
	return len(n.reported) > 0, nil
}

func (s *MemoryStore) IsDesiredSet(id ID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.lookup(id)
	if err != nil {
		return false, err
	}
	return len(n.desired) > 0, nil
}

func (s *MemoryStore) Delete(id ID) error {
	if id == s.root {
		return ErrRootDelete
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.lookup(id)
	if err != nil {
		return err
	}
	if p, ok := s.nodes[n.parent]; ok {
		for i, c := range p.children {
			if c == id {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	var events []Event
	s.deleteSubtree(id, &events)
	s.Publish(events...)
	return nil
}

// deleteSubtree removes children before their parent, recording events in that order.
func (s *MemoryStore) deleteSubtree(id ID, events *[]Event) {
	n := s.nodes[id]
	for _, c := range n.children {
		s.deleteSubtree(c, events)
	}
	delete(s.nodes, id)
	*events = append(*events, Event{Attribute: id, Type: n.typ, EventType: Deleted, ValueState: DesiredOrReported})
}
