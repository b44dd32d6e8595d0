// Package store persists the attribute tree in SQL so that poll marks survive
// restarts.
package store

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/Alwanly/attribute-poll/internal/models"
	"github.com/Alwanly/attribute-poll/pkg/attribute"
)

// SQLStore is an attribute.Store backed by gorm. Writes are serialized by a
// mutex so events are published in commit order.
type SQLStore struct {
	*attribute.TypeRegistry
	attribute.Notifier

	mu   sync.RWMutex
	db   *gorm.DB
	root attribute.ID
}

var _ attribute.Store = (*SQLStore)(nil)

// NewSQLStore expects a migrated database; it creates the root node if missing.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	s := &SQLStore{
		TypeRegistry: attribute.NewTypeRegistry(),
		db:           db,
	}

	var root models.AttributeNode
	err := db.Where("type = ? AND parent_id = ?", uint32(attribute.RootType), uint64(attribute.InvalidID)).
		Order("id").First(&root).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		root = models.AttributeNode{Type: uint32(attribute.RootType)}
		err = db.Create(&root).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load attribute root: %w", err)
	}
	s.root = attribute.ID(root.ID)
	return s, nil
}

func (s *SQLStore) Root() attribute.ID {
	return s.root
}

func (s *SQLStore) find(id attribute.ID) (*models.AttributeNode, error) {
	if id == attribute.InvalidID {
		return nil, fmt.Errorf("%w: %d", attribute.ErrStaleOrNonExisting, id)
	}
	var n models.AttributeNode
	if err := s.db.First(&n, uint64(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", attribute.ErrStaleOrNonExisting, id)
		}
		return nil, fmt.Errorf("failed to load attribute %d: %w", id, err)
	}
	return &n, nil
}

func (s *SQLStore) Exists(id attribute.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := s.find(id)
	return err == nil
}

func (s *SQLStore) TypeOf(id attribute.ID) (attribute.Type, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.find(id)
	if err != nil {
		return attribute.InvalidType, err
	}
	return attribute.Type(n.Type), nil
}

func (s *SQLStore) Parent(id attribute.ID) (attribute.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.find(id)
	if err != nil {
		return attribute.InvalidID, err
	}
	return attribute.ID(n.ParentID), nil
}

func (s *SQLStore) ChildByType(id attribute.ID, t attribute.Type) (attribute.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.find(id); err != nil {
		return attribute.InvalidID, err
	}
	var child models.AttributeNode
	err := s.db.Where("parent_id = ? AND type = ?", uint64(id), uint32(t)).Order("id").First(&child).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attribute.InvalidID, nil
	}
	if err != nil {
		return attribute.InvalidID, fmt.Errorf("failed to look up child of %d: %w", id, err)
	}
	return attribute.ID(child.ID), nil
}

func (s *SQLStore) Children(id attribute.ID) ([]attribute.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.find(id); err != nil {
		return nil, err
	}
	return s.children(s.db, id)
}

func (s *SQLStore) children(tx *gorm.DB, id attribute.ID) ([]attribute.ID, error) {
	var ids []uint64
	if err := tx.Model(&models.AttributeNode{}).Where("parent_id = ?", uint64(id)).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list children of %d: %w", id, err)
	}
	out := make([]attribute.ID, len(ids))
	for i, v := range ids {
		out[i] = attribute.ID(v)
	}
	return out, nil
}

func (s *SQLStore) Add(parent attribute.ID, t attribute.Type, reported, desired any) (attribute.ID, error) {
	if t.Reserved() {
		return attribute.InvalidID, fmt.Errorf("%w: %s", attribute.ErrReservedType, t)
	}
	if err := s.Check(t, reported); err != nil {
		return attribute.InvalidID, err
	}
	if err := s.Check(t, desired); err != nil {
		return attribute.InvalidID, err
	}
	rep, err := attribute.EncodeValue(reported)
	if err != nil {
		return attribute.InvalidID, err
	}
	des, err := attribute.EncodeValue(desired)
	if err != nil {
		return attribute.InvalidID, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.find(parent); err != nil {
		return attribute.InvalidID, err
	}
	n := models.AttributeNode{
		Type:          uint32(t),
		ParentID:      uint64(parent),
		ReportedValue: rep,
		DesiredValue:  des,
	}
	if err := s.db.Create(&n).Error; err != nil {
		return attribute.InvalidID, fmt.Errorf("failed to create attribute: %w", err)
	}
	id := attribute.ID(n.ID)
	s.Publish(attribute.Event{Attribute: id, Type: t, EventType: attribute.Created, ValueState: attribute.DesiredOrReported})
	return id, nil
}

func (s *SQLStore) SetReported(id attribute.ID, v any) error {
	return s.set(id, v, attribute.Reported)
}

func (s *SQLStore) SetDesired(id attribute.ID, v any) error {
	return s.set(id, v, attribute.Desired)
}

func (s *SQLStore) set(id attribute.ID, v any, state attribute.ValueState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.find(id)
	if err != nil {
		return err
	}
	t := attribute.Type(n.Type)
	if err := s.Check(t, v); err != nil {
		return err
	}
	data, err := attribute.EncodeValue(v)
	if err != nil {
		return err
	}

	column := "reported_value"
	if state == attribute.Desired {
		column = "desired_value"
	}
	if err := s.db.Model(&models.AttributeNode{ID: n.ID}).Update(column, data).Error; err != nil {
		return fmt.Errorf("failed to update attribute %d: %w", id, err)
	}
	s.Publish(attribute.Event{Attribute: id, Type: t, EventType: attribute.Updated, ValueState: state})
	return nil
}

func (s *SQLStore) Reported(id attribute.ID, out any) error {
	s.mu.RLock()
	n, err := s.find(id)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	return attribute.DecodeValue(n.ReportedValue, out)
}

func (s *SQLStore) Desired(id attribute.ID, out any) error {
	s.mu.RLock()
	n, err := s.find(id)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	return attribute.DecodeValue(n.DesiredValue, out)
}

func (s *SQLStore) IsReportedSet(id attribute.ID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.find(id)
	if err != nil {
		return false, err
	}
	return len(n.ReportedValue) > 0, nil
}

func (s *SQLStore) IsDesiredSet(id attribute.ID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.find(id)
	if err != nil {
		return false, err
	}
	return len(n.DesiredValue) > 0, nil
}

func (s *SQLStore) Delete(id attribute.ID) error {
	if id == s.root {
		return attribute.ErrRootDelete
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.find(id); err != nil {
		return err
	}

	var events []attribute.Event
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.deleteSubtree(tx, id, &events)
	})
	if err != nil {
		return fmt.Errorf("failed to delete attribute %d: %w", id, err)
	}
	s.Publish(events...)
	return nil
}

// deleteSubtree removes children before their parent, recording events in that order.
func (s *SQLStore) deleteSubtree(tx *gorm.DB, id attribute.ID, events *[]attribute.Event) error {
	children, err := s.children(tx, id)
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := s.deleteSubtree(tx, c, events); err != nil {
			return err
		}
	}

	var n models.AttributeNode
	if err := tx.First(&n, uint64(id)).Error; err != nil {
		return err
	}
	if err := tx.Delete(&n).Error; err != nil {
		return err
	}
	*events = append(*events, attribute.Event{
		Attribute:  id,
		Type:       attribute.Type(n.Type),
		EventType:  attribute.Deleted,
		ValueState: attribute.DesiredOrReported,
	})
	return nil
}
