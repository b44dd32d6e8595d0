// Package attribute defines the tree-shaped attribute store that mirrors device
// state, the change events it emits, and an in-memory implementation.
package attribute

import (
	"errors"
	"fmt"
)

// ID is an opaque handle to a node in the store.
type ID uint64

// Type identifies what a node represents (a device capability, a value, a marker).
type Type uint32

const InvalidID ID = 0

const (
	InvalidType Type = 0
	RootType    Type = 1
)

func (t Type) String() string {
	return fmt.Sprintf("0x%08X", uint32(t))
}

// Reserved reports whether t is one of the store's sentinel types.
func (t Type) Reserved() bool {
	return t == InvalidType || t == RootType
}

var (
	ErrStaleOrNonExisting = errors.New("attribute: stale or non-existing attribute")
	ErrReservedType       = errors.New("attribute: reserved attribute type")
	ErrInvalidStorageType = errors.New("attribute: value does not match the registered storage type")
	ErrValueNotSet        = errors.New("attribute: value not set")
	ErrRootDelete         = errors.New("attribute: the root node cannot be deleted")
)

type EventType int

const (
	Created EventType = iota + 1
	Updated
	Deleted
)

func (e EventType) String() string {
	switch e {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// ValueState selects which of a node's two values an operation or event concerns.
type ValueState int

const (
	Reported ValueState = iota
	Desired
	DesiredOrReported
)

func (v ValueState) String() string {
	switch v {
	case Reported:
		return "reported"
	case Desired:
		return "desired"
	case DesiredOrReported:
		return "desired_or_reported"
	default:
		return fmt.Sprintf("value_state(%d)", int(v))
	}
}

// Event is a single store change notification.
type Event struct {
	Attribute  ID
	Type       Type
	EventType  EventType
	ValueState ValueState
}
