package attribute

import (
	"fmt"
	"sync"
)

// StorageType is the Go kind a registered attribute type stores.
type StorageType int

const (
	StorageUnknown StorageType = iota
	StorageU8
	StorageU16
	StorageU32
	StorageI32
	StorageI64
	StorageString
	StorageBytes
)

var storageNames = map[StorageType]string{
	StorageUnknown: "unknown",
	StorageU8:      "u8",
	StorageU16:     "u16",
	StorageU32:     "u32",
	StorageI32:     "i32",
	StorageI64:     "i64",
	StorageString:  "string",
	StorageBytes:   "bytes",
}

func (s StorageType) String() string {
	if n, ok := storageNames[s]; ok {
		return n
	}
	return fmt.Sprintf("storage(%d)", int(s))
}

// ParseStorageType accepts the names printed by String.
func ParseStorageType(name string) (StorageType, bool) {
	for s, n := range storageNames {
		if n == name {
			return s, true
		}
	}
	return StorageUnknown, false
}

func (s StorageType) accepts(v any) bool {
	switch s {
	case StorageU8:
		_, ok := v.(uint8)
		return ok
	case StorageU16:
		_, ok := v.(uint16)
		return ok
	case StorageU32:
		_, ok := v.(uint32)
		return ok
	case StorageI32:
		_, ok := v.(int32)
		return ok
	case StorageI64:
		_, ok := v.(int64)
		return ok
	case StorageString:
		_, ok := v.(string)
		return ok
	case StorageBytes:
		_, ok := v.([]byte)
		return ok
	default:
		return true
	}
}

type typeInfo struct {
	name    string
	parent  Type
	storage StorageType
}

// TypeRegistry holds attribute type metadata and, when validation is on,
// rejects writes whose Go kind differs from the registered storage type.
type TypeRegistry struct {
	mu       sync.RWMutex
	types    map[Type]typeInfo
	validate bool
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[Type]typeInfo)}
}

func (r *TypeRegistry) RegisterType(t Type, name string, parent Type, storage StorageType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t] = typeInfo{name: name, parent: parent, storage: storage}
}

func (r *TypeRegistry) SetTypeValidation(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validate = enabled
}

// Name returns the registered name of t, or its hex form.
func (r *TypeRegistry) Name(t Type) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if info, ok := r.types[t]; ok && info.name != "" {
		return info.name
	}
	return t.String()
}

// Check validates a write of v to a node of type t. Clearing (nil) always passes.
func (r *TypeRegistry) Check(t Type, v any) error {
	if v == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.validate {
		return nil
	}
	info, ok := r.types[t]
	if !ok || info.storage.accepts(v) {
		return nil
	}
	return fmt.Errorf("%w: %s expects %s, got %T", ErrInvalidStorageType, r.nameLocked(t, info), info.storage, v)
}

func (r *TypeRegistry) nameLocked(t Type, info typeInfo) string {
	if info.name != "" {
		return info.name
	}
	return t.String()
}
