package attribute

// Store is the attribute tree. Implementations serialize their own access and
// publish an Event for every mutation, in mutation order.
type Store interface {
	Root() ID
	Exists(id ID) bool
	TypeOf(id ID) (Type, error)
	Parent(id ID) (ID, error)
	// ChildByType returns the first child of id with type t, or InvalidID.
	ChildByType(id ID, t Type) (ID, error)
	Children(id ID) ([]ID, error)

	// Add creates a child of parent. A nil value leaves that value unset.
	Add(parent ID, t Type, reported, desired any) (ID, error)
	// SetReported stores v as the reported value; nil clears it.
	SetReported(id ID, v any) error
	// SetDesired stores v as the desired value; nil clears it.
	SetDesired(id ID, v any) error
	// Reported decodes the reported value into out.
	Reported(id ID, out any) error
	Desired(id ID, out any) error
	IsReportedSet(id ID) (bool, error)
	IsDesiredSet(id ID) (bool, error)
	// Delete removes id and its whole subtree.
	Delete(id ID) error

	RegisterType(t Type, name string, parent Type, storage StorageType)
	SetTypeValidation(enabled bool)

	// Subscribe delivers every event accepted by filter. A nil filter accepts all.
	Subscribe(filter Filter) *Subscription
}

// Filter selects events for a Subscription.
type Filter func(Event) bool

// EventTypes accepts events of the given types.
func EventTypes(types ...EventType) Filter {
	return func(ev Event) bool {
		for _, t := range types {
			if ev.EventType == t {
				return true
			}
		}
		return false
	}
}
