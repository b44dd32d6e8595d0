package poll

import "github.com/Alwanly/attribute-poll/pkg/attribute"

// Command is a control message for the engine. Each value is consumed once.
type Command interface {
	Kind() string
}

// RegisterCommand adds or updates an attribute; interval 0 selects the default interval.
type RegisterCommand struct {
	Attribute attribute.ID
	Interval  uint32
}

type DeregisterCommand struct {
	Attribute attribute.ID
}

// ScheduleCommand requests a poll as soon as the backoff allows.
type ScheduleCommand struct {
	Attribute attribute.ID
}

// RestartCommand restarts the attribute's interval from now.
type RestartCommand struct {
	Attribute attribute.ID
}

type EnableCommand struct{}

type DisableCommand struct{}

// PrintQueueCommand dumps the queue to the engine output.
type PrintQueueCommand struct{}

func (RegisterCommand) Kind() string   { return "register" }
func (DeregisterCommand) Kind() string { return "deregister" }
func (ScheduleCommand) Kind() string   { return "schedule" }
func (RestartCommand) Kind() string    { return "restart" }
func (EnableCommand) Kind() string     { return "enable" }
func (DisableCommand) Kind() string    { return "disable" }
func (PrintQueueCommand) Kind() string { return "print_queue" }
