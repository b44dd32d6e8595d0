// Package transport turns inbound pub/sub messages into poll commands and
// publishes resolver requests for the device side.
package transport

import (
	"errors"
	"fmt"

	"github.com/Alwanly/attribute-poll/pkg/attribute"
	"github.com/Alwanly/attribute-poll/pkg/poll"
)

var (
	ErrUnknownCommand   = errors.New("transport: unknown command")
	ErrMissingAttribute = errors.New("transport: command requires an attribute")
)

// CommandMessage is the wire form of a poll command.
//
//	{"command":"register","attribute":12,"interval":30,"correlation_id":"..."}
type CommandMessage struct {
	Command       string `json:"command" validate:"required,oneof=register deregister schedule restart enable disable print_queue"`
	Attribute     uint64 `json:"attribute,omitempty"`
	Interval      uint32 `json:"interval,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty" validate:"omitempty,max=64"`
}

// ToCommand maps the message onto the engine command it names.
func (m CommandMessage) ToCommand() (poll.Command, error) {
	a := attribute.ID(m.Attribute)
	needsAttribute := func() error {
		if a == attribute.InvalidID {
			return fmt.Errorf("%w: %s", ErrMissingAttribute, m.Command)
		}
		return nil
	}

	switch m.Command {
	case poll.RegisterCommand{}.Kind():
		if err := needsAttribute(); err != nil {
			return nil, err
		}
		return poll.RegisterCommand{Attribute: a, Interval: m.Interval}, nil
	case poll.DeregisterCommand{}.Kind():
		if err := needsAttribute(); err != nil {
			return nil, err
		}
		return poll.DeregisterCommand{Attribute: a}, nil
	case poll.ScheduleCommand{}.Kind():
		if err := needsAttribute(); err != nil {
			return nil, err
		}
		return poll.ScheduleCommand{Attribute: a}, nil
	case poll.RestartCommand{}.Kind():
		if err := needsAttribute(); err != nil {
			return nil, err
		}
		return poll.RestartCommand{Attribute: a}, nil
	case poll.EnableCommand{}.Kind():
		return poll.EnableCommand{}, nil
	case poll.DisableCommand{}.Kind():
		return poll.DisableCommand{}, nil
	case poll.PrintQueueCommand{}.Kind():
		return poll.PrintQueueCommand{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, m.Command)
	}
}
