package poll

import "github.com/Alwanly/attribute-poll/pkg/attribute"

// Config holds configuration for the poll engine. It is fixed once the engine
// is constructed.
type Config struct {
	// Backoff is the minimum number of seconds between any two polls
	Backoff uint32
	// DefaultInterval is used when an attribute is registered with interval 0
	DefaultInterval uint32
	// PollMarkType is the attribute type of the marker child written on every poll
	PollMarkType attribute.Type
}

const DefaultPollMarkType attribute.Type = 0x0000FFFF

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Backoff:         30,
		DefaultInterval: 60,
		PollMarkType:    DefaultPollMarkType,
	}
}

func defaultIfZero(cfg Config, interval uint32) uint32 {
	if interval == 0 {
		return cfg.DefaultInterval
	}
	return interval
}
